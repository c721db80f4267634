// ABOUTME: Typed error kinds shared by storage, tracker and presentation layers.
// ABOUTME: Errors carry a Kind that callers match with errors.Is against the sentinels.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can react without parsing messages.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation means the caller supplied malformed or missing input.
	KindValidation
	// KindNotFound means no record matched the given id, prefix or key.
	KindNotFound
	// KindStorage means the underlying persistence engine failed.
	KindStorage
	// KindIntegrity means a parent/child relationship would have been broken.
	KindIntegrity
	// KindImportFormat means an import document could not be understood.
	KindImportFormat
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindStorage:
		return "storage"
	case KindIntegrity:
		return "integrity"
	case KindImportFormat:
		return "import format"
	default:
		return "unknown"
	}
}

// Error is a failure of a given Kind raised by operation Op.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrStorage      = &Error{Kind: KindStorage}
	ErrIntegrity    = &Error{Kind: KindIntegrity}
	ErrImportFormat = &Error{Kind: KindImportFormat}
)

// New wraps err with the given kind. A nil err yields nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func Validation(op string, err error) error   { return New(KindValidation, op, err) }
func Storage(op string, err error) error      { return New(KindStorage, op, err) }
func Integrity(op string, err error) error    { return New(KindIntegrity, op, err) }
func ImportFormat(op string, err error) error { return New(KindImportFormat, op, err) }

// NotFound builds a not-found error for the given identifier.
func NotFound(op, what string) error {
	return &Error{Kind: KindNotFound, Op: op, Err: fmt.Errorf("no match for %q", what)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
