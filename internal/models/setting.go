// ABOUTME: Setting is a single key/value preference.
// ABOUTME: Values are opaque strings; callers decide how to interpret them.
package models

// Setting is one user preference.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
