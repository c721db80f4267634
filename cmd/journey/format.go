// ABOUTME: Shared parsing and formatting helpers for the CLI commands.
// ABOUTME: Time parsing, short IDs, padding, and flag-to-patch conversion.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harperreed/journey/internal/models"
)

var faint = color.New(color.Faint)

// stdin is where confirmation prompts read answers from.
var stdin io.Reader = os.Stdin

// confirm asks a yes/no question. Anything but y or yes is a no.
func confirm(question string) (bool, error) {
	fmt.Printf("%s [y/N] ", question)
	response, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// parseTime accepts the timestamp formats the CLI documents. Values without
// a zone are read as UTC.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

// parseDayOr parses a YYYY-MM-DD flag, falling back to the day containing now.
func parseDayOr(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return models.Day(now), nil
	}
	d, err := models.ParseDay(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", s)
	}
	return d, nil
}

// sinceFlag parses an optional --since day.
func sinceFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseDay(s)
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", s)
	}
	return &d, nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func notesSuffix(notes *string) string {
	if notes == nil || *notes == "" {
		return ""
	}
	return faint.Sprintf(" (%s)", truncate(*notes, 30))
}

func readPhoto(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	return data, nil
}

// unsetFields parses the comma-separated --unset flag into a set.
func unsetFields(s string) map[string]bool {
	out := make(map[string]bool)
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out[name] = true
		}
	}
	return out
}

// changed wraps v as a present patch value when the flag was given.
func changed[T any](cmd *cobra.Command, flag string, v T) models.Field[T] {
	if cmd.Flags().Changed(flag) {
		return models.Value(v)
	}
	return models.Field[T]{}
}

// optionalField is changed with support for --unset: naming the field there
// clears it.
func optionalField[T any](cmd *cobra.Command, flag string, v T, unset map[string]bool) models.Field[T] {
	if unset[flag] {
		return models.Null[T]()
	}
	return changed(cmd, flag, v)
}
