// ABOUTME: Data migration between journey storage backends.
// ABOUTME: Copies every collection from source to destination through one transactional import.

package storage

import (
	"context"
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated records per collection.
type MigrateSummary struct {
	CheckIns    int
	Meals       int
	GymSessions int
	Exercises   int
	Habits      int
	Goals       int
	PRs         int
	Settings    int
}

// MigrateData copies all data from src to dst. Identifiers are preserved,
// and the destination either receives everything or nothing.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	data, err := src.Export(ctx)
	if err != nil {
		return nil, fmt.Errorf("export source: %w", err)
	}
	if err := dst.Import(ctx, data); err != nil {
		return nil, fmt.Errorf("import destination: %w", err)
	}
	return &MigrateSummary{
		CheckIns:    len(data.CheckIns),
		Meals:       len(data.Meals),
		GymSessions: len(data.GymSessions),
		Exercises:   len(data.Exercises),
		Habits:      len(data.Habits),
		Goals:       len(data.Goals),
		PRs:         len(data.PRs),
		Settings:    len(data.Settings),
	}, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
