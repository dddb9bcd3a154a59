package toml

import (
	"fmt"
	"time"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version   int            `toml:"version"`
	UpdatedAt string         `toml:"updated_at,omitempty"`
	Members   []memberSchema `toml:"members"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported team schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type memberSchema struct {
	Name    string `toml:"name"`
	AddedAt string `toml:"added_at,omitempty"`
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}
