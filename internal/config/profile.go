package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Profile identifies the local reader.
type Profile struct {
	Version  string `json:"version"`
	ReaderID string `json:"reader_id"`
	LastBook int    `json:"last_book,omitempty"`
}

const profileVersion = "1"

// LoadProfile reads profile.json from dir.
func LoadProfile(dir string) (*Profile, error) {
	path := filepath.Join(dir, "profile.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	return &p, nil
}

// SaveProfile writes profile.json to dir, creating dir if needed.
func SaveProfile(dir string, p *Profile) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create profile dir: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	path := filepath.Join(dir, "profile.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}

	return nil
}

// EnsureProfile loads the profile in dir, creating one with a fresh
// reader id on first use.
func EnsureProfile(dir string) (*Profile, error) {
	p, err := LoadProfile(dir)
	if err == nil {
		if p.ReaderID != "" {
			return p, nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	} else {
		p = &Profile{}
	}

	p.Version = profileVersion
	p.ReaderID = uuid.NewString()
	if err := SaveProfile(dir, p); err != nil {
		return nil, err
	}
	return p, nil
}
