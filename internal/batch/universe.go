package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Universe is the caller-owned symbol list a batch runs over.
type Universe struct {
	Symbols   []string  `json:"symbols"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUniverse copies symbols into a Universe stamped at.
func NewUniverse(symbols []string, at time.Time) *Universe {
	return &Universe{Symbols: append([]string(nil), symbols...), UpdatedAt: at}
}

// Limit returns the first n symbols, or all of them when n <= 0.
func (u *Universe) Limit(n int) []string {
	if u == nil {
		return nil
	}
	if n <= 0 || n >= len(u.Symbols) {
		return u.Symbols
	}
	return u.Symbols[:n]
}

// Stale reports whether the universe is older than ttl at now.
func (u *Universe) Stale(now time.Time, ttl time.Duration) bool {
	return u == nil || len(u.Symbols) == 0 || now.Sub(u.UpdatedAt) >= ttl
}

// LoadUniverse reads a universe from a JSON file. Returns an empty universe if the file doesn't exist.
func LoadUniverse(filePath string) (*Universe, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Universe{}, nil
		}
		return nil, err
	}
	var u Universe
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("decode universe %s: %w", filePath, err)
	}
	return &u, nil
}

// Save writes the universe to a JSON file.
func (u *Universe) Save(filePath string) error {
	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
