package fs

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Snapshot describes a chart file written to the output directory.
type Snapshot struct {
	Path      string    `json:"path"`
	Format    string    `json:"format"`
	X         string    `json:"x"`
	Y         string    `json:"y"`
	Rows      int       `json:"rows"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Storage writes rendered charts under one directory.
type Storage struct {
	Dir string
}

func NewStorage(dir string) *Storage {
	if dir == "" {
		dir = filepath.Join("etc", "charts")
	}
	return &Storage{Dir: dir}
}

// WriteFile streams write into name via a temp file and renames it into
// place, so readers never see a half-written chart.
func (s *Storage) WriteFile(name string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, ".tmp-*-"+filepath.Base(name))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	full := filepath.Join(s.Dir, name)
	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", fmt.Errorf("failed to move chart into place: %w", err)
	}

	info, err := os.Stat(full)
	if err != nil {
		return "", fmt.Errorf("failed to stat chart file: %w", err)
	}
	if info.Size() == 0 {
		os.Remove(full)
		return "", fmt.Errorf("chart file %s is empty after rendering", full)
	}
	return full, nil
}

// SaveSnapshot writes snap as <chart name>.json next to the chart.
func (s *Storage) SaveSnapshot(snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	path := snap.Path + ".json"
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads the metadata written by SaveSnapshot for chartPath.
func (s *Storage) LoadSnapshot(chartPath string) (*Snapshot, error) {
	data, err := os.ReadFile(chartPath + ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
