package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fxnlabs/accelbench/internal/gpu"
)

// Run is the exported form of one benchmark run.
type Run struct {
	Timestamp time.Time         `json:"timestamp"`
	Mode      string            `json:"mode"`
	Devices   []gpu.Profile     `json:"devices"`
	Results   []BenchmarkResult `json:"results"`
}

// Marshal encodes run as indented JSON.
func Marshal(run Run) ([]byte, error) {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run: %w", err)
	}
	return data, nil
}

// Parse decodes a run previously produced by Marshal or Export.
func Parse(data []byte) (*Run, error) {
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &run, nil
}

// Export writes run to path, creating the parent directory if needed.
func Export(path string, run Run) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	data, err := Marshal(run)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a run exported to path.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
