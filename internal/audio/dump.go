package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Dumper writes completed captures to WAV files for diagnostics. Files are
// numbered and reused round-robin so the dump directory never grows past the
// configured budget, matching the behavior of an SD card on the device.
type Dumper struct {
	directory  string
	fileLimit  int
	sampleRate int

	next int // next file number, 1..fileLimit
	mu   sync.Mutex
}

// NewDumper creates a dumper writing into directory, creating it if needed
func NewDumper(directory string, fileLimit, sampleRate int) (*Dumper, error) {
	if fileLimit < 1 {
		return nil, fmt.Errorf("file limit must be at least 1, got %d", fileLimit)
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dump directory %s: %w", directory, err)
	}

	return &Dumper{
		directory:  directory,
		fileLimit:  fileLimit,
		sampleRate: sampleRate,
		next:       1,
	}, nil
}

// Dump writes samples as a WAV file and returns the file path written.
// File numbers advance 1..fileLimit and wrap around.
func (d *Dumper) Dump(samples []int16) (string, error) {
	data, err := EncodeWAV(samples, d.sampleRate)
	if err != nil {
		return "", fmt.Errorf("failed to encode capture: %w", err)
	}

	d.mu.Lock()
	num := d.next
	d.next++
	if d.next > d.fileLimit {
		d.next = 1
	}
	d.mu.Unlock()

	path := filepath.Join(d.directory, fmt.Sprintf("capture.%d.wav", num))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write dump file %s: %w", path, err)
	}

	return path, nil
}
