package audio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDumperRoundRobin(t *testing.T) {
	dir := t.TempDir()

	dumper, err := NewDumper(dir, 2, 8000)
	if err != nil {
		t.Fatalf("NewDumper failed: %v", err)
	}

	samples := []int16{1, 2, 3, 4}

	// Three dumps into a two-file budget: the third reuses file 1.
	expected := []string{"capture.1.wav", "capture.2.wav", "capture.1.wav"}
	for i, name := range expected {
		path, err := dumper.Dump(samples)
		if err != nil {
			t.Fatalf("Dump %d failed: %v", i, err)
		}

		if filepath.Base(path) != name {
			t.Errorf("Dump %d: expected file %s, got %s", i, name, filepath.Base(path))
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	if len(entries) != 2 {
		t.Errorf("Expected 2 files in dump directory, got %d", len(entries))
	}
}

func TestDumperWritesValidWAV(t *testing.T) {
	dir := t.TempDir()

	dumper, err := NewDumper(dir, 4, 16000)
	if err != nil {
		t.Fatalf("NewDumper failed: %v", err)
	}

	samples := []int16{100, -100, 200, -200}

	path, err := dumper.Dump(samples)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	decoded, sampleRate, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	if sampleRate != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", sampleRate)
	}

	for i, s := range samples {
		if decoded[i] != s {
			t.Errorf("Sample %d: expected %d, got %d", i, s, decoded[i])
		}
	}
}

func TestNewDumperErrors(t *testing.T) {
	if _, err := NewDumper(t.TempDir(), 0, 8000); err == nil {
		t.Error("Expected error for zero file limit")
	}

	if _, err := NewDumper(t.TempDir(), 2, 0); err == nil {
		t.Error("Expected error for zero sample rate")
	}
}
