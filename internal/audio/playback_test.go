package audio

import "testing"

func TestOversample2x(t *testing.T) {
	tests := []struct {
		name     string
		input    []int16
		expected []int16
	}{
		{
			name:     "empty input",
			input:    nil,
			expected: nil,
		},
		{
			name:     "single sample repeated",
			input:    []int16{100},
			expected: []int16{100, 100},
		},
		{
			name:     "midpoints interpolated",
			input:    []int16{0, 100, 200},
			expected: []int16{0, 50, 100, 150, 200, 200},
		},
		{
			name:     "negative midpoint",
			input:    []int16{-100, 100},
			expected: []int16{-100, 0, 100, 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Oversample2x(tt.input)

			if len(out) != len(tt.expected) {
				t.Fatalf("Expected %d samples, got %d", len(tt.expected), len(out))
			}

			for i, s := range tt.expected {
				if out[i] != s {
					t.Errorf("Sample %d: expected %d, got %d", i, s, out[i])
				}
			}
		})
	}
}

func TestApplyVolume(t *testing.T) {
	tests := []struct {
		name     string
		input    []int16
		volume   int
		expected []int16
	}{
		{
			name:     "full volume is a copy",
			input:    []int16{100, -200, 300},
			volume:   127,
			expected: []int16{100, -200, 300},
		},
		{
			name:     "zero volume silences",
			input:    []int16{100, -200, 300},
			volume:   0,
			expected: []int16{0, 0, 0},
		},
		{
			name:     "half-ish volume scales",
			input:    []int16{127, -127, 254},
			volume:   64,
			expected: []int16{64, -64, 128},
		},
		{
			name:     "volume clamped above range",
			input:    []int16{100},
			volume:   500,
			expected: []int16{100},
		},
		{
			name:     "volume clamped below range",
			input:    []int16{100},
			volume:   -3,
			expected: []int16{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ApplyVolume(tt.input, tt.volume)

			if len(out) != len(tt.expected) {
				t.Fatalf("Expected %d samples, got %d", len(tt.expected), len(out))
			}

			for i, s := range tt.expected {
				if out[i] != s {
					t.Errorf("Sample %d: expected %d, got %d", i, s, out[i])
				}
			}
		})
	}
}

func TestApplyVolumeDoesNotMutateInput(t *testing.T) {
	input := []int16{1000, 2000, 3000}

	ApplyVolume(input, 10)

	if input[0] != 1000 || input[1] != 2000 || input[2] != 3000 {
		t.Errorf("Input was mutated: %v", input)
	}
}
