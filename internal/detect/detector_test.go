package detect

import "testing"

func TestNewSilenceDetector(t *testing.T) {
	tests := []struct {
		name        string
		threshold   int
		zero        int
		minRun      int
		expectError bool
	}{
		{
			name:      "valid parameters",
			threshold: 1600,
			zero:      0,
			minRun:    1500,
		},
		{
			name:        "zero threshold",
			threshold:   0,
			minRun:      1500,
			expectError: true,
		},
		{
			name:        "zero run",
			threshold:   1600,
			minRun:      0,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSilenceDetector(tt.threshold, tt.zero, tt.minRun)

			if tt.expectError && err == nil {
				t.Errorf("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestSilenceDetectorDebounce(t *testing.T) {
	d, err := NewSilenceDetector(1000, 0, 3)
	if err != nil {
		t.Fatalf("Failed to create detector: %v", err)
	}

	// Two quiet samples, then speech: the run must reset.
	if d.Observe(10) {
		t.Error("Stopped after a single quiet sample")
	}
	if d.Observe(-10) {
		t.Error("Stopped after two quiet samples")
	}
	if d.Observe(5000) {
		t.Error("Stopped on a speech sample")
	}

	if d.Run() != 0 {
		t.Errorf("Expected run reset to 0 after speech, got %d", d.Run())
	}

	// Three consecutive quiet samples now complete the run.
	d.Observe(1)
	d.Observe(2)
	if !d.Observe(3) {
		t.Error("Expected stop after three consecutive quiet samples")
	}

	if d.Run() != 3 {
		t.Errorf("Expected run of 3 at the stop point, got %d", d.Run())
	}
}

func TestSilenceDetectorStopPoint(t *testing.T) {
	// 2000 loud samples followed by quiet ones: the detector must fire on
	// the 1500th quiet sample, i.e. sample number 3500 overall.
	d, err := NewSilenceDetector(1600, 0, 1500)
	if err != nil {
		t.Fatalf("Failed to create detector: %v", err)
	}

	observed := 0
	stoppedAt := 0

	for i := 0; i < 2000; i++ {
		observed++
		if d.Observe(8000) {
			t.Fatalf("Stopped during speech at sample %d", observed)
		}
	}

	for i := 0; i < 4000; i++ {
		observed++
		if d.Observe(0) {
			stoppedAt = observed
			break
		}
	}

	if stoppedAt != 3500 {
		t.Errorf("Expected stop at sample 3500, got %d", stoppedAt)
	}

	if d.SpeechSamples() != 2000 {
		t.Errorf("Expected 2000 speech samples, got %d", d.SpeechSamples())
	}
}

func TestSilenceDetectorThresholdBoundary(t *testing.T) {
	d, err := NewSilenceDetector(1000, 0, 1)
	if err != nil {
		t.Fatalf("Failed to create detector: %v", err)
	}

	// Delta equal to the threshold counts as speech.
	if d.Observe(1000) {
		t.Error("Sample at the threshold must count as speech")
	}

	// One below is quiet and immediately completes a run of 1.
	if !d.Observe(999) {
		t.Error("Sample below the threshold must count as quiet")
	}
}

func TestSilenceDetectorZeroEstimate(t *testing.T) {
	// With a DC offset of 500 a raw value of 600 is quiet, not speech.
	d, err := NewSilenceDetector(1000, 500, 2)
	if err != nil {
		t.Fatalf("Failed to create detector: %v", err)
	}

	d.Observe(600)
	if !d.Observe(400) {
		t.Error("Expected stop: both samples are within the threshold of the offset")
	}

	d.Reset()
	d.SetZeroEstimate(0)

	if d.ZeroEstimate() != 0 {
		t.Errorf("Expected zero estimate 0, got %d", d.ZeroEstimate())
	}

	// The same value is now 1600 away from zero, so it is speech.
	if d.Observe(1600) {
		t.Error("Expected speech after the estimate moved to 0")
	}
	if d.Run() != 0 {
		t.Errorf("Expected run 0 after speech, got %d", d.Run())
	}
}

func TestSilenceDetectorReset(t *testing.T) {
	d, err := NewSilenceDetector(1000, 0, 2)
	if err != nil {
		t.Fatalf("Failed to create detector: %v", err)
	}

	d.Observe(5000)
	d.Observe(1)
	d.Reset()

	if d.Run() != 0 || d.Observed() != 0 || d.SpeechSamples() != 0 {
		t.Error("Expected all detector state cleared after reset")
	}

	// A run in progress before the reset must not carry over.
	if d.Observe(1) {
		t.Error("Stopped after a single quiet sample following reset")
	}
}

func TestNewStartDetector(t *testing.T) {
	tests := []struct {
		name        string
		threshold   int
		trigger     int
		expectError bool
	}{
		{
			name:      "valid parameters",
			threshold: 1600,
			trigger:   400,
		},
		{
			name:        "zero threshold",
			threshold:   0,
			trigger:     400,
			expectError: true,
		},
		{
			name:        "zero trigger",
			threshold:   1600,
			trigger:     0,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStartDetector(tt.threshold, 0, tt.trigger)

			if tt.expectError && err == nil {
				t.Errorf("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestStartDetectorTrigger(t *testing.T) {
	d, err := NewStartDetector(1000, 0, 3)
	if err != nil {
		t.Fatalf("Failed to create detector: %v", err)
	}

	if d.Observe(5000) {
		t.Error("Fired after one speech sample")
	}
	if d.Observe(5000) {
		t.Error("Fired after two speech samples")
	}
	if !d.Observe(5000) {
		t.Error("Expected fire after three speech samples")
	}
}

func TestStartDetectorAging(t *testing.T) {
	d, err := NewStartDetector(1000, 0, 2)
	if err != nil {
		t.Fatalf("Failed to create detector: %v", err)
	}

	// An isolated click ages out through the following quiet samples.
	d.Observe(5000)
	d.Observe(0)
	d.Observe(0)

	// The count is back to zero, so one more click must not fire.
	if d.Observe(5000) {
		t.Error("Fired on an isolated click after the count aged out")
	}

	// The count never goes negative: quiet samples beyond zero are ignored.
	if !d.Observe(5000) {
		t.Error("Expected fire after a second consecutive speech sample")
	}
}

func TestStartDetectorReset(t *testing.T) {
	d, err := NewStartDetector(1000, 0, 2)
	if err != nil {
		t.Fatalf("Failed to create detector: %v", err)
	}

	d.Observe(5000)
	d.Reset()

	if d.Observe(5000) {
		t.Error("Fired after reset with only one new speech sample")
	}
}
