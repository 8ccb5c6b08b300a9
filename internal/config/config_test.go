package config

import (
	"testing"
)

func TestContentSafetyThresholdDefaults(t *testing.T) {
	// Blank values fall through to the compiled-in defaults, so this
	// holds even when the test environment sets the variables.
	t.Setenv("SAFETY_THRESHOLD_HATE", "")
	t.Setenv("SAFETY_THRESHOLD_SEXUAL", "")
	t.Setenv("SAFETY_THRESHOLD_VIOLENCE", "")
	t.Setenv("SAFETY_THRESHOLD_SELF_HARM", "")

	cfg := Load()

	thresholds := cfg.ContentSafety.Thresholds()
	want := map[string]int{
		"hate":      0,
		"sexual":    2,
		"violence":  4,
		"self_harm": 4,
	}
	for category, severity := range want {
		if thresholds[category] != severity {
			t.Errorf("thresholds[%q] = %d, want %d", category, thresholds[category], severity)
		}
	}
}

func TestContentSafetyThresholdsFromEnv(t *testing.T) {
	t.Setenv("SAFETY_THRESHOLD_HATE", "1")
	t.Setenv("SAFETY_THRESHOLD_SEXUAL", "0")
	t.Setenv("SAFETY_THRESHOLD_VIOLENCE", "2")
	t.Setenv("SAFETY_THRESHOLD_SELF_HARM", "3")

	cfg := Load()

	thresholds := cfg.ContentSafety.Thresholds()
	want := map[string]int{
		"hate":      1,
		"sexual":    0,
		"violence":  2,
		"self_harm": 3,
	}
	for category, severity := range want {
		if thresholds[category] != severity {
			t.Errorf("thresholds[%q] = %d, want %d", category, thresholds[category], severity)
		}
	}
}
