package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_NormalTempNeverAlerts(t *testing.T) {
	// temperature <= 37.5 → no alert regardless of heart rate
	for _, temp := range []float64{30.0, 36.6, 37.0, 37.5} {
		for bpm := 0; bpm <= 250; bpm += 5 {
			assert.False(t, Evaluate(temp, bpm),
				"temp=%.1f bpm=%d should not alert", temp, bpm)
		}
	}
}

func TestEvaluate_NormalHeartRateNeverAlerts(t *testing.T) {
	// heart rate in [60,100] → no alert regardless of temperature
	for bpm := 60; bpm <= 100; bpm++ {
		for _, temp := range []float64{35.0, 37.5, 38.0, 41.0} {
			assert.False(t, Evaluate(temp, bpm),
				"temp=%.1f bpm=%d should not alert", temp, bpm)
		}
	}
}

func TestEvaluate_Conjunction(t *testing.T) {
	tests := []struct {
		name  string
		temp  float64
		bpm   int
		alert bool
	}{
		{"high temp + bradycardia", 38.0, 45, true},
		{"high temp + tachycardia", 38.0, 120, true},
		{"high temp + normal rate", 38.0, 75, false},
		{"normal temp + bradycardia", 37.0, 45, false},
		{"normal temp + tachycardia", 36.5, 130, false},
		{"boundary temp not high", 37.5, 45, false},
		{"just above boundary temp", 37.6, 59, true},
		{"rate boundary low", 38.0, 60, false},
		{"rate boundary high", 38.0, 100, false},
		{"rate just below low", 38.0, 59, true},
		{"rate just above high", 38.0, 101, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.alert, Evaluate(tt.temp, tt.bpm))
		})
	}
}

func TestEvaluate_MatchesDefinition(t *testing.T) {
	// alert ⟺ temp > 37.5 AND (bpm < 60 OR bpm > 100)
	for _, temp := range []float64{36.0, 37.5, 37.6, 39.2} {
		for bpm := 30; bpm <= 220; bpm += 7 {
			want := temp > 37.5 && (bpm < 60 || bpm > 100)
			assert.Equal(t, want, Evaluate(temp, bpm))
		}
	}
}
