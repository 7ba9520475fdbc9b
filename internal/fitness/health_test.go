package fitness

import (
	"errors"
	"testing"
)

func TestHealthMetricsValidate(t *testing.T) {
	tests := []struct {
		name    string
		metrics HealthMetrics
		wantErr bool
	}{
		{name: "zero", metrics: HealthMetrics{}},
		{name: "typical", metrics: HealthMetrics{Weight: 62.5, SleepHours: 7.5, Steps: 8000, HeartRate: 64}},
		{name: "full day of sleep", metrics: HealthMetrics{SleepHours: 24}},
		{name: "negative weight", metrics: HealthMetrics{Weight: -1}, wantErr: true},
		{name: "too much sleep", metrics: HealthMetrics{SleepHours: 24.5}, wantErr: true},
		{name: "negative steps", metrics: HealthMetrics{Steps: -10}, wantErr: true},
		{name: "negative heart rate", metrics: HealthMetrics{HeartRate: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.metrics.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidHealthRecord) {
				t.Fatalf("expected ErrInvalidHealthRecord, got %v", err)
			}
		})
	}
}

func TestHealthMetricsNormalize(t *testing.T) {
	got := HealthMetrics{Mood: "  good ", Note: "<i>睡得好</i> & 早起"}.Normalize()
	if got.Mood != "good" || got.Note != "睡得好 & 早起" {
		t.Fatalf("unexpected normalized metrics %+v", got)
	}
}
