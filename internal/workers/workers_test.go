package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	available := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		check      func(t *testing.T, got int)
	}{
		{
			name:       "CPU bound matches GOMAXPROCS",
			multiplier: 1.0,
			limit:      0,
			check: func(t *testing.T, got int) {
				if got != available {
					t.Errorf("got %d workers, want %d", got, available)
				}
			},
		},
		{
			name:       "IO bound doubles",
			multiplier: 2.0,
			limit:      0,
			check: func(t *testing.T, got int) {
				if got != available*2 {
					t.Errorf("got %d workers, want %d", got, available*2)
				}
			},
		},
		{
			name:       "limit caps count",
			multiplier: 2.0,
			limit:      1,
			check: func(t *testing.T, got int) {
				if got != 1 {
					t.Errorf("got %d workers, want 1", got)
				}
			},
		},
		{
			name:       "never below one",
			multiplier: 0.0001,
			limit:      0,
			check: func(t *testing.T, got int) {
				if got < 1 {
					t.Errorf("got %d workers, want at least 1", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Count(tt.multiplier, tt.limit))
		})
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SWEEP_WORKERS", "3")

	if got := Count(1.0, 0); got != 3 {
		t.Errorf("got %d workers with SWEEP_WORKERS=3, want 3", got)
	}
	if got := Count(1.0, 2); got != 2 {
		t.Errorf("limit must still cap the override, got %d want 2", got)
	}

	t.Setenv("SWEEP_WORKERS", "garbage")
	if got := Count(1.0, 0); got < 1 {
		t.Errorf("invalid override must fall back to computed count, got %d", got)
	}
}
