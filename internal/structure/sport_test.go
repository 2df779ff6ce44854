package structure

import "testing"

func TestMapWorkoutType(t *testing.T) {
	tests := []struct {
		id   int
		want string
	}{
		{1, "Swim"},
		{2, "Ride"},
		{3, "Run"},
		{9, "WeightTraining"},
		{29, "WeightTraining"},
		{11, "NordicSki"},
		{12, "Rowing"},
		{13, "Walk"},
	}

	for _, tt := range tests {
		if got := MapWorkoutType(tt.id); got != tt.want {
			t.Errorf("MapWorkoutType(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

// TestMapWorkoutTypeUnknown verifies the mapping is total: every id outside
// the lookup table falls back to Other.
func TestMapWorkoutTypeUnknown(t *testing.T) {
	for _, id := range []int{0, -1, 5, 999, 100000} {
		if got := MapWorkoutType(id); got != "Other" {
			t.Errorf("MapWorkoutType(%d) = %q, want Other", id, got)
		}
	}
}
