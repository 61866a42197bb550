package strength

import "testing"

func TestFromRating(t *testing.T) {
	tests := []struct {
		rating int
		want   int
	}{
		{-400, 1},
		{0, 1},
		{800, 1},
		{1249, 1},
		{1250, 2},
		{1349, 2},
		{1350, 3},
		{1500, 4},
		{1999, 9},
		{2000, 9},
		{2050, 10},
		{2500, 14},
		{2949, 18},
		{2950, 19},
		{3049, 19},
		{3050, 20},
		{4000, 20},
	}

	for _, tt := range tests {
		got := FromRating(tt.rating)
		if got.SkillLevel != tt.want {
			t.Errorf("FromRating(%d).SkillLevel = %d, want %d", tt.rating, got.SkillLevel, tt.want)
		}
		if got.Depth != tt.want {
			t.Errorf("FromRating(%d).Depth = %d, want %d", tt.rating, got.Depth, tt.want)
		}
	}
}

func TestFromRating_Monotonic(t *testing.T) {
	prev := FromRating(-10000)
	for rating := -9999; rating <= 10000; rating++ {
		got := FromRating(rating)
		if got.SkillLevel < prev.SkillLevel || got.Depth < prev.Depth {
			t.Fatalf("FromRating(%d) = %+v, weaker than FromRating(%d) = %+v", rating, got, rating-1, prev)
		}
		prev = got
	}
}

func TestFromRating_Bounds(t *testing.T) {
	for _, rating := range []int{-1 << 30, 0, 10000, 1 << 30} {
		got := FromRating(rating)
		if got.SkillLevel < 1 || got.SkillLevel > 20 || got.Depth < 1 || got.Depth > 20 {
			t.Errorf("FromRating(%d) = %+v, out of 1..20", rating, got)
		}
	}
}
