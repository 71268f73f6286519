package models

import "testing"

func TestParseLevel_KnownLevels(t *testing.T) {
	cases := map[string]Level{
		"A1":   LevelA1,
		"a2":   LevelA2,
		" b1 ": LevelB1,
		"B2":   LevelB2,
		"c1":   LevelC1,
		"C2":   LevelC2,
	}

	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseLevel_UnknownFallsBackToB1(t *testing.T) {
	for _, input := range []string{"X9", "", "A7", "beginner"} {
		if got := ParseLevel(input); got != DefaultLevel {
			t.Errorf("ParseLevel(%q) = %q, want %q", input, got, DefaultLevel)
		}
	}
}

func TestParams_MonotoneInLevel(t *testing.T) {
	levels := Levels()
	for i := 1; i < len(levels); i++ {
		prev := levels[i-1].Params()
		cur := levels[i].Params()
		if cur.Temperature <= prev.Temperature {
			t.Errorf("temperature not increasing from %s (%.2f) to %s (%.2f)",
				levels[i-1], prev.Temperature, levels[i], cur.Temperature)
		}
		if cur.DiversityPenalty < prev.DiversityPenalty {
			t.Errorf("diversity penalty decreasing from %s (%.2f) to %s (%.2f)",
				levels[i-1], prev.DiversityPenalty, levels[i], cur.DiversityPenalty)
		}
	}
}

func TestParams_LowestLevelNeutralPenalty(t *testing.T) {
	if p := LevelA1.Params(); p.DiversityPenalty != 0.0 {
		t.Errorf("A1 diversity penalty = %.2f, want 0.0", p.DiversityPenalty)
	}
}

func TestParams_UnknownLevelNeutral(t *testing.T) {
	got := Level("X9").Params()
	want := DefaultLevel.Params()
	if got != want {
		t.Errorf("unknown level params = %+v, want B1 params %+v", got, want)
	}
}
