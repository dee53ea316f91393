package usecase

import "testing"

func TestCalculateConfidenceScore(t *testing.T) {
	t.Run("identical strings score 1.0", func(t *testing.T) {
		score := CalculateConfidenceScore("chicken breast", "chicken breast")
		if score != 1.0 {
			t.Errorf("score = %v, want 1.0", score)
		}
	})

	t.Run("identical strings ignoring case score 1.0", func(t *testing.T) {
		score := CalculateConfidenceScore("Chicken Breast", "CHICKEN BREAST")
		if score != 1.0 {
			t.Errorf("score = %v, want 1.0", score)
		}
	})

	t.Run("disjoint strings score 0.0", func(t *testing.T) {
		score := CalculateConfidenceScore("flour", "blue corn tortilla chips")
		if score != 0.0 {
			t.Errorf("score = %v, want 0.0", score)
		}
	})

	t.Run("empty inputs score 0.0", func(t *testing.T) {
		if score := CalculateConfidenceScore("", "whole milk"); score != 0 {
			t.Errorf("score = %v, want 0", score)
		}
		if score := CalculateConfidenceScore("whole milk", ""); score != 0 {
			t.Errorf("score = %v, want 0", score)
		}
	})

	t.Run("score is monotonic in token overlap", func(t *testing.T) {
		description := "organic boneless skinless chicken breast"

		none := CalculateConfidenceScore("rice vinegar", description)
		partial := CalculateConfidenceScore("chicken thigh", description)
		most := CalculateConfidenceScore("boneless chicken breast", description)
		all := CalculateConfidenceScore("organic boneless skinless chicken breast", description)

		if !(none < partial && partial < most && most < all) {
			t.Errorf("scores not monotonic: none=%v partial=%v most=%v all=%v",
				none, partial, most, all)
		}
	})

	t.Run("graded scale between extremes", func(t *testing.T) {
		score := CalculateConfidenceScore("whole milk", "whole vitamin d milk gallon")
		if score <= 0.0 || score >= 1.0 {
			t.Errorf("score = %v, want strictly between 0 and 1", score)
		}
	})

	t.Run("stop words and sizes carry no signal", func(t *testing.T) {
		withNoise := CalculateConfidenceScore("whole milk 128 fl oz", "whole milk")
		clean := CalculateConfidenceScore("whole milk", "whole milk")
		if withNoise != clean {
			t.Errorf("score with size noise = %v, want %v", withNoise, clean)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a := CalculateConfidenceScore("greek yogurt", "plain greek yogurt nonfat")
		b := CalculateConfidenceScore("greek yogurt", "plain greek yogurt nonfat")
		if a != b {
			t.Errorf("scores differ across calls: %v vs %v", a, b)
		}
	})

	t.Run("score stays in [0,1]", func(t *testing.T) {
		pairs := [][2]string{
			{"chicken breast", "chicken breast boneless skinless chicken breast"},
			{"milk", "milk"},
			{"a", "b"},
			{"extra virgin olive oil", "olive oil extra virgin 500 ml bottle"},
		}
		for _, pair := range pairs {
			score := CalculateConfidenceScore(pair[0], pair[1])
			if score < 0 || score > 1 {
				t.Errorf("score(%q, %q) = %v, out of [0,1]", pair[0], pair[1], score)
			}
		}
	})
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"drops punctuation and case", "Chicken, Breast!", []string{"chicken", "breast"}},
		{"drops stop words", "a gallon of milk", []string{"milk"}},
		{"drops numeric tokens", "eggs 12 count", []string{"eggs"}},
		{"drops single characters", "x y milk", []string{"milk"}},
		{"empty input", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("tokenize(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}
