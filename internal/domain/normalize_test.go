package domain

import "testing"

func TestNormalizeIngredientName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Chicken Breast", "chicken breast"},
		{"  chicken   breast  ", "chicken breast"},
		{"MILK", "milk"},
		{"whole\tmilk", "whole milk"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeIngredientName(tt.input); got != tt.want {
			t.Errorf("NormalizeIngredientName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
