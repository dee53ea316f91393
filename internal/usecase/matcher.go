package usecase

import (
	"regexp"
	"strings"
)

// Package-level compiled regex pattern for performance
var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// Coverage weights for the blended score. Ingredient coverage matters
// most: if the user wrote "whole milk" and both tokens appear in the
// catalog description, that is the strongest signal.
const (
	ingredientCoverageWeight  = 0.60
	descriptionCoverageWeight = 0.20
	jaccardWeight             = 0.20
	substringBonus            = 0.10
)

// stopWords are tokens that carry no matching signal: basic English
// stop words plus grocery size/packaging noise.
var stopWords = map[string]bool{
	// Basic English stop words
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "is": true,
	// Size/quantity units
	"oz": true, "fl": true, "lb": true, "lbs": true, "ml": true,
	"gallon": true, "quart": true, "pint": true, "liter": true,
	"gram": true, "grams": true, "kg": true, "ounce": true, "ounces": true,
	"cup": true, "cups": true, "tbsp": true, "tsp": true,
	// Packaging terms
	"pack": true, "count": true, "ct": true, "pk": true,
	"box": true, "bag": true, "bottle": true, "can": true,
	"carton": true, "container": true, "jar": true, "each": true,
}

// CalculateConfidenceScore computes how well a catalog product
// description matches a requested ingredient name, on a [0,1] scale.
// Pure and deterministic: identical strings score at 1.0, disjoint
// strings at 0.0, with a graded scale in between driven by token
// overlap. Uses a weighted blend of:
//   - ingredient coverage: what fraction of the ingredient's tokens
//     appear in the description (most important)
//   - description coverage: what fraction of the description's tokens
//     appear in the ingredient name
//   - Jaccard similarity over the union
//   - a small bonus for an exact substring match
func CalculateConfidenceScore(ingredientName, catalogDescription string) float64 {
	ingredientTokens := tokenize(ingredientName)
	descriptionTokens := tokenize(catalogDescription)

	if len(ingredientTokens) == 0 || len(descriptionTokens) == 0 {
		return 0
	}

	ingredientMatched := countIntersection(ingredientTokens, descriptionTokens)
	ingredientCoverage := float64(ingredientMatched) / float64(len(ingredientTokens))

	descriptionMatched := countIntersection(descriptionTokens, ingredientTokens)
	descriptionCoverage := float64(descriptionMatched) / float64(len(descriptionTokens))

	union := countUnion(ingredientTokens, descriptionTokens)
	jaccard := float64(ingredientMatched) / float64(union)

	score := ingredientCoverage*ingredientCoverageWeight +
		descriptionCoverage*descriptionCoverageWeight +
		jaccard*jaccardWeight

	// Exact substring bonus for names long enough to be meaningful
	ingredientLower := strings.ToLower(strings.TrimSpace(ingredientName))
	descriptionLower := strings.ToLower(strings.TrimSpace(catalogDescription))
	if len(ingredientLower) > 3 &&
		(strings.Contains(descriptionLower, ingredientLower) || strings.Contains(ingredientLower, descriptionLower)) {
		score += substringBonus
	}

	if score > 1 {
		score = 1
	}
	return score
}

// tokenize splits a string into normalized lowercase tokens.
// Removes punctuation, stop words, and pure numeric tokens.
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")
	words := strings.Fields(cleaned)

	var tokens []string
	for _, word := range words {
		if len(word) <= 1 {
			continue
		}
		if stopWords[word] {
			continue
		}
		if isNumeric(word) {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// countIntersection returns the number of distinct tokens of tokens1
// that also appear in tokens2.
func countIntersection(tokens1, tokens2 []string) int {
	set := make(map[string]bool)
	for _, t := range tokens2 {
		set[t] = true
	}

	seen := make(map[string]bool)
	count := 0
	for _, t := range tokens1 {
		if set[t] && !seen[t] {
			count++
			seen[t] = true
		}
	}
	return count
}

// countUnion returns the count of unique tokens across both sets
func countUnion(tokens1, tokens2 []string) int {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}
	for _, t := range tokens2 {
		set[t] = true
	}
	return len(set)
}
