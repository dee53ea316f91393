package usecase

import "math"

// comparisonServings is the fixed serving count every cost comparison is
// computed against.
const comparisonServings = 4

// fallbackIngredientPrice is the flat per-ingredient estimate used when
// no real price is available.
const fallbackIngredientPrice = 2.50

// ComparisonInput is a delivery order vs. the same meal cooked at home.
type ComparisonInput struct {
	DeliveryPrice    float64   `json:"deliveryPrice"`
	DeliveryFees     float64   `json:"deliveryFees"`
	DeliveryTip      float64   `json:"deliveryTip"`
	IngredientPrices []float64 `json:"ingredientPrices"`
}

// ComparisonResult is the marketing-page display payload.
type ComparisonResult struct {
	DeliveryTotal   float64 `json:"deliveryTotal"`
	HomeCookedTotal float64 `json:"homeCookedTotal"`
	PerServingCost  float64 `json:"perServingCost"`
	Savings         float64 `json:"savings"`
	SavingsPercent  int     `json:"savingsPercent"`
	Servings        int     `json:"servings"`
}

// CompareCosts computes per-serving home-cooked cost against a delivery
// total. Ingredients with a missing or zero price fall back to a flat
// estimate. Savings percent is rounded to the nearest integer.
func CompareCosts(input ComparisonInput) ComparisonResult {
	deliveryTotal := input.DeliveryPrice + input.DeliveryFees + input.DeliveryTip

	homeTotal := 0.0
	for _, price := range input.IngredientPrices {
		if price <= 0 {
			price = fallbackIngredientPrice
		}
		homeTotal += price
	}

	perServing := homeTotal / comparisonServings
	savings := deliveryTotal - perServing

	percent := 0
	if deliveryTotal > 0 {
		percent = int(math.Round(savings / deliveryTotal * 100))
	}

	return ComparisonResult{
		DeliveryTotal:   round2(deliveryTotal),
		HomeCookedTotal: round2(homeTotal),
		PerServingCost:  round2(perServing),
		Savings:         round2(savings),
		SavingsPercent:  percent,
		Servings:        comparisonServings,
	}
}

// round2 rounds to cents for display.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
