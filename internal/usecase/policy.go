package usecase

import (
	"math"
	"time"

	"github.com/homeplate/backend/internal/domain"
)

// priceEpsilon is the smallest price difference worth a rewrite: one
// cent, with a little slack for float representation.
const priceEpsilon = 0.009

// UpdatePolicy decides whether a stored ingredient record should be
// overwritten with a fresh catalog candidate. Pure decision logic; all
// persistence happens in the orchestrator. Force mode is handled by the
// orchestrator short-circuiting around this policy entirely.
type UpdatePolicy struct {
	minConfidence float64
	staleness     time.Duration
	now           func() time.Time
}

// NewUpdatePolicy creates a policy with the given confidence threshold
// (in [0,1]) and staleness threshold. Zero values fall back to 0.5 and
// seven days.
func NewUpdatePolicy(minConfidence float64, staleness time.Duration) *UpdatePolicy {
	if minConfidence <= 0 {
		minConfidence = 0.5
	}
	if staleness <= 0 {
		staleness = 7 * 24 * time.Hour
	}
	return &UpdatePolicy{
		minConfidence: minConfidence,
		staleness:     staleness,
		now:           time.Now,
	}
}

// ShouldUpdate returns true when:
//   - the ingredient has never been synced, or
//   - the candidate's confidence clears the threshold AND its price
//     differs meaningfully from the stored price, or
//   - the previous sync is older than the staleness threshold.
//
// A low-confidence candidate never clobbers a previously synced record.
func (p *UpdatePolicy) ShouldUpdate(current domain.Ingredient, candidate domain.Product, confidence float64) bool {
	if !current.Synced() {
		return true
	}

	if p.now().Sub(current.Product.UpdatedAt) > p.staleness {
		return true
	}

	if confidence < p.minConfidence {
		return false
	}

	return math.Abs(candidate.ResolvedPrice()-current.Product.Price) >= priceEpsilon
}

// SetClock overrides the policy's clock. Test use only.
func (p *UpdatePolicy) SetClock(now func() time.Time) {
	p.now = now
}
