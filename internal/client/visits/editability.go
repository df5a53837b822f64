package visits

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
	"github.com/dmitrijs2005/fieldvisits/internal/clock"
)

// EditWindow is how long a restricted actor may edit a visit after creating
// it. The boundary itself is still inside the window.
const EditWindow = 24 * time.Hour

var ErrEditWindowClosed = errors.New("visit can no longer be edited")

// CanEditAt reports whether actor may edit v at now. Restricted actors
// cannot edit visits without a creation time.
func CanEditAt(v models.Visit, actor models.Identity, now time.Time) bool {
	if !actor.IsRestricted() {
		return true
	}
	if v.CreatedAt.IsZero() {
		return false
	}
	return now.Sub(v.CreatedAt) <= EditWindow
}

type EditPolicy struct {
	clock clock.Clock
}

func NewEditPolicy(c clock.Clock) EditPolicy {
	return EditPolicy{clock: c}
}

func (p EditPolicy) CanEdit(v models.Visit, actor models.Identity) bool {
	return CanEditAt(v, actor, p.clock.Now())
}

// Check is CanEdit as an error, for callers that surface the denial.
func (p EditPolicy) Check(v models.Visit, actor models.Identity) error {
	if !p.CanEdit(v, actor) {
		return ErrEditWindowClosed
	}
	return nil
}
