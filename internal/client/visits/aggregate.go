package visits

import (
	"sort"
	"strings"

	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
	"github.com/dmitrijs2005/fieldvisits/internal/timex"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Aggregate filters clients and their visits by criteria and returns one
// rollup per client that still has visits, sorted by criteria.SortMode.
func Aggregate(clients []models.Client, criteria models.FilterCriteria, actorID string) []models.ClientRollup {
	fold := cases.Fold()
	search := fold.String(criteria.SearchText)

	rollups := make([]models.ClientRollup, 0, len(clients))
	for i := range clients {
		c := &clients[i]

		if search != "" && !strings.Contains(fold.String(c.CompanyName), search) {
			continue
		}

		kept := make([]models.Visit, 0, len(c.Visits))
		for _, v := range c.Visits {
			if matchVisit(v, criteria, actorID) {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			continue
		}

		rollups = append(rollups, models.ClientRollup{
			Client:      c,
			Visits:      kept,
			LatestVisit: latest(kept),
		})
	}

	switch criteria.SortMode {
	case models.SortRecency:
		sortByRecency(rollups)
	default:
		sortAlphabetically(rollups, criteria.Locale)
	}

	return rollups
}

func matchVisit(v models.Visit, f models.FilterCriteria, actorID string) bool {
	if f.UserID != "" && v.UserID != f.UserID {
		return false
	}
	if f.OnlyMine && v.UserID != actorID {
		return false
	}
	if f.DateFrom != nil {
		if v.VisitDate.IsZero() || timex.CompareDate(v.VisitDate, *f.DateFrom) < 0 {
			return false
		}
	}
	if f.DateTo != nil {
		if v.VisitDate.IsZero() || timex.CompareDate(v.VisitDate, *f.DateTo) > 0 {
			return false
		}
	}
	return true
}

// latest returns the visit with the greatest VisitDate; the first one wins
// ties. vs must not be empty.
func latest(vs []models.Visit) models.Visit {
	best := vs[0]
	for _, v := range vs[1:] {
		if v.VisitDate.After(best.VisitDate) {
			best = v
		}
	}
	return best
}

// sortByRecency orders rollups newest first by the date of the first
// filtered visit, not by LatestVisit. Missing dates sort last.
func sortByRecency(rs []models.ClientRollup) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].Visits[0].VisitDate.After(rs[j].Visits[0].VisitDate)
	})
}

func sortAlphabetically(rs []models.ClientRollup, locale string) {
	col := collate.New(collationTag(locale))
	sort.SliceStable(rs, func(i, j int) bool {
		return col.CompareString(rs[i].Client.CompanyName, rs[j].Client.CompanyName) < 0
	})
}

func collationTag(locale string) language.Tag {
	if locale == "" {
		return language.Und
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Und
	}
	return tag
}
