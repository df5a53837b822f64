package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
	"github.com/dmitrijs2005/fieldvisits/internal/client/visits"
	"github.com/dmitrijs2005/fieldvisits/internal/timex"
	"github.com/fatih/color"
)

// visitFields are the free-text fields of a visit, in display order.
var visitFields = []struct {
	label string
	field func(v *models.Visit) *string
}{
	{"Contact person", func(v *models.Visit) *string { return &v.ContactPerson }},
	{"Meeting type", func(v *models.Visit) *string { return &v.MeetingType }},
	{"Purpose", func(v *models.Visit) *string { return &v.MeetingPurpose }},
	{"Summary", func(v *models.Visit) *string { return &v.PostMeetingSummary }},
	{"Marketing tasks", func(v *models.Visit) *string { return &v.MarketingTasks }},
	{"Action plan", func(v *models.Visit) *string { return &v.ActionPlan }},
	{"Competition", func(v *models.Visit) *string { return &v.CompetitionInfo }},
	{"Notes", func(v *models.Visit) *string { return &v.AdditionalNotes }},
}

// Edit walks the user through the visit's fields and saves the result.
// Visits outside the edit window are refused before any prompt.
func (a *App) Edit(ctx context.Context, args []string) error {
	if err := a.guard(ctx); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: edit <visit_id>", errUsage)
	}
	visitID := args[0]

	checkCtx, cancel := context.WithTimeout(ctx, a.requestTimeout())
	_, editable, err := a.visits.Visit(checkCtx, visitID)
	cancel()
	if err != nil {
		return err
	}
	if !editable {
		return visits.ErrEditWindowClosed
	}

	// Prompts run inside apply, so this call has no overall deadline.
	updated, err := a.visits.Edit(ctx, visitID, a.promptVisit)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(a.out, "Visit %s saved\n", updated.VisitID)
	return nil
}

// promptVisit edits v in place. Enter keeps a value, "-" clears it.
func (a *App) promptVisit(v *models.Visit) error {
	printlnFn("Enter keeps the current value, '-' clears it.")

	current := ""
	if !v.VisitDate.IsZero() {
		current = v.VisitDate.Format(time.DateOnly)
	}
	date, err := GetWithDefault(a.reader, "Visit date (YYYY-MM-DD)", current, a.out)
	if err != nil {
		return err
	}
	date = strings.TrimSpace(date)
	switch {
	case date == current:
	case date == "":
		v.VisitDate = time.Time{}
	default:
		t, err := timex.ParseDate(date, time.Local)
		if err != nil {
			return fmt.Errorf("%w: bad date %q, want YYYY-MM-DD", errUsage, date)
		}
		v.VisitDate = t
	}

	for _, f := range visitFields {
		p := f.field(v)
		val, err := GetWithDefault(a.reader, f.label, *p, a.out)
		if err != nil {
			return err
		}
		*p = val
	}
	return nil
}
