package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/fieldvisits/internal/client/attachments"
	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
	"github.com/dmitrijs2005/fieldvisits/internal/timex"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

var errUsage = errors.New("usage")

// parseClientsArgs turns "clients" arguments into filter criteria.
//
//	-q text  -u user  -from YYYY-MM-DD  -to YYYY-MM-DD  -mine  -sort alphabetical|recency
func parseClientsArgs(args []string) (models.FilterCriteria, error) {
	var (
		c        models.FilterCriteria
		from, to string
		sortMode string
	)

	fs := flag.NewFlagSet("clients", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&c.SearchText, "q", "", "company or country contains")
	fs.StringVar(&c.UserID, "u", "", "visits by user id")
	fs.StringVar(&from, "from", "", "visits on or after YYYY-MM-DD")
	fs.StringVar(&to, "to", "", "visits on or before YYYY-MM-DD")
	fs.BoolVar(&c.OnlyMine, "mine", false, "only my visits")
	fs.StringVar(&sortMode, "sort", string(models.SortAlphabetical), "alphabetical or recency")

	if err := fs.Parse(args); err != nil {
		return c, fmt.Errorf("%w: clients [-q text] [-u user] [-from date] [-to date] [-mine] [-sort alphabetical|recency]: %v", errUsage, err)
	}
	c.SortMode = models.SortMode(sortMode)

	for _, d := range []struct {
		raw string
		dst **time.Time
	}{{from, &c.DateFrom}, {to, &c.DateTo}} {
		if d.raw == "" {
			continue
		}
		t, err := timex.ParseDate(d.raw, time.Local)
		if err != nil {
			return c, fmt.Errorf("%w: bad date %q, want YYYY-MM-DD", errUsage, d.raw)
		}
		*d.dst = &t
	}
	return c, nil
}

func (a *App) Clients(ctx context.Context, args []string) error {
	if err := a.guard(ctx); err != nil {
		return err
	}
	criteria, err := parseClientsArgs(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, a.requestTimeout())
	defer cancel()

	rollups, err := a.visits.Clients(ctx, criteria)
	if err != nil {
		return err
	}
	if len(rollups) == 0 {
		printlnFn("No clients match")
		return nil
	}

	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow(header("CLIENT"), header("COMPANY"), header("COUNTRY"), header("VISITS"), header("LATEST"), header("BY"))
	for _, r := range rollups {
		table.AddRow(r.Client.ClientID, r.Client.CompanyName, r.Client.Country, len(r.Visits),
			formatDate(r.LatestVisit.VisitDate), r.LatestVisit.UserID)
	}
	fmt.Fprintln(a.out, table)
	return nil
}

// Visits lists every visit of one client, in backend order.
func (a *App) Visits(ctx context.Context, args []string) error {
	if err := a.guard(ctx); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: visits <client_id>", errUsage)
	}

	ctx, cancel := context.WithTimeout(ctx, a.requestTimeout())
	defer cancel()

	c, err := a.visits.Client(ctx, args[0])
	if err != nil {
		return err
	}

	color.New(color.Bold).Fprintf(a.out, "%s (%s)\n", c.CompanyName, c.Country)
	if len(c.Visits) == 0 {
		printlnFn("No visits")
		return nil
	}
	table := visitTable()
	for _, v := range c.Visits {
		addVisitRow(table, v, "")
	}
	fmt.Fprintln(a.out, table)
	return nil
}

func (a *App) Today(ctx context.Context, args []string) error {
	return a.bucket(ctx, args, "today", a.visits.Today)
}

func (a *App) Week(ctx context.Context, args []string) error {
	return a.bucket(ctx, args, "week", a.visits.Week)
}

func (a *App) bucket(ctx context.Context, args []string, name string,
	load func(context.Context, bool) ([]models.BucketEntry, error)) error {
	if err := a.guard(ctx); err != nil {
		return err
	}
	onlyMine := false
	switch {
	case len(args) == 0:
	case len(args) == 1 && args[0] == "mine":
		onlyMine = true
	default:
		return fmt.Errorf("%w: %s [mine]", errUsage, name)
	}

	ctx, cancel := context.WithTimeout(ctx, a.requestTimeout())
	defer cancel()

	entries, err := load(ctx, onlyMine)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		printlnFn("No visits")
		return nil
	}

	table := visitTable()
	for _, e := range entries {
		company := ""
		if e.Client != nil {
			company = e.Client.CompanyName
		}
		addVisitRow(table, e.Visit, company)
	}
	fmt.Fprintln(a.out, table)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if err := a.guard(ctx); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: show <visit_id>", errUsage)
	}

	ctx, cancel := context.WithTimeout(ctx, a.requestTimeout())
	defer cancel()

	e, editable, err := a.visits.Visit(ctx, args[0])
	if err != nil {
		return err
	}

	v := e.Visit
	table := uitable.New()
	table.MaxColWidth = 80
	table.Wrap = true
	if e.Client != nil {
		table.AddRow("Client:", fmt.Sprintf("%s (%s)", e.Client.CompanyName, e.Client.ClientID))
	}
	table.AddRow("Visit:", v.VisitID)
	table.AddRow("Date:", formatDate(v.VisitDate))
	table.AddRow("Filed:", formatTime(v.CreatedAt))
	table.AddRow("By:", v.UserID)
	for _, f := range visitFields {
		table.AddRow(f.label+":", *f.field(&v))
	}
	if v.HasAttachment() {
		table.AddRow("Attachment:", v.AttachmentFile)
	}
	table.AddRow("Editable:", yesNo(editable))
	fmt.Fprintln(a.out, table)
	return nil
}

// Link prints a temporary download link for the visit's attachment.
func (a *App) Link(ctx context.Context, args []string) error {
	if err := a.guard(ctx); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: link <visit_id>", errUsage)
	}

	ctx, cancel := context.WithTimeout(ctx, a.requestTimeout())
	defer cancel()

	url, err := a.visits.AttachmentLink(ctx, args[0])
	if errors.Is(err, attachments.ErrNoAttachment) {
		printlnFn("This visit has no attachment")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, url)
	return nil
}

// Refresh re-checks the session right away and reloads the dataset.
func (a *App) Refresh(ctx context.Context) error {
	a.mu.Lock()
	m, sctx := a.monitor, a.screenCtx
	a.mu.Unlock()

	if m != nil && !m.ProbeNow(sctx) {
		printlnFn("A session check is already running")
	}
	if err := a.guard(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, a.requestTimeout())
	defer cancel()

	clients, visits, err := a.visits.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Loaded %d clients, %d visits\n", clients, visits)
	return nil
}

func visitTable() *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = 30
	table.AddRow(header("VISIT"), header("DATE"), header("COMPANY"), header("TYPE"), header("CONTACT"), header("BY"))
	return table
}

func addVisitRow(table *uitable.Table, v models.Visit, company string) {
	table.AddRow(v.VisitID, formatDate(v.VisitDate), company, v.MeetingType, v.ContactPerson, v.UserID)
}

func header(s string) string {
	return color.New(color.Bold).Sprint(s)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
