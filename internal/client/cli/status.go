package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/complisync/internal/models"
)

type tableStatus struct {
	LastSynced  *time.Time `json:"last_synced,omitempty"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	Name        string     `json:"name"`
	Failure     string     `json:"failure,omitempty"`
	Records     int        `json:"records"`
	Pending     bool       `json:"pending"`
	Failed      bool       `json:"failed"`
	Tracked     bool       `json:"tracked"`
}

type statusReport struct {
	ExpiresAt *time.Time         `json:"expires_at,omitempty"`
	Username  string             `json:"username,omitempty"`
	UserID    string             `json:"user_id,omitempty"`
	Server    string             `json:"server"`
	Tables    []tableStatus      `json:"tables"`
	Queue     models.QueueStatus `json:"queue"`
	LoggedIn  bool               `json:"logged_in"`
	Expired   bool               `json:"expired"`
	Online    bool               `json:"online"`
	Probed    bool               `json:"probed"`
}

func (a *App) statusCmd() *cobra.Command {
	var (
		asJSON  bool
		noProbe bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show session, connectivity and per-table sync state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := a.collectStatus(cmd.Context(), !noProbe)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(a.io)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			a.printStatus(report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output status as JSON")
	cmd.Flags().BoolVar(&noProbe, "no-probe", false, "Do not contact the server")
	return cmd
}

func (a *App) collectStatus(ctx context.Context, probe bool) (*statusReport, error) {
	if err := a.open(ctx); err != nil {
		return nil, err
	}

	report := &statusReport{Server: a.client.BaseURL()}

	session, err := a.session(ctx)
	switch {
	case errors.Is(err, ErrNotLoggedIn):
	case session != nil:
		// просроченная сессия тоже показывается
		report.LoggedIn = err == nil
		report.Expired = err != nil
		report.Username = session.Username
		report.UserID = session.UserID
		if session.ExpiresAt > 0 {
			exp := time.Unix(session.ExpiresAt, 0)
			report.ExpiresAt = &exp
		}
	case err != nil:
		return nil, err
	}

	if probe {
		report.Probed = true
		report.Online = a.probe(ctx)
	}

	q, err := a.newQueue(ctx)
	if err != nil {
		return nil, err
	}
	report.Queue = q.GetQueueStatus()
	q.Close()

	for _, table := range a.statusTables(ctx) {
		ts := tableStatus{
			Name:    table,
			Pending: a.store.HasPendingChanges(ctx, table),
			Tracked: a.store.IsTracked(ctx, table),
		}
		if t, ok := a.store.LastSynced(ctx, table); ok {
			ts.LastSynced = &t
		}
		if t, ok := a.store.LastSuccess(ctx, table); ok {
			ts.LastSuccess = &t
		}
		ts.Failure, ts.Failed = a.store.SyncFailure(ctx, table)
		if report.UserID != "" {
			ts.Records = len(a.store.LoadData(ctx, table, report.UserID))
		}
		report.Tables = append(report.Tables, ts)
	}

	return report, nil
}

// statusTables известные таблицы плюс все, у которых есть маркеры
func (a *App) statusTables(ctx context.Context) []string {
	var tables []string
	for _, kind := range models.KnownTables() {
		tables = append(tables, kind.String())
	}
	for _, kind := range models.GlobalTables() {
		tables = append(tables, kind.String())
	}
	tables = append(tables, a.store.PendingTables(ctx)...)
	tables = append(tables, a.store.TrackedTables(ctx)...)

	slices.Sort(tables)
	return slices.Compact(tables)
}

func (a *App) printStatus(r *statusReport) {
	w := tabwriter.NewWriter(a.io, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	_, _ = fmt.Fprintf(w, "Server:\t%s\n", r.Server)
	switch {
	case !r.Probed:
		_, _ = fmt.Fprintf(w, "Network:\tnot checked\n")
	case r.Online:
		_, _ = fmt.Fprintf(w, "Network:\tonline\n")
	default:
		_, _ = fmt.Fprintf(w, "Network:\toffline\n")
	}

	switch {
	case r.LoggedIn:
		_, _ = fmt.Fprintf(w, "Session:\t%s (%s)\n", r.Username, r.UserID)
	case r.Expired:
		_, _ = fmt.Fprintf(w, "Session:\texpired for %s, run 'complisync login'\n", r.Username)
	default:
		_, _ = fmt.Fprintf(w, "Session:\tnot logged in\n")
	}
	if r.ExpiresAt != nil {
		_, _ = fmt.Fprintf(w, "Expires:\t%s\n", r.ExpiresAt.Format(time.RFC3339))
	}

	_, _ = fmt.Fprintf(w, "Queue:\t%d total, %d pending, %d failed\n", r.Queue.Total, r.Queue.Pending, r.Queue.Failed)
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, "TABLE\tRECORDS\tSTATE\tLAST SYNCED\tERROR")
	for _, t := range r.Tables {
		state := "synced"
		switch {
		case t.Failed:
			state = "failed"
		case t.Pending:
			state = "pending"
		case t.LastSynced == nil && t.LastSuccess == nil:
			state = "-"
		}
		if t.Tracked {
			state += " (traced)"
		}

		last := "never"
		if at := latest(t.LastSynced, t.LastSuccess); at != nil {
			last = at.Local().Format(time.DateTime)
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", t.Name, t.Records, state, last, t.Failure)
	}
}

func latest(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.After(*a):
		return b
	default:
		return a
	}
}
