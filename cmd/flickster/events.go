package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vmunix/flickster/internal/events"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recorded pipeline events",
	Args:  cobra.NoArgs,
	RunE:  runEventsCmd,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().Duration("since", 24*time.Hour, "Show events newer than this")
	eventsCmd.Flags().Duration("prune", 0, "Delete events older than this before listing")
}

type eventRow struct {
	ID         int64        `json:"id"`
	Type       string       `json:"type"`
	RunID      int64        `json:"run_id"`
	OccurredAt time.Time    `json:"occurred_at"`
	Event      events.Event `json:"event,omitempty"`
}

func runEventsCmd(cmd *cobra.Command, args []string) error {
	since, _ := cmd.Flags().GetDuration("since")
	prune, _ := cmd.Flags().GetDuration("prune")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("event log disabled (set database.path)")
	}

	db, err := openDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	return listEvents(cmd.Context(), events.NewEventLog(db), since, prune, jsonOutput, cmd.OutOrStdout())
}

func listEvents(ctx context.Context, log *events.EventLog, since, prune time.Duration, asJSON bool, out io.Writer) error {
	if prune > 0 {
		n, err := log.Prune(ctx, prune)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Pruned %d events\n", n)
	}

	raws, err := log.Since(ctx, time.Now().Add(-since))
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	registry := events.DefaultRegistry()
	rows := make([]eventRow, 0, len(raws))
	for _, raw := range raws {
		row := eventRow{ID: raw.ID, Type: raw.EventType, RunID: raw.EntityID, OccurredAt: raw.OccurredAt}
		if e, err := registry.Unmarshal(raw); err == nil {
			row.Event = e
		}
		rows = append(rows, row)
	}

	if asJSON {
		return printJSON(out, rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(out, "No events")
		return nil
	}

	fmt.Fprintf(out, "Events (%d):\n\n", len(rows))
	fmt.Fprintf(out, "  %-12s %-30s %-15s %s\n", "TIME", "TYPE", "RUN", "DETAIL")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 70))
	for _, r := range rows {
		fmt.Fprintf(out, "  %-12s %-30s %-15d %s\n", formatTimeAgo(r.OccurredAt), r.Type, r.RunID, describe(r.Event))
	}
	return nil
}

// describe summarizes the payload of known event types.
func describe(e events.Event) string {
	switch e := e.(type) {
	case *events.RunStarted:
		return e.Orientation
	case *events.ConfigurationLoaded:
		return fmt.Sprintf("poster=%s backdrop=%s", e.PosterSize, e.BackdropSize)
	case *events.EntryAppended:
		return fmt.Sprintf("#%d %s", e.Index+1, e.Title)
	case *events.RunReady:
		return fmt.Sprintf("%d movies", e.Count)
	case *events.RunFailed:
		return e.Message
	default:
		return ""
	}
}

func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	ago := time.Since(t)
	switch {
	case ago < time.Minute:
		return "just now"
	case ago < time.Hour:
		return fmt.Sprintf("%dm ago", int(ago.Minutes()))
	case ago < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(ago.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(ago.Hours()/24))
	}
}
