package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/scaffold-engine/internal/events"
)

// #region events-cmd

func newEventsCmd() *cobra.Command {
	var (
		dbPath     string
		limit      int
		detections bool
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent selection or detection events from the event log",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := events.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if detections {
				return showDetections(store, limit)
			}
			return showSelections(store, limit)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "scaffold_events.db", "path to the event database")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum events to show")
	cmd.Flags().BoolVar(&detections, "detections", false, "show detection events instead of selections")
	return cmd
}

// #endregion events-cmd

// #region events-output

func showSelections(store *events.Store, limit int) error {
	rows, err := store.RecentSelections(limit)
	if err != nil {
		return err
	}
	if flagJSON {
		return printEventsJSON(rows)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTEMPLATE\tMODE\tCONFIDENCE\tAMBIGUOUS\tINPUT")
	for _, ev := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\t%v\t%s\n",
			ev.CreatedAt.Format("2006-01-02 15:04:05"),
			orDash(ev.TemplateID), ev.Mode, ev.Confidence, ev.Ambiguous,
			truncate(ev.InputText, 48))
	}
	w.Flush()
	return nil
}

func showDetections(store *events.Store, limit int) error {
	rows, err := store.RecentDetections(limit)
	if err != nil {
		return err
	}
	if flagJSON {
		return printEventsJSON(rows)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSOURCE\tSIGNAL\tM_SCORE\tCOHERENCE\tDOMINANT")
	for _, ev := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\t%.4f\t%s\n",
			ev.CreatedAt.Format("2006-01-02 15:04:05"),
			ev.Source, ev.Signal, ev.MScore, ev.Coherence, orDash(ev.Dominant))
	}
	w.Flush()
	return nil
}

func printEventsJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// #endregion events-output
