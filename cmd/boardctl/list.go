package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nomis52/activityboard/activity"
	"github.com/nomis52/activityboard/board"
	"github.com/spf13/cobra"
)

// failedToLoad matches the notice the web board shows.
const failedToLoad = "Failed to load activities. Please try again later."

func newListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List activities with their schedules and participants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBoard(cmd, func(ctx context.Context, b *board.Board) error {
				if err := b.Refresh(ctx); err != nil {
					return fmt.Errorf("%s: %w", failedToLoad, err)
				}
				activities := b.Snapshot().Activities
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(activities)
				}
				printActivities(cmd.OutOrStdout(), activities)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the activities as JSON, in backend order")
	return cmd
}

func printActivities(w io.Writer, activities activity.Collection) {
	for i, a := range activities.All() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, a.Name)
		fmt.Fprintf(w, "  %s\n", a.Description)
		fmt.Fprintf(w, "  Schedule: %s\n", a.Schedule)
		fmt.Fprintf(w, "  Availability: %d spots left\n", a.SpotsLeft())
		if len(a.Participants) == 0 {
			fmt.Fprintln(w, "  Participants: No participants yet")
			continue
		}
		fmt.Fprintf(w, "  Participants: %s\n", strings.Join(a.Participants, ", "))
	}
}
