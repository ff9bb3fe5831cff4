package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/nomis52/activityboard/board"
	"github.com/spf13/cobra"
)

func newRemoveCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <activity> <email>",
		Short: "Remove a participant from an activity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var confirm board.Confirmer = board.Always
			if !yes {
				confirm = prompt(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			return a.withBoard(cmd, func(ctx context.Context, b *board.Board) error {
				msg, removed := b.RemoveParticipant(ctx, args[0], args[1], confirm)
				if !removed {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
				return report(cmd, msg)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "remove without asking for confirmation")
	return cmd
}

// prompt asks on out and reads y or n from in. Anything else repeats the
// question; end of input declines.
func prompt(in io.Reader, out io.Writer) board.Confirmer {
	return board.ConfirmFunc(func(question string) bool {
		scanner := bufio.NewScanner(in)
		fmt.Fprintf(out, "%s (y/n) ", question)
		for scanner.Scan() {
			switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
			case "y", "yes":
				return true
			case "n", "no":
				return false
			}
			fmt.Fprintf(out, "%s (y/n) ", question)
		}
		return false
	})
}
