package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nomis52/activityboard/board"
	"github.com/nomis52/activityboard/render"
	"github.com/spf13/cobra"
)

func newSignupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "signup <activity> <email>",
		Short: "Sign a student up for an activity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBoard(cmd, func(ctx context.Context, b *board.Board) error {
				msg := b.SubmitSignup(ctx, args[0], args[1])
				return report(cmd, msg)
			})
		},
	}
}

// report prints a success message, or returns an error message as the
// command's error.
func report(cmd *cobra.Command, msg render.Message) error {
	if msg.Kind == render.MessageError {
		return errors.New(msg.Text)
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg.Text)
	return nil
}
