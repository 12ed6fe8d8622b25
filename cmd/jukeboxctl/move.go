package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/singlesjukebox/jukebox-server/internal/id"
	"github.com/singlesjukebox/jukebox-server/internal/ordering"
)

func newMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "move <reviewID> <top|bottom|up|down>",
		Short:     "Move a review within its song's running order",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"top", "bottom", "up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !id.Review.Owns(args[0]) {
				return fmt.Errorf("%q is not a review id", args[0])
			}
			move, err := ordering.ParseMove(strings.ToLower(args[1]))
			if err != nil {
				return err
			}

			return ctx.withApp(cmd.ErrOrStderr(), func(a *app) error {
				res, err := a.reorder.Move(cmd.Context(), args[0], move)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(res.Changed) == 0 {
					fmt.Fprintln(out, "Already in place")
					return nil
				}
				for _, c := range res.Changed {
					fmt.Fprintf(out, "%s -> %d\n", c.ID, c.SortOrder)
				}
				return nil
			})
		},
	}
}
