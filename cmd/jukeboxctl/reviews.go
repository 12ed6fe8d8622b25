package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/singlesjukebox/jukebox-server/internal/service"
)

func newReviewsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reviews <songID>",
		Short: "Show a song's reviews in sort order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.ErrOrStderr(), func(a *app) error {
				sr, err := a.reviews.ListForSong(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s)\n", sr.Song.DisplayName(), sr.Song.Status)
				if len(sr.Reviews) > 0 {
					fmt.Fprintln(out, renderReviews(sr.Reviews))
				}
				fmt.Fprintf(out, "%d blurbs, average %s, controversy %s, %s\n",
					sr.Summary.BlurbCount,
					formatScore(sr.Summary.AverageScore),
					formatScore(sr.Summary.ControversyIndex),
					sr.Summary.Class)
				return nil
			})
		},
	}
}

func renderReviews(reviews []service.ReviewWithWriter) string {
	rows := make([][]string, 0, len(reviews))
	for _, r := range reviews {
		writer := r.WriterID
		if r.Writer != nil {
			writer = r.Writer.FullName()
		}
		rows = append(rows, []string{
			strconv.Itoa(r.SortOrder),
			r.ID,
			writer,
			string(r.Status),
			strconv.Itoa(r.Score),
			truncate(r.Blurb, 40),
		})
	}
	return renderTable(
		[]string{"#", "ID", "Writer", "Status", "Score", "Blurb"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}
