package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	"github.com/singlesjukebox/jukebox-server/internal/service"
)

func newSongsCommand(ctx *commandContext) *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "songs",
		Short: "List songs with their score summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := make([]domain.SongStatus, 0, len(statuses))
			for _, s := range statuses {
				filter = append(filter, domain.SongStatus(strings.TrimSpace(s)))
			}

			return ctx.withApp(cmd.ErrOrStderr(), func(a *app) error {
				songs, err := a.songs.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if len(songs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No songs")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderSongs(songs))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Only songs in these statuses (open, closed, published, removed)")

	return cmd
}

func renderSongs(songs []*service.SongDetail) string {
	rows := make([][]string, 0, len(songs))
	for _, s := range songs {
		rows = append(rows, []string{
			s.ID,
			truncate(s.DisplayName(), 48),
			string(s.Status),
			strconv.Itoa(s.Summary.BlurbCount),
			formatScore(s.Summary.AverageScore),
			formatScore(s.Summary.ControversyIndex),
			string(s.Summary.Class),
		})
	}
	return renderTable(
		[]string{"ID", "Song", "Status", "Blurbs", "Average", "Controversy", "Class"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
