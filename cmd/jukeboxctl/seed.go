package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/service"
)

// fixtures is the YAML document accepted by seed. Songs are referenced
// by their fixture key, writers by username.
type fixtures struct {
	Writers []writerFixture `yaml:"writers"`
	Songs   []songFixture   `yaml:"songs"`
	Reviews []reviewFixture `yaml:"reviews"`
	Weeks   []weekFixture   `yaml:"weeks"`
}

type writerFixture struct {
	Username  string `yaml:"username"`
	Email     string `yaml:"email"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Password  string `yaml:"password"`
	Staff     bool   `yaml:"staff"`
	Admin     bool   `yaml:"admin"`
}

type songFixture struct {
	Key     string `yaml:"key"`
	Artist  string `yaml:"artist"`
	Title   string `yaml:"title"`
	Tagline string `yaml:"tagline"`
	WebLink string `yaml:"web_link"`
}

type reviewFixture struct {
	Writer string `yaml:"writer"`
	Song   string `yaml:"song"`
	Score  int    `yaml:"score"`
	Blurb  string `yaml:"blurb"`
	Draft  bool   `yaml:"draft"`
}

type weekFixture struct {
	WeekBeginning string              `yaml:"week_beginning"` // YYYY-MM-DD
	Info          string              `yaml:"info"`
	Current       bool                `yaml:"current"`
	Days          map[string][]string `yaml:"days"` // weekday -> song keys
}

type seedResult struct {
	Writers int
	Songs   int
	Reviews int
	Weeks   int
	SongIDs map[string]string // fixture key -> song ID
}

func loadFixtures(r io.Reader) (*fixtures, error) {
	var f fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &f, nil
}

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load writers, songs, reviews and weeks from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			fh, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open fixtures: %w", err)
			}
			defer fh.Close() //nolint:errcheck // read-only

			f, err := loadFixtures(fh)
			if err != nil {
				return err
			}

			return ctx.withApp(cmd.ErrOrStderr(), func(a *app) error {
				res, err := seed(cmd.Context(), a, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d writers, %d songs, %d reviews, %d weeks\n",
					res.Writers, res.Songs, res.Reviews, res.Weeks)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Fixtures file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// seed applies f in dependency order. Writers that already exist are
// reused so a file can be replayed against a populated database.
func seed(ctx context.Context, a *app, f *fixtures) (*seedResult, error) {
	res := &seedResult{SongIDs: make(map[string]string, len(f.Songs))}
	writerIDs := make(map[string]string, len(f.Writers))

	for _, wf := range f.Writers {
		w, err := a.writers.Create(ctx, service.CreateWriterRequest{
			Username:  wf.Username,
			Email:     wf.Email,
			FirstName: wf.FirstName,
			LastName:  wf.LastName,
			Password:  wf.Password,
			IsStaff:   wf.Staff,
			IsAdmin:   wf.Admin,
		})
		if domainerrors.Is(err, domainerrors.ErrAlreadyExists) {
			existing, getErr := a.store.GetWriterByUsername(ctx, wf.Username)
			if getErr != nil {
				return nil, fmt.Errorf("look up writer %q: %w", wf.Username, getErr)
			}
			writerIDs[wf.Username] = existing.ID
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create writer %q: %w", wf.Username, err)
		}
		writerIDs[w.Username] = w.ID
		res.Writers++
	}

	for _, sf := range f.Songs {
		if sf.Key == "" {
			return nil, fmt.Errorf("song %q has no key", sf.Title)
		}
		song, err := a.songs.Create(ctx, service.CreateSongRequest{
			Artist:  sf.Artist,
			Title:   sf.Title,
			Tagline: sf.Tagline,
			WebLink: sf.WebLink,
		})
		if err != nil {
			return nil, fmt.Errorf("create song %q: %w", sf.Key, err)
		}
		res.SongIDs[sf.Key] = song.ID
		res.Songs++
	}

	for i, rf := range f.Reviews {
		writerID, err := lookupWriter(ctx, a, writerIDs, rf.Writer)
		if err != nil {
			return nil, fmt.Errorf("review %d: %w", i, err)
		}
		songID, ok := res.SongIDs[rf.Song]
		if !ok {
			return nil, fmt.Errorf("review %d: unknown song key %q", i, rf.Song)
		}
		if _, err := a.reviews.Write(ctx, writerID, songID, service.WriteReviewRequest{
			Blurb: rf.Blurb,
			Score: rf.Score,
			Draft: rf.Draft,
		}); err != nil {
			return nil, fmt.Errorf("review %d: %w", i, err)
		}
		res.Reviews++
	}

	for _, wk := range f.Weeks {
		begin, err := time.Parse(time.DateOnly, wk.WeekBeginning)
		if err != nil {
			return nil, fmt.Errorf("week %q: %w", wk.WeekBeginning, err)
		}
		week, err := a.schedule.CreateWeek(ctx, service.CreateWeekRequest{
			WeekBeginning: begin,
			WeekInfo:      wk.Info,
			Current:       wk.Current,
		})
		if err != nil {
			return nil, fmt.Errorf("create week %q: %w", wk.WeekBeginning, err)
		}
		for day, keys := range wk.Days {
			for _, key := range keys {
				songID, ok := res.SongIDs[key]
				if !ok {
					return nil, fmt.Errorf("week %q: unknown song key %q", wk.WeekBeginning, key)
				}
				if _, err := a.schedule.AddSong(ctx, week.ID, day, songID); err != nil {
					return nil, fmt.Errorf("week %q %s: %w", wk.WeekBeginning, day, err)
				}
			}
		}
		res.Weeks++
	}

	return res, nil
}

func lookupWriter(ctx context.Context, a *app, known map[string]string, username string) (string, error) {
	if id, ok := known[username]; ok {
		return id, nil
	}
	w, err := a.store.GetWriterByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("unknown writer %q: %w", username, err)
	}
	known[username] = w.ID
	return w.ID, nil
}
