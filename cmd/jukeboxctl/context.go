package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/singlesjukebox/jukebox-server/internal/config"
	"github.com/singlesjukebox/jukebox-server/internal/logger"
	"github.com/singlesjukebox/jukebox-server/internal/mail"
	"github.com/singlesjukebox/jukebox-server/internal/media"
	"github.com/singlesjukebox/jukebox-server/internal/service"
	"github.com/singlesjukebox/jukebox-server/internal/store/sqlite"
)

// app is the slice of the server the CLI runs against: the database and
// the editorial services, without HTTP, sessions or search.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	store    *sqlite.Store
	writers  *service.WriterService
	songs    *service.SongService
	reviews  *service.ReviewService
	reorder  *service.ReorderService
	schedule *service.ScheduleService
}

type commandContext struct {
	dataPath *string
	logLevel *string
}

func newCommandContext(dataPath, logLevel *string) *commandContext {
	return &commandContext{dataPath: dataPath, logLevel: logLevel}
}

func (c *commandContext) args() []string {
	var args []string
	if c.dataPath != nil && strings.TrimSpace(*c.dataPath) != "" {
		args = append(args, "--data-path", strings.TrimSpace(*c.dataPath))
	}
	if c.logLevel != nil && *c.logLevel != "" {
		args = append(args, "--log-level", *c.logLevel)
	}
	return args
}

// withApp opens the data directory, runs fn and closes everything again.
// Logs go to logOut so command output stays parseable.
func (c *commandContext) withApp(logOut io.Writer, fn func(*app) error) error {
	cfg, err := config.Load(c.args())
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      cfg.Logger.Format,
		Environment: cfg.App.Environment,
		Writer:      logOut,
	})

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	db, err := sqlite.Open(cfg.Storage.DatabasePath(), log.Logger)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // read-mostly tool

	storage, err := media.NewStorage(cfg.Storage.MediaPath())
	if err != nil {
		return fmt.Errorf("open media storage: %w", err)
	}

	return fn(&app{
		cfg:      cfg,
		log:      log,
		store:    db,
		writers:  service.NewWriterService(db, log.Logger),
		songs:    service.NewSongService(db, storage, log.Logger),
		reviews:  service.NewReviewService(db, mail.NewLogSender(log.Logger), cfg.Mail.Admins, nil, log.Logger),
		reorder:  service.NewReorderService(db, cfg.Editorial.ReorderIncludePublished, nil, log.Logger),
		schedule: service.NewScheduleService(db, log.Logger),
	})
}
