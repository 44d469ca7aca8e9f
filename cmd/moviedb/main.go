package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/moviedb/moviedb/internal/config"
	"github.com/moviedb/moviedb/internal/environment"
	"github.com/moviedb/moviedb/internal/logger"
	"github.com/moviedb/moviedb/internal/types"
)

var (
	app = kingpin.New("moviedb", "Local movie catalog.")

	dataParent = app.Flag("data-parent", "directory holding \"Movie Data\"").String()
	configPath = app.Flag("config", "YAML configuration file").Envar("MOVIEDB_CONFIG").String()
	logLevel   = app.Flag("log-level", "trace, debug, info, warn or error").String()

	startCmd = app.Command("start", "Open (and if needed upgrade) the catalog.")

	migrationsCmd = app.Command("migrations", "List the database versions this build can upgrade from.")

	moviesCmd = app.Command("movies", "List every movie.")

	matchCmd      = app.Command("match", "List movies matching every given criterion.")
	matchTitle    = matchCmd.Flag("title", "substring of the title").String()
	matchYear     = matchCmd.Flag("year", "year or range, e.g. 1950-1959").String()
	matchDuration = matchCmd.Flag("duration", "minutes or range, e.g. 90-120").String()
	matchStars    = matchCmd.Flag("star", "substring of a star's name (repeatable)").Strings()
	matchDirector = matchCmd.Flag("director", "substring of a director's name (repeatable)").Strings()
	matchTags     = matchCmd.Flag("tag", "substring of a tag (repeatable)").Strings()
	matchNotes    = matchCmd.Flag("notes", "substring of the notes").String()
	matchSynopsis = matchCmd.Flag("synopsis", "substring of the synopsis").String()

	tagsCmd = app.Command("tags", "List every tag.")

	addTagCmd  = app.Command("add-tag", "Add a tag.")
	addTagText = addTagCmd.Arg("text", "tag text").Required().String()

	sweepCmd = app.Command("sweep", "Delete people who are in no movie.")
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if err := config.Load(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "moviedb: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}
	log := logger.New(logger.Options{Level: level, Format: cfg.Logging.Format})
	logger.SetDefault(log)

	parent := cfg.Data.ParentDir
	if *dataParent != "" {
		parent = *dataParent
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, command, parent, cfg, log); err != nil {
		log.Error("command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command, parent string, cfg *config.Config, log hclog.Logger) error {
	env, err := environment.Start(ctx, parent,
		environment.WithLogger(log),
		environment.WithQueryLogging(cfg.Database.LogQueries),
		environment.WithBusyTimeout(cfg.Database.BusyTimeout))
	if err != nil {
		return err
	}
	defer env.Close()

	catalog := env.Catalog()

	switch command {
	case startCmd.FullCommand():
		if err := env.HealthCheck(); err != nil {
			return err
		}
		n, err := catalog.CountMovies(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s (%d movies)\n", env.State(), env.Paths().DatabaseFile, n)
		stats := env.Stats()
		log.Debug("connection pool", "open", stats["open_connections"], "in_use", stats["in_use"], "idle", stats["idle"])

	case migrationsCmd.FullCommand():
		for _, m := range env.Migrations() {
			fmt.Printf("%s\t%s\n", m.FromVersion, m.Description)
		}

	case moviesCmd.FullCommand():
		movies, err := catalog.SelectAllMovies(ctx)
		if err != nil {
			return err
		}
		printMovies(movies)

	case matchCmd.FullCommand():
		criteria, err := matchCriteria()
		if err != nil {
			return err
		}
		movies, err := catalog.MatchMovies(ctx, criteria)
		if err != nil {
			return err
		}
		printMovies(movies)

	case tagsCmd.FullCommand():
		tags, err := catalog.SelectAllTags(ctx)
		if err != nil {
			return err
		}
		for _, t := range tags.Sorted() {
			fmt.Println(t)
		}

	case addTagCmd.FullCommand():
		return catalog.AddTag(ctx, *addTagText)

	case sweepCmd.FullCommand():
		people, err := catalog.SelectAllPeople(ctx)
		if err != nil {
			return err
		}
		if err := catalog.DeleteOrphanPeople(ctx, people); err != nil {
			return err
		}
		remaining, err := catalog.SelectAllPeople(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d people\n", len(people)-len(remaining))
	}

	return nil
}

// matchCriteria turns the match flags into a criteria bag. Flags left empty
// are absent.
func matchCriteria() (types.MovieBag, error) {
	var c types.MovieBag

	if *matchTitle != "" {
		c.Title = types.Str(*matchTitle)
	}
	if *matchNotes != "" {
		c.Notes = types.Str(*matchNotes)
	}
	if *matchSynopsis != "" {
		c.Synopsis = types.Str(*matchSynopsis)
	}
	if *matchYear != "" {
		r, err := types.ParseRangeInt(*matchYear)
		if err != nil {
			return c, err
		}
		c.Year = &r
	}
	if *matchDuration != "" {
		r, err := types.ParseRangeInt(*matchDuration)
		if err != nil {
			return c, err
		}
		c.Duration = &r
	}
	if len(*matchStars) > 0 {
		c.Stars = types.NewNameSet(*matchStars...)
	}
	if len(*matchDirector) > 0 {
		c.Directors = types.NewNameSet(*matchDirector...)
	}
	if len(*matchTags) > 0 {
		c.MovieTags = types.NewNameSet(*matchTags...)
	}

	return c, nil
}

func printMovies(movies []types.MovieBag) {
	for _, m := range movies {
		fmt.Println(m)
	}
}
