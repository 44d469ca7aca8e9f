package databasemodule

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/moviedb/moviedb/internal/database"
	catalogerrors "github.com/moviedb/moviedb/internal/errors"
	"github.com/moviedb/moviedb/internal/services"
	"github.com/moviedb/moviedb/internal/types"
)

// LegacyVersion is the schema generation before database.Version.
const LegacyVersion = "DBv0"

const opMigrate = "migrate"

// legacySchema is what reflection found in a DBv0 database. Nothing about the
// old tables is declared up front; only the table names "movies" and "tags"
// are assumed.
type legacySchema struct {
	movieColumns map[string]bool

	linkTable    string
	linkMovieCol string
	linkTagCol   string
	durationCol  string
	hasSynopsis  bool
}

// legacyContents is the old database turned into catalog values, plus the
// raw row counts the self-checks compare against.
type legacyContents struct {
	tags   types.NameSet
	movies []types.MovieBag

	tagRows   int64
	linkRows  int64
	movieRows int64
}

func (mm *MigrationManager) migrateLegacy(ctx context.Context, oldPath string, loader services.CatalogLoader) error {
	old, err := database.OpenReadOnly(oldPath)
	if err != nil {
		return catalogerrors.InternalError(opMigrate, err)
	}
	defer old.Close()

	contents, err := readLegacy(old.DB().WithContext(ctx))
	if err != nil {
		return err
	}
	mm.log.Info("read legacy database", "path", oldPath,
		"tags", contents.tagRows, "links", contents.linkRows, "movies", contents.movieRows)

	if err := contents.check(); err != nil {
		return err
	}

	if err := loader.AddTags(ctx, contents.tags.Sorted()...); err != nil {
		return err
	}
	for _, movie := range contents.movies {
		if err := loader.AddMovie(ctx, movie); err != nil {
			return fmt.Errorf("movie %s: %w", movie, err)
		}
	}
	return nil
}

// check compares what was collected with what the old tables held.
func (c *legacyContents) check() error {
	if int64(len(c.tags)) != c.tagRows {
		return catalogerrors.MigrationCheckFailure(opMigrate, "tag count", int(c.tagRows), len(c.tags))
	}

	links := 0
	for _, m := range c.movies {
		links += len(m.MovieTags)
	}
	if int64(links) != c.linkRows {
		return catalogerrors.MigrationCheckFailure(opMigrate, "movie tag links", int(c.linkRows), links)
	}

	if int64(len(c.movies)) != c.movieRows {
		return catalogerrors.MigrationCheckFailure(opMigrate, "movie count", int(c.movieRows), len(c.movies))
	}
	return nil
}

func readLegacy(db *gorm.DB) (*legacyContents, error) {
	schema, err := reflectLegacy(db)
	if err != nil {
		return nil, err
	}

	c := &legacyContents{}

	tagsByID, err := readLegacyTags(db, c)
	if err != nil {
		return nil, err
	}
	tagsByMovie, err := readLegacyLinks(db, schema, tagsByID, c)
	if err != nil {
		return nil, err
	}
	if err := readLegacyMovies(db, schema, tagsByMovie, c); err != nil {
		return nil, err
	}
	return c, nil
}

// reflectLegacy introspects the old database. The link table is whichever
// other table carries a movie reference and a tag reference.
func reflectLegacy(db *gorm.DB) (*legacySchema, error) {
	migrator := db.Migrator()

	tables, err := migrator.GetTables()
	if err != nil {
		return nil, catalogerrors.InternalError(opMigrate, fmt.Errorf("list legacy tables: %w", err))
	}

	have := make(map[string]bool, len(tables))
	for _, t := range tables {
		have[t] = true
	}
	for _, required := range []string{"movies", "tags"} {
		if !have[required] {
			return nil, catalogerrors.InternalError(opMigrate, fmt.Errorf("legacy table %q is missing", required))
		}
	}

	s := &legacySchema{}

	s.movieColumns, err = columnNames(migrator, "movies")
	if err != nil {
		return nil, err
	}
	for _, required := range []string{"id", "title", "year"} {
		if !s.movieColumns[required] {
			return nil, catalogerrors.InternalError(opMigrate, fmt.Errorf("legacy movies table has no %q column", required))
		}
	}
	s.hasSynopsis = s.movieColumns["synopsis"]
	for _, col := range []string{"duration", "minutes"} {
		if s.movieColumns[col] {
			s.durationCol = col
			break
		}
	}

	for _, t := range tables {
		if t == "movies" || t == "tags" || strings.HasPrefix(t, "sqlite_") {
			continue
		}
		cols, err := columnNames(migrator, t)
		if err != nil {
			return nil, err
		}
		movieCol, tagCol := referenceColumn(cols, "movie"), referenceColumn(cols, "tag")
		if movieCol != "" && tagCol != "" {
			s.linkTable, s.linkMovieCol, s.linkTagCol = t, movieCol, tagCol
			break
		}
	}
	if s.linkTable == "" {
		return nil, catalogerrors.InternalError(opMigrate, fmt.Errorf("no legacy movie/tag link table"))
	}

	return s, nil
}

func columnNames(migrator gorm.Migrator, table string) (map[string]bool, error) {
	columnTypes, err := migrator.ColumnTypes(table)
	if err != nil {
		return nil, catalogerrors.InternalError(opMigrate, fmt.Errorf("columns of %s: %w", table, err))
	}
	names := make(map[string]bool, len(columnTypes))
	for _, ct := range columnTypes {
		names[strings.ToLower(ct.Name())] = true
	}
	return names, nil
}

// referenceColumn finds a foreign key column such as movie_id, movies_id or
// tag_id.
func referenceColumn(cols map[string]bool, entity string) string {
	for _, candidate := range []string{entity + "_id", entity + "s_id", entity + "id"} {
		if cols[candidate] {
			return candidate
		}
	}
	return ""
}

func readLegacyTags(db *gorm.DB, c *legacyContents) (map[int64]string, error) {
	var rows []map[string]interface{}
	if err := db.Table("tags").Find(&rows).Error; err != nil {
		return nil, catalogerrors.InternalError(opMigrate, fmt.Errorf("read legacy tags: %w", err))
	}
	c.tagRows = int64(len(rows))

	byID := make(map[int64]string, len(rows))
	c.tags = types.NewNameSet()
	for _, row := range rows {
		id, err := legacyInt(row["id"])
		if err != nil {
			return nil, catalogerrors.InternalError(opMigrate, fmt.Errorf("legacy tag id: %w", err))
		}
		text := legacyString(row["text"])
		byID[id] = text
		c.tags.Add(text)
	}
	return byID, nil
}

func readLegacyLinks(db *gorm.DB, s *legacySchema, tagsByID map[int64]string, c *legacyContents) (map[int64]types.NameSet, error) {
	var rows []map[string]interface{}
	if err := db.Table(s.linkTable).Find(&rows).Error; err != nil {
		return nil, catalogerrors.InternalError(opMigrate, fmt.Errorf("read legacy links: %w", err))
	}
	c.linkRows = int64(len(rows))

	byMovie := make(map[int64]types.NameSet)
	for _, row := range rows {
		movieID, err := legacyInt(row[s.linkMovieCol])
		if err != nil {
			return nil, catalogerrors.InternalError(opMigrate, fmt.Errorf("legacy link movie id: %w", err))
		}
		tagID, err := legacyInt(row[s.linkTagCol])
		if err != nil {
			return nil, catalogerrors.InternalError(opMigrate, fmt.Errorf("legacy link tag id: %w", err))
		}

		text, ok := tagsByID[tagID]
		if !ok {
			continue
		}
		if byMovie[movieID] == nil {
			byMovie[movieID] = types.NewNameSet()
		}
		byMovie[movieID].Add(text)
	}
	return byMovie, nil
}

func readLegacyMovies(db *gorm.DB, s *legacySchema, tagsByMovie map[int64]types.NameSet, c *legacyContents) error {
	var rows []map[string]interface{}
	if err := db.Table("movies").Order("id").Find(&rows).Error; err != nil {
		return catalogerrors.InternalError(opMigrate, fmt.Errorf("read legacy movies: %w", err))
	}
	c.movieRows = int64(len(rows))

	for _, row := range rows {
		id, err := legacyInt(row["id"])
		if err != nil {
			return catalogerrors.InternalError(opMigrate, fmt.Errorf("legacy movie id: %w", err))
		}
		year, err := legacyInt(row["year"])
		if err != nil {
			return catalogerrors.InternalError(opMigrate, fmt.Errorf("legacy movie %d year: %w", id, err))
		}

		bag := types.MovieBag{
			Title: types.Str(legacyString(row["title"])),
			Year:  types.Int(int(year)),
		}

		// The old director column is a single free-text name.
		if director := legacyString(row["director"]); director != "" {
			bag.Directors = types.NewNameSet(director)
		}

		notes := legacyString(row["notes"])
		if notes != "" {
			bag.Notes = types.Str(notes)
		}
		if s.hasSynopsis {
			if synopsis := legacyString(row["synopsis"]); synopsis != "" {
				bag.Synopsis = types.Str(synopsis)
			}
		} else if notes != "" {
			bag.Synopsis = types.Str(notes)
		}

		if s.durationCol != "" && row[s.durationCol] != nil {
			d, err := legacyInt(row[s.durationCol])
			if err != nil {
				return catalogerrors.InternalError(opMigrate, fmt.Errorf("legacy movie %d duration: %w", id, err))
			}
			if d != 0 {
				bag.Duration = types.Int(int(d))
			}
		}

		if tags := tagsByMovie[id]; len(tags) > 0 {
			bag.MovieTags = tags
		}

		c.movies = append(c.movies, bag)
	}
	return nil
}

func legacyInt(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(n)), 10, 64)
	case nil:
		return 0, fmt.Errorf("value is NULL")
	default:
		return 0, fmt.Errorf("unexpected value %v of type %T", v, v)
	}
}

func legacyString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(s)
	}
}
