package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	catalogerrors "github.com/moviedb/moviedb/internal/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "movie_database_"+Version+".sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenCreatesSchema(t *testing.T) {
	store := openTestStore(t)
	migrator := store.DB().Migrator()

	for _, table := range []string{"movies", "people", "tags", TableMovieStars, TableMovieDirectors, TableMovieTags} {
		assert.True(t, migrator.HasTable(table), "table %s", table)
	}
	assert.True(t, migrator.HasIndex(&Movie{}, "idx_movies_title_year"))
	assert.True(t, migrator.HasColumn(&Movie{}, "synopsis"))
	assert.True(t, migrator.HasColumn(&Person{}, "notes"))
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.sqlite3")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.DB().Create(&Tag{Text: "classic"}).Error)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	var count int64
	require.NoError(t, second.DB().Model(&Tag{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, path, second.Path())
}

func TestMemoryStore(t *testing.T) {
	store, err := Open(MemoryPath)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.DB().Create(&Person{Name: "Donald Director"}).Error)

	var count int64
	require.NoError(t, store.DB().Model(&Person{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestYearBounds(t *testing.T) {
	store := openTestStore(t)

	tests := []struct {
		year    int
		allowed bool
	}{
		{1878, false},
		{1879, true},
		{10000, true},
		{10001, false},
	}

	for _, tt := range tests {
		err := store.DB().Create(&Movie{Title: "Boundary", Year: tt.year}).Error
		if tt.allowed {
			assert.NoError(t, err, "year %d", tt.year)
			continue
		}
		require.Error(t, err, "year %d", tt.year)
		assert.True(t, catalogerrors.IsConstraintFailure(ClassifyError("add_movie", err)), "year %d", tt.year)
	}

	var count int64
	require.NoError(t, store.DB().Model(&Movie{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestUniquenessIsIntegrityFailure(t *testing.T) {
	store := openTestStore(t)
	db := store.DB()

	require.NoError(t, db.Create(&Movie{Title: "Transformer", Year: 4242}).Error)
	err := db.Create(&Movie{Title: "Transformer", Year: 4242}).Error
	require.Error(t, err)
	assert.True(t, catalogerrors.IsIntegrityFailure(ClassifyError("add_movie", err)))

	// Same title, other year is a different movie.
	require.NoError(t, db.Create(&Movie{Title: "Transformer", Year: 4243}).Error)

	require.NoError(t, db.Create(&Tag{Text: "classic"}).Error)
	err = db.Create(&Tag{Text: "classic"}).Error
	assert.True(t, catalogerrors.IsIntegrityFailure(ClassifyError("add_tag", err)))

	require.NoError(t, db.Create(&Person{Name: "Edgar Ethelred"}).Error)
	err = db.Create(&Person{Name: "Edgar Ethelred"}).Error
	assert.True(t, catalogerrors.IsIntegrityFailure(ClassifyError("add_people", err)))
}

func TestDeletingMovieKeepsPeopleAndTags(t *testing.T) {
	store := openTestStore(t)
	db := store.DB()

	movie := &Movie{
		Title: "Transformer",
		Year:  4242,
		Stars: []*Person{{Name: "Edgar Ethelred"}},
		Tags:  []*Tag{{Text: "classic"}},
	}
	require.NoError(t, db.Create(movie).Error)

	var links int64
	require.NoError(t, db.Table(TableMovieStars).Count(&links).Error)
	require.Equal(t, int64(1), links)

	require.NoError(t, db.Select("Stars", "Directors", "Tags").Delete(movie).Error)

	require.NoError(t, db.Table(TableMovieStars).Count(&links).Error)
	assert.Zero(t, links)
	require.NoError(t, db.Table(TableMovieTags).Count(&links).Error)
	assert.Zero(t, links)

	var people, tags int64
	require.NoError(t, db.Model(&Person{}).Count(&people).Error)
	require.NoError(t, db.Model(&Tag{}).Count(&tags).Error)
	assert.Equal(t, int64(1), people)
	assert.Equal(t, int64(1), tags)
}

func TestOpenReadOnlyRejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Movie Data", "old.sqlite3")
	require.NoError(t, mkdirFor(path))

	rw, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, rw.DB().Create(&Tag{Text: "noir"}).Error)
	require.NoError(t, rw.Close())

	ro, err := OpenReadOnly(path)
	require.NoError(t, err)
	defer ro.Close()

	var tags []Tag
	require.NoError(t, ro.DB().Find(&tags).Error)
	require.Len(t, tags, 1)
	assert.Equal(t, "noir", tags[0].Text)

	assert.Error(t, ro.DB().Create(&Tag{Text: "heist"}).Error)
}

func TestOpenReadOnlyMissingFile(t *testing.T) {
	_, err := OpenReadOnly(filepath.Join(t.TempDir(), "absent.sqlite3"))
	assert.Error(t, err)
}

func TestClassifyError(t *testing.T) {
	classified := catalogerrors.NotFound("select_movie", errors.New("movie"))

	tests := []struct {
		name string
		err  error
		kind catalogerrors.Kind
	}{
		{"record not found", gorm.ErrRecordNotFound, catalogerrors.KindNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, catalogerrors.KindIntegrityFailure},
		{"unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, catalogerrors.KindIntegrityFailure},
		{"primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, catalogerrors.KindIntegrityFailure},
		{"check", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintCheck}, catalogerrors.KindConstraintFailure},
		{"not null", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}, catalogerrors.KindConstraintFailure},
		{"busy", sqlite3.Error{Code: sqlite3.ErrBusy}, catalogerrors.KindInternal},
		{"plain", errors.New("disk I/O error"), catalogerrors.KindInternal},
		{"already classified", classified, catalogerrors.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyError("op", tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.kind, catalogerrors.KindOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, ClassifyError("op", nil))
}
