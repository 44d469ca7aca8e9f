package services

import (
	"context"

	"github.com/moviedb/moviedb/internal/types"
)

// CatalogService is the read/write surface over the movie catalog. It is the
// only code outside the database packages that writes to the database.
//
// Every method runs in its own unit of work unless the service was handed to
// the callback of InTransaction, in which case all calls share that
// transaction.
type CatalogService interface {
	// SelectMovie returns the movie identified by the title and year of key.
	SelectMovie(ctx context.Context, key types.MovieBag) (types.MovieBag, error)
	SelectAllMovies(ctx context.Context) ([]types.MovieBag, error)

	// MatchMovies returns the movies satisfying every field present in
	// criteria. Empty criteria match nothing.
	MatchMovies(ctx context.Context, criteria types.MovieBag) ([]types.MovieBag, error)

	AddMovie(ctx context.Context, movie types.MovieBag) error
	EditMovie(ctx context.Context, old types.MovieBag, replacement types.MovieBag) error
	DeleteMovie(ctx context.Context, key types.MovieBag) error
	CountMovies(ctx context.Context) (int64, error)

	SelectAllTags(ctx context.Context) (types.NameSet, error)
	SelectMoviesByTag(ctx context.Context, text string) ([]types.MovieBag, error)
	AddTag(ctx context.Context, text string) error
	AddTags(ctx context.Context, texts ...string) error
	EditTag(ctx context.Context, oldText, newText string) error
	DeleteTag(ctx context.Context, text string) error

	SelectAllPeople(ctx context.Context) (types.NameSet, error)
	SelectPersonMovies(ctx context.Context, name string) ([]types.MovieBag, error)
	AddPeople(ctx context.Context, names ...string) error
	DeletePerson(ctx context.Context, name string) error
	DeleteOrphanPeople(ctx context.Context, candidates types.NameSet) error

	// InTransaction runs fn with a service bound to a single transaction.
	InTransaction(ctx context.Context, fn func(CatalogService) error) error
}

// CatalogLoader is the subset of CatalogService a migration writes through.
type CatalogLoader interface {
	AddTags(ctx context.Context, texts ...string) error
	AddMovie(ctx context.Context, movie types.MovieBag) error
}
