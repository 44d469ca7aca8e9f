// Package catalogmodule is the operations surface of the movie catalog: exact
// fetch, intersective search, and the add/edit/delete paths for movies, tags
// and people. Every write to the catalog database goes through it.
package catalogmodule

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/moviedb/moviedb/internal/database"
	"github.com/moviedb/moviedb/internal/modules/databasemodule"
	"github.com/moviedb/moviedb/internal/services"
)

// Operation names carried by returned errors.
const (
	opSelectMovie        = "select_movie"
	opSelectAllMovies    = "select_all_movies"
	opMatchMovies        = "match_movies"
	opAddMovie           = "add_movie"
	opEditMovie          = "edit_movie"
	opDeleteMovie        = "delete_movie"
	opCountMovies        = "count_movies"
	opSelectAllTags      = "select_all_tags"
	opSelectMoviesByTag  = "select_movies_by_tag"
	opAddTag             = "add_tag"
	opAddTags            = "add_tags"
	opEditTag            = "edit_tag"
	opDeleteTag          = "delete_tag"
	opSelectAllPeople    = "select_all_people"
	opSelectPersonMovies = "select_person_movies"
	opAddPeople          = "add_people"
	opDeletePerson       = "delete_person"
	opDeleteOrphanPeople = "delete_orphan_people"
)

// Service implements services.CatalogService on a gorm database.
type Service struct {
	tm *databasemodule.TransactionManager

	// tx is set on services handed out by InTransaction; every call then
	// joins that transaction instead of opening its own.
	tx *gorm.DB
}

var _ services.CatalogService = (*Service)(nil)

// NewService creates a catalog service on store.
func NewService(store *database.Store, log hclog.Logger) *Service {
	return &Service{
		tm: databasemodule.NewTransactionManager(store.DB(), log),
	}
}

// InTransaction runs fn with a service whose calls all share one
// transaction. The transaction commits when fn returns nil. Called on a
// service that is already bound, fn joins the enclosing transaction.
func (s *Service) InTransaction(ctx context.Context, fn func(services.CatalogService) error) error {
	if s.tx != nil {
		return fn(s)
	}
	return s.tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		return fn(&Service{tm: s.tm, tx: tx})
	})
}

// Stats reports connection pool usage of the underlying database.
func (s *Service) Stats() map[string]interface{} {
	return s.tm.Stats()
}

// session runs fn as one unit of work and classifies whatever it returns.
func (s *Service) session(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	var err error
	if s.tx != nil {
		err = fn(s.tx.WithContext(ctx))
	} else {
		err = s.tm.WithTransaction(ctx, fn)
	}
	return database.ClassifyError(op, err)
}

// withLinks preloads the three link sets of a movie query.
func withLinks(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Stars").Preload("Directors").Preload("Tags")
}
