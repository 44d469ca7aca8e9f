package catalogmodule

import (
	"context"

	"gorm.io/gorm"

	"github.com/moviedb/moviedb/internal/database"
	"github.com/moviedb/moviedb/internal/types"
)

// idSet is the set of movie ids satisfying one criterion.
type idSet map[uint]struct{}

func (s idSet) intersect(other idSet) idSet {
	out := make(idSet)
	for id := range s {
		if _, ok := other[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

func (s idSet) ids() []uint {
	out := make([]uint, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// criterion selects the ids of the movies it accepts.
type criterion func(tx *gorm.DB) *gorm.DB

// MatchMovies returns the movies that satisfy every field present in
// criteria:
//
//   - title, notes, synopsis: substring of the column, ignoring ASCII case
//   - year, duration: the column lies in the inclusive range
//   - stars, directors, movie_tags: every given substring occurs in the name
//     (or text) of at least one linked row
//
// Empty criteria match nothing. ID, Created and Updated are ignored.
// Results are ordered by id.
func (s *Service) MatchMovies(ctx context.Context, criteria types.MovieBag) ([]types.MovieBag, error) {
	filters := buildCriteria(criteria)
	if len(filters) == 0 {
		return []types.MovieBag{}, nil
	}

	var movies []*database.Movie
	err := s.session(ctx, opMatchMovies, func(tx *gorm.DB) error {
		var survivors idSet
		for i, filter := range filters {
			var ids []uint
			if err := filter(tx).Pluck("id", &ids).Error; err != nil {
				return err
			}

			found := make(idSet, len(ids))
			for _, id := range ids {
				found[id] = struct{}{}
			}
			if i == 0 {
				survivors = found
			} else {
				survivors = survivors.intersect(found)
			}
			if len(survivors) == 0 {
				return nil
			}
		}

		return withLinks(tx).Where("id IN ?", survivors.ids()).Order("id").Find(&movies).Error
	})
	if err != nil {
		return nil, err
	}
	return toMovieBags(movies), nil
}

// buildCriteria returns one filter per scalar field and one per substring of
// each set field. Empty strings are not criteria.
func buildCriteria(c types.MovieBag) []criterion {
	var filters []criterion

	if c.Title != nil && *c.Title != "" {
		filters = append(filters, substringOf("title", *c.Title))
	}
	if c.Year != nil {
		filters = append(filters, within("year", *c.Year))
	}
	if c.Duration != nil {
		filters = append(filters, within("duration", *c.Duration))
	}
	if c.Synopsis != nil && *c.Synopsis != "" {
		filters = append(filters, substringOf("synopsis", *c.Synopsis))
	}
	if c.Notes != nil && *c.Notes != "" {
		filters = append(filters, substringOf("notes", *c.Notes))
	}

	for _, name := range nonEmpty(c.Stars) {
		filters = append(filters, linkedPerson(database.TableMovieStars, name))
	}
	for _, name := range nonEmpty(c.Directors) {
		filters = append(filters, linkedPerson(database.TableMovieDirectors, name))
	}
	for _, text := range nonEmpty(c.MovieTags) {
		filters = append(filters, linkedTag(text))
	}

	return filters
}

// nonEmpty returns the members of s other than "", sorted.
func nonEmpty(s types.NameSet) []string {
	var out []string
	for _, member := range s.Sorted() {
		if member != "" {
			out = append(out, member)
		}
	}
	return out
}

// containsFold is an SQL predicate for "column contains ?" ignoring ASCII
// case. instr has no wildcards to escape, unlike LIKE.
func containsFold(column string) string {
	return "instr(lower(" + column + "), lower(?)) > 0"
}

func substringOf(column, needle string) criterion {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&database.Movie{}).Where(containsFold(column), needle)
	}
}

func within(column string, r types.RangeInt) criterion {
	lo, hi := r.Bounds()
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&database.Movie{}).Where(column+" BETWEEN ? AND ?", lo, hi)
	}
}

func linkedPerson(linkTable, needle string) criterion {
	return func(tx *gorm.DB) *gorm.DB {
		people := tx.Model(&database.Person{}).Select("id").Where(containsFold("name"), needle)
		links := tx.Table(linkTable).Select("movie_id").Where("person_id IN (?)", people)
		return tx.Model(&database.Movie{}).Where("id IN (?)", links)
	}
}

func linkedTag(needle string) criterion {
	return func(tx *gorm.DB) *gorm.DB {
		tags := tx.Model(&database.Tag{}).Select("id").Where(containsFold("text"), needle)
		links := tx.Table(database.TableMovieTags).Select("movie_id").Where("tag_id IN (?)", tags)
		return tx.Model(&database.Movie{}).Where("id IN (?)", links)
	}
}
