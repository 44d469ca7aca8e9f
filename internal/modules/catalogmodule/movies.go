package catalogmodule

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/moviedb/moviedb/internal/database"
	catalogerrors "github.com/moviedb/moviedb/internal/errors"
	"github.com/moviedb/moviedb/internal/types"
)

// SelectMovie returns the movie with the title and year of key.
func (s *Service) SelectMovie(ctx context.Context, key types.MovieBag) (types.MovieBag, error) {
	var bag types.MovieBag
	err := s.session(ctx, opSelectMovie, func(tx *gorm.DB) error {
		movie, err := findMovie(tx, opSelectMovie, key)
		if err != nil {
			return err
		}
		bag = toMovieBag(movie)
		return nil
	})
	return bag, err
}

// SelectAllMovies returns every movie in insertion order.
func (s *Service) SelectAllMovies(ctx context.Context) ([]types.MovieBag, error) {
	var movies []*database.Movie
	err := s.session(ctx, opSelectAllMovies, func(tx *gorm.DB) error {
		return withLinks(tx).Order("id").Find(&movies).Error
	})
	if err != nil {
		return nil, err
	}
	return toMovieBags(movies), nil
}

// CountMovies returns the number of catalogued movies.
func (s *Service) CountMovies(ctx context.Context) (int64, error) {
	var n int64
	err := s.session(ctx, opCountMovies, func(tx *gorm.DB) error {
		return tx.Model(&database.Movie{}).Count(&n).Error
	})
	return n, err
}

// AddMovie stores a new movie. People named in stars or directors are created
// when missing; every tag must already exist.
func (s *Service) AddMovie(ctx context.Context, bag types.MovieBag) error {
	return s.session(ctx, opAddMovie, func(tx *gorm.DB) error {
		movie, err := newMovie(opAddMovie, bag)
		if err != nil {
			return err
		}

		tags, err := resolveTags(tx, opAddMovie, bag.MovieTags)
		if err != nil {
			return err
		}
		stars, err := resolvePeople(tx, bag.Stars)
		if err != nil {
			return err
		}
		directors, err := resolvePeople(tx, bag.Directors)
		if err != nil {
			return err
		}

		if err := tx.Omit("Stars", "Directors", "Tags").Create(movie).Error; err != nil {
			return err
		}

		if err := appendLinks(tx, movie, "Stars", stars); err != nil {
			return err
		}
		if err := appendLinks(tx, movie, "Directors", directors); err != nil {
			return err
		}
		return appendLinks(tx, movie, "Tags", tags)
	})
}

// EditMovie applies the fields present in replacement to the movie identified
// by old. A present link set replaces the stored one; people dropped from a
// movie are removed if nothing else references them.
func (s *Service) EditMovie(ctx context.Context, old types.MovieBag, replacement types.MovieBag) error {
	return s.session(ctx, opEditMovie, func(tx *gorm.DB) error {
		movie, err := findMovie(tx, opEditMovie, old)
		if err != nil {
			return err
		}

		updates, err := columnUpdates(opEditMovie, replacement)
		if err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(movie).Omit("Stars", "Directors", "Tags").Updates(updates).Error; err != nil {
				return err
			}
		}

		dropped := types.NewNameSet()

		if replacement.Stars != nil {
			removed, err := replacePeople(tx, movie, "Stars", movie.Stars, replacement.Stars)
			if err != nil {
				return err
			}
			dropped = dropped.Union(removed)
		}
		if replacement.Directors != nil {
			removed, err := replacePeople(tx, movie, "Directors", movie.Directors, replacement.Directors)
			if err != nil {
				return err
			}
			dropped = dropped.Union(removed)
		}
		if replacement.MovieTags != nil {
			if err := replaceTags(tx, movie, replacement.MovieTags); err != nil {
				return err
			}
		}

		return deleteOrphans(tx, dropped)
	})
}

// DeleteMovie removes a movie and its links. The people and tags it
// referenced stay.
func (s *Service) DeleteMovie(ctx context.Context, key types.MovieBag) error {
	return s.session(ctx, opDeleteMovie, func(tx *gorm.DB) error {
		movie, err := findMovie(tx, opDeleteMovie, key)
		if err != nil {
			return err
		}
		return tx.Select("Stars", "Directors", "Tags").Delete(movie).Error
	})
}

func findMovie(tx *gorm.DB, op string, key types.MovieBag) (*database.Movie, error) {
	title, year, err := movieKey(op, key)
	if err != nil {
		return nil, err
	}

	var movie database.Movie
	err = withLinks(tx).Where("title = ? AND year = ?", title, year).First(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalogerrors.NotFound(op, fmt.Errorf("movie %q (%d)", title, year)).
			WithDetail("title", title).WithDetail("year", year)
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// columnUpdates maps the present direct fields of bag to column values.
// Empty strings clear a column.
func columnUpdates(op string, bag types.MovieBag) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if bag.Title != nil {
		updates["title"] = *bag.Title
	}
	if bag.Year != nil {
		year, err := bag.Year.Int()
		if err != nil {
			return nil, catalogerrors.TypeError(op, fmt.Errorf("year: %w", err))
		}
		updates["year"] = year
	}
	if bag.Duration != nil {
		d, err := bag.Duration.Int()
		if err != nil {
			return nil, catalogerrors.TypeError(op, fmt.Errorf("duration: %w", err))
		}
		updates["duration"] = d
	}
	if bag.Synopsis != nil {
		updates["synopsis"] = copyString(bag.Synopsis)
	}
	if bag.Notes != nil {
		updates["notes"] = copyString(bag.Notes)
	}

	return updates, nil
}

func appendLinks[T any](tx *gorm.DB, movie *database.Movie, association string, rows []*T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Model(movie).Association(association).Append(rows)
}

func deleteLinks[T any](tx *gorm.DB, movie *database.Movie, association string, rows []*T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Model(movie).Association(association).Delete(rows)
}

// replacePeople makes the association hold exactly names and returns the
// names that were dropped.
func replacePeople(tx *gorm.DB, movie *database.Movie, association string, current []*database.Person, names types.NameSet) (types.NameSet, error) {
	have := personNames(current)

	var removed []*database.Person
	for _, p := range current {
		if !names.Has(p.Name) {
			removed = append(removed, p)
		}
	}
	added, err := resolvePeople(tx, names.Difference(have))
	if err != nil {
		return nil, err
	}

	if err := deleteLinks(tx, movie, association, removed); err != nil {
		return nil, err
	}
	if err := appendLinks(tx, movie, association, added); err != nil {
		return nil, err
	}
	return have.Difference(names), nil
}

func replaceTags(tx *gorm.DB, movie *database.Movie, texts types.NameSet) error {
	have := tagTexts(movie.Tags)

	var removed []*database.Tag
	for _, t := range movie.Tags {
		if !texts.Has(t.Text) {
			removed = append(removed, t)
		}
	}
	added, err := resolveTags(tx, opEditMovie, texts.Difference(have))
	if err != nil {
		return err
	}

	if err := deleteLinks(tx, movie, "Tags", removed); err != nil {
		return err
	}
	return appendLinks(tx, movie, "Tags", added)
}
