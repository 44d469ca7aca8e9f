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

// SelectAllPeople returns the name of every person.
func (s *Service) SelectAllPeople(ctx context.Context) (types.NameSet, error) {
	var names []string
	err := s.session(ctx, opSelectAllPeople, func(tx *gorm.DB) error {
		return tx.Model(&database.Person{}).Order("name").Pluck("name", &names).Error
	})
	if err != nil {
		return nil, err
	}
	return types.NewNameSet(names...), nil
}

// SelectPersonMovies returns the movies a person stars in or directed.
func (s *Service) SelectPersonMovies(ctx context.Context, name string) ([]types.MovieBag, error) {
	var movies []*database.Movie
	err := s.session(ctx, opSelectPersonMovies, func(tx *gorm.DB) error {
		person, err := findPerson(tx, opSelectPersonMovies, name)
		if err != nil {
			return err
		}

		starred := tx.Table(database.TableMovieStars).Select("movie_id").Where("person_id = ?", person.ID)
		directed := tx.Table(database.TableMovieDirectors).Select("movie_id").Where("person_id = ?", person.ID)
		return withLinks(tx).
			Where("id IN (?) OR id IN (?)", starred, directed).
			Order("id").
			Find(&movies).Error
	})
	if err != nil {
		return nil, err
	}
	return toMovieBags(movies), nil
}

// AddPeople creates people who are not yet linked to any movie.
func (s *Service) AddPeople(ctx context.Context, names ...string) error {
	return s.session(ctx, opAddPeople, func(tx *gorm.DB) error {
		for _, name := range names {
			if err := tx.Create(&database.Person{Name: name}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeletePerson removes a person and their star and director links.
func (s *Service) DeletePerson(ctx context.Context, name string) error {
	return s.session(ctx, opDeletePerson, func(tx *gorm.DB) error {
		person, err := findPerson(tx, opDeletePerson, name)
		if err != nil {
			return err
		}
		return tx.Select("StarOf", "DirectorOf").Delete(person).Error
	})
}

// DeleteOrphanPeople deletes the candidates who neither star in nor direct
// any movie. Unknown names and non-orphans are left alone.
func (s *Service) DeleteOrphanPeople(ctx context.Context, candidates types.NameSet) error {
	return s.session(ctx, opDeleteOrphanPeople, func(tx *gorm.DB) error {
		return deleteOrphans(tx, candidates)
	})
}

func deleteOrphans(tx *gorm.DB, candidates types.NameSet) error {
	if len(candidates) == 0 {
		return nil
	}

	starring := tx.Table(database.TableMovieStars).Select("person_id")
	directing := tx.Table(database.TableMovieDirectors).Select("person_id")
	return tx.
		Where("name IN ?", candidates.Sorted()).
		Where("id NOT IN (?)", starring).
		Where("id NOT IN (?)", directing).
		Delete(&database.Person{}).Error
}

func findPerson(tx *gorm.DB, op, name string) (*database.Person, error) {
	var person database.Person
	err := tx.Where("name = ?", name).First(&person).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalogerrors.NotFound(op, fmt.Errorf("person %q", name)).WithDetail("name", name)
	}
	if err != nil {
		return nil, err
	}
	return &person, nil
}

// resolvePeople loads the people named by names, creating the missing ones.
func resolvePeople(tx *gorm.DB, names types.NameSet) ([]*database.Person, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var people []*database.Person
	if err := tx.Where("name IN ?", names.Sorted()).Find(&people).Error; err != nil {
		return nil, err
	}

	for _, name := range names.Difference(personNames(people)).Sorted() {
		person := &database.Person{Name: name}
		if err := tx.Create(person).Error; err != nil {
			return nil, err
		}
		people = append(people, person)
	}
	return people, nil
}
