package catalogmodule

import (
	"fmt"

	"github.com/moviedb/moviedb/internal/database"
	catalogerrors "github.com/moviedb/moviedb/internal/errors"
	"github.com/moviedb/moviedb/internal/types"
)

// toMovieBag converts a stored movie. Identity, timestamps, title and year are
// always set; the rest only when they hold something.
func toMovieBag(m *database.Movie) types.MovieBag {
	id := m.ID
	created := m.CreatedAt
	updated := m.UpdatedAt
	title := m.Title

	bag := types.MovieBag{
		ID:      &id,
		Created: &created,
		Updated: &updated,
		Title:   &title,
		Year:    types.Int(m.Year),
	}

	if m.Duration != nil && *m.Duration != 0 {
		bag.Duration = types.Int(*m.Duration)
	}
	if m.Synopsis != nil && *m.Synopsis != "" {
		bag.Synopsis = types.Str(*m.Synopsis)
	}
	if m.Notes != nil && *m.Notes != "" {
		bag.Notes = types.Str(*m.Notes)
	}

	if len(m.Stars) > 0 {
		bag.Stars = personNames(m.Stars)
	}
	if len(m.Directors) > 0 {
		bag.Directors = personNames(m.Directors)
	}
	if len(m.Tags) > 0 {
		bag.MovieTags = tagTexts(m.Tags)
	}

	return bag
}

func toMovieBags(movies []*database.Movie) []types.MovieBag {
	bags := make([]types.MovieBag, 0, len(movies))
	for _, m := range movies {
		bags = append(bags, toMovieBag(m))
	}
	return bags
}

// newMovie builds the direct columns of a movie to insert. Links are
// resolved separately.
func newMovie(op string, bag types.MovieBag) (*database.Movie, error) {
	title, year, err := movieKey(op, bag)
	if err != nil {
		return nil, err
	}

	movie := &database.Movie{
		Title:    title,
		Year:     year,
		Synopsis: copyString(bag.Synopsis),
		Notes:    copyString(bag.Notes),
	}

	if bag.Duration != nil {
		d, err := bag.Duration.Int()
		if err != nil {
			return nil, catalogerrors.TypeError(op, fmt.Errorf("duration: %w", err))
		}
		movie.Duration = &d
	}

	return movie, nil
}

// movieKey extracts the (title, year) identity of bag. Both are required and
// the year must be a scalar.
func movieKey(op string, bag types.MovieBag) (string, int, error) {
	if bag.Title == nil || bag.Year == nil {
		return "", 0, catalogerrors.ValidationError(op,
			fmt.Errorf("%w: title and year are required", catalogerrors.ErrInvalidInput))
	}

	year, err := bag.Year.Int()
	if err != nil {
		return "", 0, catalogerrors.TypeError(op, fmt.Errorf("year: %w", err))
	}
	return *bag.Title, year, nil
}

func personNames(people []*database.Person) types.NameSet {
	names := types.NewNameSet()
	for _, p := range people {
		names.Add(p.Name)
	}
	return names
}

func tagTexts(tags []*database.Tag) types.NameSet {
	texts := types.NewNameSet()
	for _, t := range tags {
		texts.Add(t.Text)
	}
	return texts
}

// copyString returns nil for absent or empty strings.
func copyString(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
