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

// SelectAllTags returns the text of every tag.
func (s *Service) SelectAllTags(ctx context.Context) (types.NameSet, error) {
	var texts []string
	err := s.session(ctx, opSelectAllTags, func(tx *gorm.DB) error {
		return tx.Model(&database.Tag{}).Order("text").Pluck("text", &texts).Error
	})
	if err != nil {
		return nil, err
	}
	return types.NewNameSet(texts...), nil
}

// SelectMoviesByTag returns the movies carrying the tag text.
func (s *Service) SelectMoviesByTag(ctx context.Context, text string) ([]types.MovieBag, error) {
	var movies []*database.Movie
	err := s.session(ctx, opSelectMoviesByTag, func(tx *gorm.DB) error {
		tag, err := findTag(tx, opSelectMoviesByTag, text)
		if err != nil {
			return err
		}
		return withLinks(tx).
			Joins("JOIN "+database.TableMovieTags+" ON "+database.TableMovieTags+".movie_id = movies.id").
			Where(database.TableMovieTags+".tag_id = ?", tag.ID).
			Order("movies.id").
			Find(&movies).Error
	})
	if err != nil {
		return nil, err
	}
	return toMovieBags(movies), nil
}

// AddTag creates a tag.
func (s *Service) AddTag(ctx context.Context, text string) error {
	return s.session(ctx, opAddTag, func(tx *gorm.DB) error {
		return tx.Create(&database.Tag{Text: text}).Error
	})
}

// AddTags creates several tags in one unit of work. Either all are added or
// none are.
func (s *Service) AddTags(ctx context.Context, texts ...string) error {
	return s.session(ctx, opAddTags, func(tx *gorm.DB) error {
		for _, text := range texts {
			if err := tx.Create(&database.Tag{Text: text}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// EditTag renames a tag. Movies carrying it keep it under the new text.
func (s *Service) EditTag(ctx context.Context, oldText, newText string) error {
	return s.session(ctx, opEditTag, func(tx *gorm.DB) error {
		tag, err := findTag(tx, opEditTag, oldText)
		if err != nil {
			return err
		}
		return tx.Model(tag).Update("text", newText).Error
	})
}

// DeleteTag removes a tag and its links to movies. An unknown tag is not an
// error.
func (s *Service) DeleteTag(ctx context.Context, text string) error {
	return s.session(ctx, opDeleteTag, func(tx *gorm.DB) error {
		tag, err := findTag(tx, opDeleteTag, text)
		if catalogerrors.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Select("Movies").Delete(tag).Error
	})
}

func findTag(tx *gorm.DB, op, text string) (*database.Tag, error) {
	var tag database.Tag
	err := tx.Where("text = ?", text).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalogerrors.NotFound(op, fmt.Errorf("tag %q", text)).WithDetail("tag", text)
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// resolveTags loads the tags named by texts. Tags are never created here; a
// missing one is a not_found error.
func resolveTags(tx *gorm.DB, op string, texts types.NameSet) ([]*database.Tag, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var tags []*database.Tag
	if err := tx.Where("text IN ?", texts.Sorted()).Order("text").Find(&tags).Error; err != nil {
		return nil, err
	}

	if len(tags) != len(texts) {
		missing := texts.Difference(tagTexts(tags))
		return nil, catalogerrors.NotFound(op, fmt.Errorf("tags %s do not exist", missing)).
			WithDetail("tags", missing.Sorted())
	}
	return tags, nil
}
