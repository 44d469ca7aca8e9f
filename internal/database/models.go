package database

import (
	"time"
)

// Version tags the on-disk shape of the schema below. Any change to a table,
// column, index or constraint must bump it; the startup migration keys on it.
const Version = "DBv1"

const (
	// FirstMotionPictureYear is an exclusive lower bound for Movie.Year.
	FirstMotionPictureYear = 1878
	// MaxYear is an inclusive upper bound for Movie.Year.
	MaxYear = 10000
)

// =============================================================================
// ENTITIES
// =============================================================================

// Movie is a catalogued film. Title and year together identify it.
type Movie struct {
	ID       uint    `gorm:"primaryKey"`
	Title    string  `gorm:"not null;uniqueIndex:idx_movies_title_year,priority:1"`
	Year     int     `gorm:"not null;uniqueIndex:idx_movies_title_year,priority:2;check:year > 1878 AND year <= 10000"`
	Duration *int    // minutes
	Synopsis *string `gorm:"type:text"`
	Notes    *string `gorm:"type:text"`

	Stars     []*Person `gorm:"many2many:movie_stars;constraint:OnDelete:CASCADE"`
	Directors []*Person `gorm:"many2many:movie_directors;constraint:OnDelete:CASCADE"`
	Tags      []*Tag    `gorm:"many2many:movie_tags;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Person is a director or star. Whether a person is an orphan is derived
// from the two link tables and never stored.
type Person struct {
	ID    uint    `gorm:"primaryKey"`
	Name  string  `gorm:"not null;uniqueIndex"`
	Notes *string `gorm:"type:text"`

	StarOf     []*Movie `gorm:"many2many:movie_stars;constraint:OnDelete:CASCADE"`
	DirectorOf []*Movie `gorm:"many2many:movie_directors;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName keeps the plural the link tables refer to.
func (Person) TableName() string {
	return "people"
}

// Tag is a free-form label. Tags are a vocabulary: a movie may only reference
// tags that already exist.
type Tag struct {
	ID    uint    `gorm:"primaryKey"`
	Text  string  `gorm:"not null;uniqueIndex"`
	Notes *string `gorm:"type:text"`

	Movies []*Movie `gorm:"many2many:movie_tags;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Link tables. Each has a composite primary key of its two foreign keys.
const (
	TableMovieStars     = "movie_stars"
	TableMovieDirectors = "movie_directors"
	TableMovieTags      = "movie_tags"
)

// Models returns the entities AutoMigrate creates. The link tables come
// from the many2many fields.
func Models() []interface{} {
	return []interface{}{
		&Movie{},
		&Person{},
		&Tag{},
	}
}
