package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNameSetOperations(t *testing.T) {
	a := NewNameSet("Edgar Ethelred", "Fanny Fullworthy")
	b := NewNameSet("Fanny Fullworthy", "Donald Director")

	assert.True(t, a.Has("Edgar Ethelred"))
	assert.False(t, a.Has("edgar ethelred"))

	assert.Equal(t, []string{"Donald Director", "Edgar Ethelred", "Fanny Fullworthy"}, a.Union(b).Sorted())
	assert.Equal(t, []string{"Edgar Ethelred"}, a.Difference(b).Sorted())
	assert.Equal(t, "{Edgar Ethelred, Fanny Fullworthy}", a.String())
}

func TestNilNameSetIsAbsent(t *testing.T) {
	var absent NameSet
	assert.Empty(t, absent.Sorted())
	assert.False(t, absent.Has("anyone"))

	present := NewNameSet()
	assert.NotNil(t, present)
	assert.Len(t, present, 0)
}

func TestMovieBagIsEmpty(t *testing.T) {
	id := uint(7)
	now := time.Now()

	assert.True(t, MovieBag{}.IsEmpty())
	assert.True(t, MovieBag{ID: &id, Created: &now, Updated: &now}.IsEmpty())
	assert.False(t, MovieBag{Title: Str("")}.IsEmpty())
	assert.False(t, MovieBag{Stars: NewNameSet()}.IsEmpty())
}

func TestMovieBagKey(t *testing.T) {
	bag := MovieBag{
		Title:    Str("Transformer"),
		Year:     Int(4242),
		Duration: Int(142),
		Stars:    NewNameSet("Edgar Ethelred"),
	}

	key := bag.Key()
	assert.Equal(t, "Transformer", *key.Title)
	assert.Equal(t, NewRangeInt(4242), *key.Year)
	assert.Nil(t, key.Duration)
	assert.Nil(t, key.Stars)
	assert.Equal(t, "Transformer (4242)", bag.String())
}
