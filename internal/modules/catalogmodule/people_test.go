package catalogmodule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogerrors "github.com/moviedb/moviedb/internal/errors"
	"github.com/moviedb/moviedb/internal/types"
)

func TestSelectPersonMovies(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	seedFourMovies(t, svc)

	got, err := svc.SelectPersonMovies(ctx, "Edgar Ethelred")
	require.NoError(t, err)
	assert.Equal(t, []string{"Transformer", "Fourth Movie"}, titles(got))

	got, err = svc.SelectPersonMovies(ctx, "Donald Director")
	require.NoError(t, err)
	assert.Equal(t, []string{"Transformer"}, titles(got))

	_, err = svc.SelectPersonMovies(ctx, "Nobody")
	assert.True(t, catalogerrors.IsNotFound(err))
}

func TestAddPeopleAndSweepOrphans(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	seedFourMovies(t, svc)

	require.NoError(t, svc.AddPeople(ctx, "Hermit", "Recluse"))

	err := svc.AddPeople(ctx, "Hermit")
	assert.True(t, catalogerrors.IsIntegrityFailure(err))

	require.NoError(t, svc.DeleteOrphanPeople(ctx, types.NewNameSet("Hermit", "Edgar Ethelred", "Nobody")))

	people, err := svc.SelectAllPeople(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Donald Director", "Edgar Ethelred", "Fanny Fullworthy", "Recluse"}, people.Sorted())

	require.NoError(t, svc.DeleteOrphanPeople(ctx, types.NewNameSet()))
}

func TestDeletePerson(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	seedFourMovies(t, svc)

	require.NoError(t, svc.DeletePerson(ctx, "Edgar Ethelred"))

	got, err := svc.SelectMovie(ctx, key("Transformer", 4242))
	require.NoError(t, err)
	assert.Equal(t, types.NewNameSet("Fanny Fullworthy"), got.Stars)

	got, err = svc.SelectMovie(ctx, key("Fourth Movie", 4244))
	require.NoError(t, err)
	assert.Nil(t, got.Stars)

	err = svc.DeletePerson(ctx, "Edgar Ethelred")
	assert.True(t, catalogerrors.IsNotFound(err))
}
