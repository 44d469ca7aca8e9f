package catalogmodule

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/moviedb/moviedb/internal/database"
	"github.com/moviedb/moviedb/internal/types"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := database.Open(filepath.Join(t.TempDir(), "catalog.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewService(store, hclog.NewNullLogger())
}

func transformer() types.MovieBag {
	return types.MovieBag{
		Title:     types.Str("Transformer"),
		Year:      types.Int(4242),
		Duration:  types.Int(142),
		Directors: types.NewNameSet("Donald Director"),
		Stars:     types.NewNameSet("Edgar Ethelred", "Fanny Fullworthy"),
		Synopsis:  types.Str("A robot learns to love."),
		Notes:     types.Str("Seen twice."),
		MovieTags: types.NewNameSet("classic"),
	}
}

// seedFourMovies stores M1..M4, where M2 and M4 both star Edgar Ethelred.
func seedFourMovies(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, svc.AddTag(ctx, "classic"))
	require.NoError(t, svc.AddMovie(ctx, types.MovieBag{Title: types.Str("First Movie"), Year: types.Int(4241)}))
	require.NoError(t, svc.AddMovie(ctx, transformer()))
	require.NoError(t, svc.AddMovie(ctx, types.MovieBag{Title: types.Str("Third Movie"), Year: types.Int(4243)}))
	require.NoError(t, svc.AddMovie(ctx, types.MovieBag{
		Title: types.Str("Fourth Movie"),
		Year:  types.Int(4244),
		Stars: types.NewNameSet("Edgar Ethelred"),
	}))
}

func titles(movies []types.MovieBag) []string {
	out := make([]string, 0, len(movies))
	for _, m := range movies {
		out = append(out, *m.Title)
	}
	return out
}

func key(title string, year int) types.MovieBag {
	return types.MovieBag{Title: types.Str(title), Year: types.Int(year)}
}
