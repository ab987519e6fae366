package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gonewton"
	"github.com/njchilds90/gonewton/solver"
)

// RunStoreContract checks the behaviour every Store implementation must
// share. Backends call it from their own tests.
func RunStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	req := gonewton.Request{Expression: "x^2 - 4", InitialGuess: "3", StopPercent: "0.01"}
	first := NewRun(req, gonewton.Calculate(req))
	first.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := NewRun(req, gonewton.Calculate(gonewton.Request{Expression: "3x +* 2", InitialGuess: "1", StopPercent: "1"}))
	second.CreatedAt = first.CreatedAt.Add(time.Second)

	t.Run("LoadMissing", func(t *testing.T) {
		_, err := s.Load(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, first))
		require.NoError(t, s.Save(ctx, second))

		got, err := s.Load(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		assert.True(t, first.CreatedAt.Equal(got.CreatedAt))
		assert.Equal(t, req, got.Request)
		require.NotNil(t, got.Response)
		assert.Equal(t, solver.Converged, got.Response.Result.Status)
		assert.Equal(t, first.Response.Result.Root, got.Response.Result.Root)
		assert.Equal(t, first.Response.Trace, got.Response.Trace)
		require.NotNil(t, got.Response.Plot)
		assert.Equal(t, first.Response.Plot.Root, got.Response.Plot.Root)

		got, err = s.Load(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, solver.ParseError, got.Response.Result.Status)
		assert.Nil(t, got.Response.Plot)
	})

	t.Run("List", func(t *testing.T) {
		ids, err := s.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, first.ID))
		_, err := s.Load(ctx, first.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		ids, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{second.ID}, ids)
	})
}
