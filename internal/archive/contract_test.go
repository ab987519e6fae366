package archive_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gonewton"
	"github.com/njchilds90/gonewton/internal/archive"
	"github.com/njchilds90/gonewton/solver"
)

func TestMemory_Contract(t *testing.T) {
	archive.RunStoreContract(t, archive.NewMemory(0))
}

func TestNewRun(t *testing.T) {
	a := archive.NewRun(gonewton.Request{}, nil)
	b := archive.NewRun(gonewton.Request{}, nil)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.ID, 36)
	assert.WithinDuration(t, time.Now(), a.CreatedAt, time.Minute)
}

func TestMemory_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	m := archive.NewMemory(0)
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			resp := gonewton.Calculate(gonewton.Request{Expression: "x^2 - 4", InitialGuess: "3", StopPercent: "0.01"})
			assert.NoError(t, m.Save(ctx, archive.NewRun(gonewton.Request{}, resp)))
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	ids, err := m.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 8)

	run, err := m.Load(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, solver.Converged, run.Response.Result.Status)
}
