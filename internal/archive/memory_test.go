package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gonewton"
)

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return clock }

	req := gonewton.Request{Expression: "x", InitialGuess: "1", StopPercent: "1"}
	run := NewRun(req, gonewton.Calculate(req))
	require.NoError(t, m.Save(ctx, run))

	_, err := m.Load(ctx, run.ID)
	require.NoError(t, err)

	clock = clock.Add(time.Minute)
	_, err = m.Load(ctx, run.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	ids, err := m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, m.entries)
}
