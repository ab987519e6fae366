// Package archive keeps finished runs so that adapters can return them by
// ID and render their plots later.
package archive

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/njchilds90/gonewton"
)

var ErrNotFound = errors.New("archive: run not found")

// Run is one archived calculation.
type Run struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"createdAt"`
	Request   gonewton.Request   `json:"request"`
	Response  *gonewton.Response `json:"response"`
}

// NewRun stamps a finished calculation with a fresh ID.
func NewRun(req gonewton.Request, resp *gonewton.Response) *Run {
	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Request:   req,
		Response:  resp,
	}
}

// Store persists runs. Implementations must be safe for concurrent use.
type Store interface {
	Save(ctx context.Context, run *Run) error
	// Load returns ErrNotFound for unknown or expired IDs.
	Load(ctx context.Context, id string) (*Run, error)
	// List returns the IDs of live runs.
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}
