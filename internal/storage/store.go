package storage

import (
	"context"
	"errors"

	"apiscout/internal/ir"
)

// ErrNoSnapshot is returned when the store holds no persisted surface yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// EndpointStore defines operations for persisting the endpoint surface.
type EndpointStore interface {
	// SaveSnapshot replaces the stored surface with the given snapshot.
	SaveSnapshot(ctx context.Context, snap *ir.Snapshot) error

	// LoadSnapshot retrieves the stored surface, or ErrNoSnapshot.
	LoadSnapshot(ctx context.Context) (*ir.Snapshot, error)

	// FindByController retrieves the endpoints grouped under one controller.
	FindByController(ctx context.Context, controller string) ([]ir.EndpointDescriptor, error)

	// FindBySourceFile retrieves the endpoints observed in one file.
	FindBySourceFile(ctx context.Context, path string) ([]ir.EndpointDescriptor, error)

	Close() error
}
