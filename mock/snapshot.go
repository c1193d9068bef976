package mock

import (
	"context"

	"github.com/fwojciec/pageinfo"
)

var _ pageinfo.SnapshotService = (*SnapshotService)(nil)

// SnapshotService is a mock implementation of pageinfo.SnapshotService.
type SnapshotService struct {
	CreateSnapshotFn   func(ctx context.Context, snapshot *pageinfo.Snapshot) error
	FindSnapshotByIDFn func(ctx context.Context, id string) (*pageinfo.Snapshot, error)
	FindSnapshotsFn    func(ctx context.Context, filter pageinfo.SnapshotFilter) ([]*pageinfo.Snapshot, error)
	DeleteSnapshotFn   func(ctx context.Context, id string) error
}

func (s *SnapshotService) CreateSnapshot(ctx context.Context, snapshot *pageinfo.Snapshot) error {
	return s.CreateSnapshotFn(ctx, snapshot)
}

func (s *SnapshotService) FindSnapshotByID(ctx context.Context, id string) (*pageinfo.Snapshot, error) {
	return s.FindSnapshotByIDFn(ctx, id)
}

func (s *SnapshotService) FindSnapshots(ctx context.Context, filter pageinfo.SnapshotFilter) ([]*pageinfo.Snapshot, error) {
	return s.FindSnapshotsFn(ctx, filter)
}

func (s *SnapshotService) DeleteSnapshot(ctx context.Context, id string) error {
	return s.DeleteSnapshotFn(ctx, id)
}
