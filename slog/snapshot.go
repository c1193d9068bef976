package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pageinfo"
)

// Ensure LoggingSnapshotService implements pageinfo.SnapshotService.
var _ pageinfo.SnapshotService = (*LoggingSnapshotService)(nil)

// LoggingSnapshotService wraps a SnapshotService with logging of writes.
type LoggingSnapshotService struct {
	next   pageinfo.SnapshotService
	logger *slog.Logger
}

// NewLoggingSnapshotService creates a new LoggingSnapshotService.
func NewLoggingSnapshotService(next pageinfo.SnapshotService, logger *slog.Logger) *LoggingSnapshotService {
	return &LoggingSnapshotService{next: next, logger: logger}
}

// CreateSnapshot delegates to the wrapped service and logs the stored snapshot.
func (s *LoggingSnapshotService) CreateSnapshot(ctx context.Context, snapshot *pageinfo.Snapshot) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("snapshot saved",
			"url", snapshot.URL,
			"id", snapshot.ID,
			"hash", snapshot.ContentHash,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateSnapshot(ctx, snapshot)
}

// FindSnapshotByID delegates to the wrapped service.
func (s *LoggingSnapshotService) FindSnapshotByID(ctx context.Context, id string) (*pageinfo.Snapshot, error) {
	return s.next.FindSnapshotByID(ctx, id)
}

// FindSnapshots delegates to the wrapped service.
func (s *LoggingSnapshotService) FindSnapshots(ctx context.Context, filter pageinfo.SnapshotFilter) ([]*pageinfo.Snapshot, error) {
	return s.next.FindSnapshots(ctx, filter)
}

// DeleteSnapshot delegates to the wrapped service and logs the removal.
func (s *LoggingSnapshotService) DeleteSnapshot(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("snapshot deleted",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteSnapshot(ctx, id)
}
