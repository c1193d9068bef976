package pageinfo

import (
	"context"
	"time"
)

// Snapshot is a stored fetch result.
type Snapshot struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	FinalURL    string    `json:"finalUrl"`
	StatusCode  int       `json:"statusCode"`
	ContentType string    `json:"contentType"`
	ContentHash string    `json:"contentHash"`
	Info        *HTMLInfo `json:"info"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Validate returns an error if the snapshot contains invalid fields.
func (s *Snapshot) Validate() error {
	if s.URL == "" {
		return Errorf(EINVALID, "snapshot URL required")
	}
	if s.Info == nil {
		return Errorf(EINVALID, "snapshot info required")
	}
	return nil
}

// NewSnapshot builds an unsaved snapshot from a fetch result.
func NewSnapshot(url string, info *WebpageInfo) *Snapshot {
	return &Snapshot{
		URL:         url,
		FinalURL:    info.HTTP.URL,
		StatusCode:  info.HTTP.StatusCode,
		ContentType: info.HTTP.ContentType,
		Info:        &info.HTML,
	}
}

// SnapshotService represents a service for managing stored snapshots.
type SnapshotService interface {
	// CreateSnapshot stores a snapshot, assigning its ID, FetchedAt and
	// ContentHash.
	CreateSnapshot(ctx context.Context, snapshot *Snapshot) error

	// FindSnapshotByID retrieves a snapshot by ID.
	// Returns ENOTFOUND if the snapshot does not exist.
	FindSnapshotByID(ctx context.Context, id string) (*Snapshot, error)

	// FindSnapshots retrieves snapshots matching the filter, newest first.
	FindSnapshots(ctx context.Context, filter SnapshotFilter) ([]*Snapshot, error)

	// DeleteSnapshot permanently removes a snapshot.
	// Returns ENOTFOUND if the snapshot does not exist.
	DeleteSnapshot(ctx context.Context, id string) error
}

// SnapshotFilter represents a filter for FindSnapshots.
type SnapshotFilter struct {
	ID  *string `json:"id"`
	URL *string `json:"url"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
