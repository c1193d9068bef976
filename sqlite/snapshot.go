package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/pageinfo"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ pageinfo.SnapshotService = (*SnapshotService)(nil)

const snapshotColumns = "id, url, final_url, status_code, content_type, content_hash, info, fetched_at"

// SnapshotService implements pageinfo.SnapshotService using SQLite.
type SnapshotService struct {
	db *DB
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(db *DB) *SnapshotService {
	return &SnapshotService{db: db}
}

// CreateSnapshot stores a new snapshot. The content hash covers the
// extracted text, so unchanged pages hash equal across fetches.
func (s *SnapshotService) CreateSnapshot(ctx context.Context, snapshot *pageinfo.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	info, err := json.Marshal(snapshot.Info)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot info: %w", err)
	}

	snapshot.ID = uuid.New().String()
	snapshot.FetchedAt = time.Now().UTC()
	snapshot.ContentHash = hashContent(snapshot.Info.TextContent)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (`+snapshotColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, snapshot.ID, snapshot.URL, snapshot.FinalURL, snapshot.StatusCode, snapshot.ContentType,
		snapshot.ContentHash, string(info), formatTime(snapshot.FetchedAt))

	return err
}

// FindSnapshotByID retrieves a snapshot by ID.
func (s *SnapshotService) FindSnapshotByID(ctx context.Context, id string) (*pageinfo.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+snapshotColumns+" FROM snapshots WHERE id = ?", id)

	snapshot, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, pageinfo.Errorf(pageinfo.ENOTFOUND, "snapshot not found")
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// FindSnapshots retrieves snapshots matching the filter, newest first.
func (s *SnapshotService) FindSnapshots(ctx context.Context, filter pageinfo.SnapshotFilter) ([]*pageinfo.Snapshot, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + snapshotColumns + " FROM snapshots WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}

	query.WriteString(" ORDER BY fetched_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*pageinfo.Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

// DeleteSnapshot permanently removes a snapshot.
func (s *SnapshotService) DeleteSnapshot(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return pageinfo.Errorf(pageinfo.ENOTFOUND, "snapshot not found")
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*pageinfo.Snapshot, error) {
	var snapshot pageinfo.Snapshot
	var info, fetchedAt string

	if err := row.Scan(&snapshot.ID, &snapshot.URL, &snapshot.FinalURL, &snapshot.StatusCode,
		&snapshot.ContentType, &snapshot.ContentHash, &info, &fetchedAt); err != nil {
		return nil, err
	}

	snapshot.Info = &pageinfo.HTMLInfo{}
	if err := json.Unmarshal([]byte(info), snapshot.Info); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot info: %w", err)
	}

	var err error
	snapshot.FetchedAt, err = parseTime(fetchedAt, "fetched_at")
	if err != nil {
		return nil, err
	}

	return &snapshot, nil
}
