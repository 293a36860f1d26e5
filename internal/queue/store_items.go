package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Add appends a request and returns the stored row. Duplicate paths are
// allowed and processed independently.
func (s *Store) Add(ctx context.Context, req Request) (*Request, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" || !filepath.IsAbs(path) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, req.Path)
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO transcode_queue (path, languages, video_params, audio_params, content_id, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		path,
		nullableString(strings.TrimSpace(req.Languages)),
		nullableString(strings.TrimSpace(req.VideoParams)),
		nullableString(strings.TrimSpace(req.AudioParams)),
		nullableInt64(req.ContentID),
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert request: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// PeekOldest returns the request with the lowest identity, or nil when the
// queue is empty. It does not modify the queue.
func (s *Store) PeekOldest(ctx context.Context) (*Request, error) {
	var req *Request
	err := retryOnBusy(ctx, func() error {
		row := s.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM transcode_queue ORDER BY id LIMIT 1`)
		scanned, err := scanRequest(row)
		if errors.Is(err, sql.ErrNoRows) {
			req = nil
			return nil
		}
		if err != nil {
			return err
		}
		req = scanned
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("peek oldest: %w", err)
	}
	return req, nil
}

// Remove deletes the request with id. Removing a missing id is a no-op.
func (s *Store) Remove(ctx context.Context, id int64) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM transcode_queue WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove request %d: %w", id, err)
	}
	return nil
}

// Size returns the number of pending requests.
func (s *Store) Size(ctx context.Context) (int, error) {
	var count int
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM transcode_queue`).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("count requests: %w", err)
	}
	return count, nil
}

// GetByID fetches a request by identity. It returns ErrNotFound when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*Request, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM transcode_queue WHERE id = ?`, id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

// List returns every pending request in processing order.
func (s *Store) List(ctx context.Context) ([]*Request, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+requestColumns+` FROM transcode_queue ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var out []*Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return out, nil
}

// Clear deletes every pending request and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM transcode_queue`)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}
