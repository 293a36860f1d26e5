package queue

import (
	"database/sql"
	"errors"
	"time"
)

const requestColumns = "id, path, languages, video_params, audio_params, content_id, created_at"

func scanRequest(scanner interface{ Scan(dest ...any) error }) (*Request, error) {
	var (
		id          int64
		path        string
		languages   sql.NullString
		videoParams sql.NullString
		audioParams sql.NullString
		contentID   sql.NullInt64
		createdRaw  sql.NullString
	)
	if err := scanner.Scan(&id, &path, &languages, &videoParams, &audioParams, &contentID, &createdRaw); err != nil {
		return nil, err
	}

	req := &Request{
		ID:          id,
		Path:        path,
		Languages:   languages.String,
		VideoParams: videoParams.String,
		AudioParams: audioParams.String,
	}
	if contentID.Valid {
		value := contentID.Int64
		req.ContentID = &value
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		req.CreatedAt = created
	}
	return req, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt64(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
