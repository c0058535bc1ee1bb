package store

import (
	"context"
	"time"
)

// Upload is one ledger row. Filename is the key, so re-uploads replace the row.
type Upload struct {
	Filename   string
	Size       int64
	UploadedAt time.Time
}

// Store records uploads; an external DB implementation can replace this.
type Store interface {
	RecordUpload(ctx context.Context, u Upload) error
	Close() error
}

// NoOp discards every record.
type NoOp struct{}

func (NoOp) RecordUpload(context.Context, Upload) error { return nil }

func (NoOp) Close() error { return nil }
