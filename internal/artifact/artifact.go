// Package artifact writes export payloads to a destination.
package artifact

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Driver identifies a sink backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

// Artifact describes a written export.
type Artifact struct {
	ID          string
	Name        string
	ContentType string
	Size        int64
	Location    string
	CreatedAt   time.Time
}

// Sink stores export payloads.
type Sink interface {
	// Put writes payload under name. id scopes backends that keep every
	// export; the filesystem sink ignores it and overwrites name.
	Put(ctx context.Context, id, name string, payload []byte, contentType string) (Artifact, error)
	Driver() Driver
}

// Config selects and configures a sink.
type Config struct {
	Driver Driver
	Dir    string
	S3     S3Config
}

// Open builds the sink named by cfg.Driver; an empty driver means fs.
func Open(ctx context.Context, cfg Config) (Sink, error) {
	driver := Driver(strings.ToLower(strings.TrimSpace(string(cfg.Driver))))
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewDir(cfg.Dir)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown export sink %q (use fs, s3 or memory)", cfg.Driver)
	}
}
