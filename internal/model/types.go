// Package model defines shared data structures.
package model

import "time"

// Config holds the resolved settings for a mapping session.
type Config struct {
	Plate     string
	ExportDir string
	Sink      string
	History   bool
	LogLevel  string
	LogFile   string
	S3        S3Config
}

// S3Config mirrors the [export.s3] config section.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	Prefix    string
	PathStyle bool
}

// ExportRecord is one row of the export history.
type ExportRecord struct {
	ID         string
	ExportedAt time.Time
	PlateType  int
	Format     string
	Labels     []string
	RowCount   int
	Location   string
}
