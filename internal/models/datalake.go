package models

import "time"

// FileSystemItem represents a datalake filesystem in a listing
type FileSystemItem struct {
	Name         string    `json:"name" yaml:"name"`
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`
}

// PathItem represents a file or directory in a filesystem listing
type PathItem struct {
	Name          string `json:"name" yaml:"name"`
	IsDirectory   bool   `json:"is_directory" yaml:"is_directory"`
	ContentLength int64  `json:"content_length" yaml:"content_length"`
	LastModified  string `json:"last_modified" yaml:"last_modified"`
}
