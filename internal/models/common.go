package models

// Existence reports whether a named resource exists
type Existence struct {
	Name   string `json:"name" yaml:"name"`
	Exists bool   `json:"exists" yaml:"exists"`
}

// Transfer describes a completed upload or download
type Transfer struct {
	Name  string `json:"name" yaml:"name"`
	File  string `json:"file" yaml:"file"`
	Bytes int64  `json:"bytes" yaml:"bytes"`
}

// Deleted counts the items removed by a bulk operation
type Deleted struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}
