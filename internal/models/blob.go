package models

import "time"

// AccountInfo describes the storage account behind the blob endpoint
type AccountInfo struct {
	Account                        string `json:"account" yaml:"account"`
	SKUName                        string `json:"sku_name" yaml:"sku_name"`
	AccountKind                    string `json:"account_kind" yaml:"account_kind"`
	IsHierarchicalNamespaceEnabled bool   `json:"is_hierarchical_namespace_enabled" yaml:"is_hierarchical_namespace_enabled"`
}

// ContainerItem represents a container in a listing
type ContainerItem struct {
	Name         string    `json:"name" yaml:"name"`
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`
}

// ContainerProperties represents the properties of a single container
type ContainerProperties struct {
	Name         string            `json:"name" yaml:"name"`
	LastModified time.Time         `json:"last_modified" yaml:"last_modified"`
	ETag         string            `json:"etag" yaml:"etag"`
	LeaseState   string            `json:"lease_state" yaml:"lease_state"`
	PublicAccess string            `json:"public_access" yaml:"public_access"`
	Metadata     map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// BlobItem represents a blob in a listing
type BlobItem struct {
	Name          string    `json:"name" yaml:"name"`
	BlobType      string    `json:"blob_type" yaml:"blob_type"`
	ContentLength int64     `json:"content_length" yaml:"content_length"`
	ContentType   string    `json:"content_type" yaml:"content_type"`
	LastModified  time.Time `json:"last_modified" yaml:"last_modified"`
}

// BlobProperties represents the properties of a single blob
type BlobProperties struct {
	Name          string            `json:"name" yaml:"name"`
	BlobType      string            `json:"blob_type" yaml:"blob_type"`
	ContentLength int64             `json:"content_length" yaml:"content_length"`
	ContentType   string            `json:"content_type" yaml:"content_type"`
	ETag          string            `json:"etag" yaml:"etag"`
	AccessTier    string            `json:"access_tier" yaml:"access_tier"`
	LastModified  time.Time         `json:"last_modified" yaml:"last_modified"`
	Metadata      map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}
