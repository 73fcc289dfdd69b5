// Package storage defines the remote service clients the command families
// talk to, one interface per family. The Azure SDK implementation lives in
// internal/api; tests substitute fakes through Factory.
package storage

import (
	"context"
	"io"

	"github.com/demoray/azure-storage-blob-client/internal/credential"
	"github.com/demoray/azure-storage-blob-client/internal/models"
)

// Family names a top-level command family.
type Family string

const (
	FamilyAccount   Family = "account"
	FamilyContainer Family = "container"
	FamilyQueues    Family = "queues"
	FamilyDatalake  Family = "datalake"
	FamilyTables    Family = "tables"
	FamilyReadme    Family = "readme"
)

// AccountClient operates on the blob service of an account.
type AccountClient interface {
	// ListContainers lists containers whose names start with prefix.
	ListContainers(ctx context.Context, prefix string) ([]models.ContainerItem, error)

	// Info returns the account SKU, kind and namespace settings.
	Info(ctx context.Context) (*models.AccountInfo, error)
}

// ContainerClient operates on one container and its blobs.
type ContainerClient interface {
	// Name returns the container the client is bound to.
	Name() string

	Create(ctx context.Context) error
	Delete(ctx context.Context) error
	Exists(ctx context.Context) (bool, error)
	Properties(ctx context.Context) (*models.ContainerProperties, error)

	// ListBlobs lists blobs whose names start with prefix.
	ListBlobs(ctx context.Context, prefix string) ([]models.BlobItem, error)

	// UploadBlob writes body to a block blob, replacing any existing blob.
	UploadBlob(ctx context.Context, name string, body io.Reader) error

	// DownloadBlob copies the blob's content to w and returns the bytes
	// written.
	DownloadBlob(ctx context.Context, name string, w io.Writer) (int64, error)

	DeleteBlob(ctx context.Context, name string) error
	BlobExists(ctx context.Context, name string) (bool, error)
	BlobProperties(ctx context.Context, name string) (*models.BlobProperties, error)
}

// QueueClient operates on the queue service of an account.
type QueueClient interface {
	ListQueues(ctx context.Context, prefix string) ([]models.QueueItem, error)
	CreateQueue(ctx context.Context, name string) error
	DeleteQueue(ctx context.Context, name string) error
	QueueProperties(ctx context.Context, name string) (*models.QueueProperties, error)

	// Send enqueues one message and returns it as stored.
	Send(ctx context.Context, queue, text string) (*models.Message, error)

	// Peek returns up to count messages without changing their visibility.
	Peek(ctx context.Context, queue string, count int32) ([]models.Message, error)

	// Receive dequeues up to count messages. Unless keep is set, each
	// returned message is deleted from the queue.
	Receive(ctx context.Context, queue string, count int32, keep bool) ([]models.Message, error)

	Clear(ctx context.Context, queue string) error
}

// DatalakeClient operates on the datalake (dfs) service of an account.
type DatalakeClient interface {
	ListFileSystems(ctx context.Context, prefix string) ([]models.FileSystemItem, error)
	CreateFileSystem(ctx context.Context, name string) error
	DeleteFileSystem(ctx context.Context, name string) error

	ListPaths(ctx context.Context, fileSystem, prefix string, recursive bool) ([]models.PathItem, error)
	CreateDirectory(ctx context.Context, fileSystem, path string) error
	UploadFile(ctx context.Context, fileSystem, path string, body io.Reader) error
	DownloadFile(ctx context.Context, fileSystem, path string, w io.Writer) (int64, error)
	DeletePath(ctx context.Context, fileSystem, path string) error
}

// TableClient operates on the table service of an account.
type TableClient interface {
	ListTables(ctx context.Context, filter string) ([]models.TableItem, error)
	CreateTable(ctx context.Context, name string) error
	DeleteTable(ctx context.Context, name string) error

	// Query lists entities matching an OData filter. top <= 0 means no limit.
	Query(ctx context.Context, table, filter string, top int32) ([]models.Entity, error)
	GetEntity(ctx context.Context, table, partitionKey, rowKey string) (models.Entity, error)
	InsertEntity(ctx context.Context, table string, entity models.Entity) error
	UpsertEntity(ctx context.Context, table string, entity models.Entity) error
	DeleteEntity(ctx context.Context, table, partitionKey, rowKey string) error
}

// Factory constructs family clients for an account and resolved credential.
// Construction performs no network I/O.
type Factory interface {
	Account(account string, cred credential.Credential) (AccountClient, error)
	Container(account string, cred credential.Credential, name string) (ContainerClient, error)
	Queues(account string, cred credential.Credential) (QueueClient, error)
	Datalake(account string, cred credential.Credential) (DatalakeClient, error)
	Tables(account string, cred credential.Credential) (TableClient, error)
}
