package api

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake/filesystem"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake/service"

	"github.com/demoray/azure-storage-blob-client/internal/credential"
	"github.com/demoray/azure-storage-blob-client/internal/models"
	"github.com/demoray/azure-storage-blob-client/internal/storage"
)

// Datalake returns a client for the account's dfs endpoint.
func (c *Client) Datalake(account string, cred credential.Credential) (storage.DatalakeClient, error) {
	url := c.ServiceURL(ServiceDFS, account)
	opts := &service.ClientOptions{ClientOptions: c.clientOptions()}

	client, err := connect(cred,
		func(account, key string) (*service.Client, error) {
			shared, err := azdatalake.NewSharedKeyCredential(account, key)
			if err != nil {
				return nil, err
			}
			return service.NewClientWithSharedKeyCredential(url, shared, opts)
		},
		func(token azcore.TokenCredential) (*service.Client, error) {
			return service.NewClient(url, token, opts)
		},
	)
	if err != nil {
		return nil, err
	}
	return &datalakeClient{client: client}, nil
}

type datalakeClient struct {
	client *service.Client
}

func (d *datalakeClient) ListFileSystems(ctx context.Context, prefix string) ([]models.FileSystemItem, error) {
	items := []models.FileSystemItem{}

	pager := d.client.NewListFileSystemsPager(&service.ListFileSystemsOptions{Prefix: optional(prefix)})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list filesystems: %w", err)
		}
		for _, fs := range page.FileSystemItems {
			entry := models.FileSystemItem{Name: value(fs.Name)}
			if fs.Properties != nil {
				entry.LastModified = value(fs.Properties.LastModified)
			}
			items = append(items, entry)
		}
	}

	return items, nil
}

func (d *datalakeClient) CreateFileSystem(ctx context.Context, name string) error {
	if _, err := d.client.CreateFileSystem(ctx, name, nil); err != nil {
		return fmt.Errorf("failed to create filesystem %s: %w", name, err)
	}
	return nil
}

func (d *datalakeClient) DeleteFileSystem(ctx context.Context, name string) error {
	if _, err := d.client.DeleteFileSystem(ctx, name, nil); err != nil {
		return fmt.Errorf("failed to delete filesystem %s: %w", name, err)
	}
	return nil
}

func (d *datalakeClient) ListPaths(ctx context.Context, fileSystem, prefix string, recursive bool) ([]models.PathItem, error) {
	items := []models.PathItem{}

	fs := d.client.NewFileSystemClient(fileSystem)
	pager := fs.NewListPathsPager(recursive, &filesystem.ListPathsOptions{Prefix: optional(prefix)})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list paths in %s: %w", fileSystem, err)
		}
		for _, path := range page.Paths {
			items = append(items, models.PathItem{
				Name:          value(path.Name),
				IsDirectory:   value(path.IsDirectory),
				ContentLength: value(path.ContentLength),
				LastModified:  value(path.LastModified),
			})
		}
	}

	return items, nil
}

func (d *datalakeClient) CreateDirectory(ctx context.Context, fileSystem, path string) error {
	fs := d.client.NewFileSystemClient(fileSystem)
	if _, err := fs.NewDirectoryClient(path).Create(ctx, nil); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

func (d *datalakeClient) UploadFile(ctx context.Context, fileSystem, path string, body io.Reader) error {
	fs := d.client.NewFileSystemClient(fileSystem)
	if err := fs.NewFileClient(path).UploadStream(ctx, body, nil); err != nil {
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return nil
}

func (d *datalakeClient) DownloadFile(ctx context.Context, fileSystem, path string, w io.Writer) (int64, error) {
	fs := d.client.NewFileSystemClient(fileSystem)
	resp, err := fs.NewFileClient(path).DownloadStream(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to download %s: %w", path, err)
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return n, nil
}

func (d *datalakeClient) DeletePath(ctx context.Context, fileSystem, path string) error {
	fs := d.client.NewFileSystemClient(fileSystem)
	if _, err := fs.NewFileClient(path).Delete(ctx, nil); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}
