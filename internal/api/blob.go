package api

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"

	"github.com/demoray/azure-storage-blob-client/internal/credential"
	"github.com/demoray/azure-storage-blob-client/internal/models"
	"github.com/demoray/azure-storage-blob-client/internal/storage"
	"github.com/demoray/azure-storage-blob-client/internal/utils"
)

func (c *Client) blobService(account string, cred credential.Credential) (*service.Client, error) {
	url := c.ServiceURL(ServiceBlob, account)
	opts := &service.ClientOptions{ClientOptions: c.clientOptions()}

	return connect(cred,
		func(account, key string) (*service.Client, error) {
			shared, err := service.NewSharedKeyCredential(account, key)
			if err != nil {
				return nil, err
			}
			return service.NewClientWithSharedKeyCredential(url, shared, opts)
		},
		func(token azcore.TokenCredential) (*service.Client, error) {
			return service.NewClient(url, token, opts)
		},
	)
}

// Account returns a client for the account's blob service.
func (c *Client) Account(account string, cred credential.Credential) (storage.AccountClient, error) {
	client, err := c.blobService(account, cred)
	if err != nil {
		return nil, err
	}
	return &accountClient{account: account, client: client}, nil
}

// Container returns a client bound to one container.
func (c *Client) Container(account string, cred credential.Credential, name string) (storage.ContainerClient, error) {
	client, err := c.blobService(account, cred)
	if err != nil {
		return nil, err
	}
	return &containerClient{name: name, client: client.NewContainerClient(name)}, nil
}

type accountClient struct {
	account string
	client  *service.Client
}

func (a *accountClient) ListContainers(ctx context.Context, prefix string) ([]models.ContainerItem, error) {
	items := []models.ContainerItem{}

	pager := a.client.NewListContainersPager(&service.ListContainersOptions{Prefix: optional(prefix)})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list containers: %w", err)
		}
		for _, item := range page.ContainerItems {
			entry := models.ContainerItem{Name: value(item.Name)}
			if item.Properties != nil {
				entry.LastModified = value(item.Properties.LastModified)
			}
			items = append(items, entry)
		}
	}

	return items, nil
}

func (a *accountClient) Info(ctx context.Context) (*models.AccountInfo, error) {
	resp, err := a.client.GetAccountInfo(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}

	return &models.AccountInfo{
		Account:                        a.account,
		SKUName:                        string(value(resp.SKUName)),
		AccountKind:                    string(value(resp.AccountKind)),
		IsHierarchicalNamespaceEnabled: value(resp.IsHierarchicalNamespaceEnabled),
	}, nil
}

type containerClient struct {
	name   string
	client *container.Client
}

func (c *containerClient) Name() string {
	return c.name
}

func (c *containerClient) Create(ctx context.Context) error {
	if _, err := c.client.Create(ctx, nil); err != nil {
		return fmt.Errorf("failed to create container %s: %w", c.name, err)
	}
	return nil
}

func (c *containerClient) Delete(ctx context.Context) error {
	if _, err := c.client.Delete(ctx, nil); err != nil {
		return fmt.Errorf("failed to delete container %s: %w", c.name, err)
	}
	return nil
}

func (c *containerClient) Exists(ctx context.Context) (bool, error) {
	_, err := c.client.GetProperties(ctx, nil)
	if utils.IsNotFoundError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check container %s: %w", c.name, err)
	}
	return true, nil
}

func (c *containerClient) Properties(ctx context.Context) (*models.ContainerProperties, error) {
	resp, err := c.client.GetProperties(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get container %s: %w", c.name, err)
	}

	return &models.ContainerProperties{
		Name:         c.name,
		LastModified: value(resp.LastModified),
		ETag:         string(value(resp.ETag)),
		LeaseState:   string(value(resp.LeaseState)),
		PublicAccess: string(value(resp.BlobPublicAccess)),
		Metadata:     metadata(resp.Metadata),
	}, nil
}

func (c *containerClient) ListBlobs(ctx context.Context, prefix string) ([]models.BlobItem, error) {
	items := []models.BlobItem{}

	pager := c.client.NewListBlobsFlatPager(&container.ListBlobsFlatOptions{Prefix: optional(prefix)})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list blobs in %s: %w", c.name, err)
		}
		if page.Segment == nil {
			continue
		}
		for _, item := range page.Segment.BlobItems {
			entry := models.BlobItem{Name: value(item.Name)}
			if props := item.Properties; props != nil {
				entry.BlobType = string(value(props.BlobType))
				entry.ContentLength = value(props.ContentLength)
				entry.ContentType = value(props.ContentType)
				entry.LastModified = value(props.LastModified)
			}
			items = append(items, entry)
		}
	}

	return items, nil
}

func (c *containerClient) UploadBlob(ctx context.Context, name string, body io.Reader) error {
	if _, err := c.client.NewBlockBlobClient(name).UploadStream(ctx, body, nil); err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", name, err)
	}
	return nil
}

func (c *containerClient) DownloadBlob(ctx context.Context, name string, w io.Writer) (int64, error) {
	resp, err := c.client.NewBlobClient(name).DownloadStream(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to download blob %s: %w", name, err)
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read blob %s: %w", name, err)
	}
	return n, nil
}

func (c *containerClient) DeleteBlob(ctx context.Context, name string) error {
	if _, err := c.client.NewBlobClient(name).Delete(ctx, nil); err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", name, err)
	}
	return nil
}

func (c *containerClient) BlobExists(ctx context.Context, name string) (bool, error) {
	_, err := c.client.NewBlobClient(name).GetProperties(ctx, nil)
	if utils.IsNotFoundError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check blob %s: %w", name, err)
	}
	return true, nil
}

func (c *containerClient) BlobProperties(ctx context.Context, name string) (*models.BlobProperties, error) {
	resp, err := c.client.NewBlobClient(name).GetProperties(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get blob %s: %w", name, err)
	}

	return &models.BlobProperties{
		Name:          name,
		BlobType:      string(value(resp.BlobType)),
		ContentLength: value(resp.ContentLength),
		ContentType:   value(resp.ContentType),
		ETag:          string(value(resp.ETag)),
		AccessTier:    value(resp.AccessTier),
		LastModified:  value(resp.LastModified),
		Metadata:      metadata(resp.Metadata),
	}, nil
}
