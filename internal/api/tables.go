package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"github.com/demoray/azure-storage-blob-client/internal/credential"
	"github.com/demoray/azure-storage-blob-client/internal/models"
	"github.com/demoray/azure-storage-blob-client/internal/storage"
)

// Tables returns a client for the account's table service.
func (c *Client) Tables(account string, cred credential.Credential) (storage.TableClient, error) {
	url := c.ServiceURL(ServiceTable, account)
	opts := &aztables.ClientOptions{ClientOptions: c.clientOptions()}

	client, err := connect(cred,
		func(account, key string) (*aztables.ServiceClient, error) {
			shared, err := aztables.NewSharedKeyCredential(account, key)
			if err != nil {
				return nil, err
			}
			return aztables.NewServiceClientWithSharedKey(url, shared, opts)
		},
		func(token azcore.TokenCredential) (*aztables.ServiceClient, error) {
			return aztables.NewServiceClient(url, token, opts)
		},
	)
	if err != nil {
		return nil, err
	}
	return &tableClient{client: client}, nil
}

type tableClient struct {
	client *aztables.ServiceClient
}

func (t *tableClient) ListTables(ctx context.Context, filter string) ([]models.TableItem, error) {
	items := []models.TableItem{}

	pager := t.client.NewListTablesPager(&aztables.ListTablesOptions{Filter: optional(filter)})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tables: %w", err)
		}
		for _, table := range page.Tables {
			items = append(items, models.TableItem{Name: value(table.Name)})
		}
	}

	return items, nil
}

func (t *tableClient) CreateTable(ctx context.Context, name string) error {
	if _, err := t.client.CreateTable(ctx, name, nil); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}
	return nil
}

func (t *tableClient) DeleteTable(ctx context.Context, name string) error {
	if _, err := t.client.DeleteTable(ctx, name, nil); err != nil {
		return fmt.Errorf("failed to delete table %s: %w", name, err)
	}
	return nil
}

func (t *tableClient) Query(ctx context.Context, table, filter string, top int32) ([]models.Entity, error) {
	entities := []models.Entity{}

	options := &aztables.ListEntitiesOptions{Filter: optional(filter)}
	if top > 0 {
		options.Top = &top
	}

	pager := t.client.NewClient(table).NewListEntitiesPager(options)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", table, err)
		}
		for _, raw := range page.Entities {
			entity, err := decodeEntity(raw)
			if err != nil {
				return nil, err
			}
			entities = append(entities, entity)
			if top > 0 && int32(len(entities)) >= top {
				return entities, nil
			}
		}
	}

	return entities, nil
}

func (t *tableClient) GetEntity(ctx context.Context, table, partitionKey, rowKey string) (models.Entity, error) {
	resp, err := t.client.NewClient(table).GetEntity(ctx, partitionKey, rowKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get entity %s/%s: %w", partitionKey, rowKey, err)
	}
	return decodeEntity(resp.Value)
}

func (t *tableClient) InsertEntity(ctx context.Context, table string, entity models.Entity) error {
	body, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	if _, err := t.client.NewClient(table).AddEntity(ctx, body, nil); err != nil {
		return fmt.Errorf("failed to insert entity %s/%s: %w", entity.PartitionKey(), entity.RowKey(), err)
	}
	return nil
}

func (t *tableClient) UpsertEntity(ctx context.Context, table string, entity models.Entity) error {
	body, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	if _, err := t.client.NewClient(table).UpsertEntity(ctx, body, nil); err != nil {
		return fmt.Errorf("failed to upsert entity %s/%s: %w", entity.PartitionKey(), entity.RowKey(), err)
	}
	return nil
}

func (t *tableClient) DeleteEntity(ctx context.Context, table, partitionKey, rowKey string) error {
	if _, err := t.client.NewClient(table).DeleteEntity(ctx, partitionKey, rowKey, nil); err != nil {
		return fmt.Errorf("failed to delete entity %s/%s: %w", partitionKey, rowKey, err)
	}
	return nil
}

// decodeEntity parses an entity and drops the odata annotations.
func decodeEntity(raw []byte) (models.Entity, error) {
	var entity models.Entity
	if err := json.Unmarshal(raw, &entity); err != nil {
		return nil, fmt.Errorf("failed to parse entity: %w", err)
	}
	for key := range entity {
		if strings.HasPrefix(key, "odata.") || strings.Contains(key, "@odata.") {
			delete(entity, key)
		}
	}
	return entity, nil
}
