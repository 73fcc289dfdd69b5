package api

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"

	"github.com/demoray/azure-storage-blob-client/internal/credential"
	"github.com/demoray/azure-storage-blob-client/internal/models"
	"github.com/demoray/azure-storage-blob-client/internal/storage"
)

// Queues returns a client for the account's queue service.
func (c *Client) Queues(account string, cred credential.Credential) (storage.QueueClient, error) {
	url := c.ServiceURL(ServiceQueue, account)
	opts := &azqueue.ClientOptions{ClientOptions: c.clientOptions()}

	client, err := connect(cred,
		func(account, key string) (*azqueue.ServiceClient, error) {
			shared, err := azqueue.NewSharedKeyCredential(account, key)
			if err != nil {
				return nil, err
			}
			return azqueue.NewServiceClientWithSharedKeyCredential(url, shared, opts)
		},
		func(token azcore.TokenCredential) (*azqueue.ServiceClient, error) {
			return azqueue.NewServiceClient(url, token, opts)
		},
	)
	if err != nil {
		return nil, err
	}
	return &queueClient{client: client}, nil
}

type queueClient struct {
	client *azqueue.ServiceClient
}

func (q *queueClient) ListQueues(ctx context.Context, prefix string) ([]models.QueueItem, error) {
	items := []models.QueueItem{}

	pager := q.client.NewListQueuesPager(&azqueue.ListQueuesOptions{Prefix: optional(prefix)})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list queues: %w", err)
		}
		for _, queue := range page.Queues {
			items = append(items, models.QueueItem{Name: value(queue.Name)})
		}
	}

	return items, nil
}

func (q *queueClient) CreateQueue(ctx context.Context, name string) error {
	if _, err := q.client.CreateQueue(ctx, name, nil); err != nil {
		return fmt.Errorf("failed to create queue %s: %w", name, err)
	}
	return nil
}

func (q *queueClient) DeleteQueue(ctx context.Context, name string) error {
	if _, err := q.client.DeleteQueue(ctx, name, nil); err != nil {
		return fmt.Errorf("failed to delete queue %s: %w", name, err)
	}
	return nil
}

func (q *queueClient) QueueProperties(ctx context.Context, name string) (*models.QueueProperties, error) {
	resp, err := q.client.NewQueueClient(name).GetProperties(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue %s: %w", name, err)
	}

	return &models.QueueProperties{
		Name:                     name,
		ApproximateMessagesCount: value(resp.ApproximateMessagesCount),
		Metadata:                 metadata(resp.Metadata),
	}, nil
}

func (q *queueClient) Send(ctx context.Context, queue, text string) (*models.Message, error) {
	resp, err := q.client.NewQueueClient(queue).EnqueueMessage(ctx, text, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to send message to %s: %w", queue, err)
	}
	if len(resp.Messages) == 0 || resp.Messages[0] == nil {
		return nil, fmt.Errorf("failed to send message to %s: empty response", queue)
	}

	sent := resp.Messages[0]
	return &models.Message{
		MessageID:      value(sent.MessageID),
		MessageText:    text,
		InsertionTime:  value(sent.InsertionTime),
		ExpirationTime: value(sent.ExpirationTime),
		PopReceipt:     value(sent.PopReceipt),
	}, nil
}

func (q *queueClient) Peek(ctx context.Context, queue string, count int32) ([]models.Message, error) {
	resp, err := q.client.NewQueueClient(queue).PeekMessages(ctx, &azqueue.PeekMessagesOptions{NumberOfMessages: &count})
	if err != nil {
		return nil, fmt.Errorf("failed to peek messages in %s: %w", queue, err)
	}

	messages := make([]models.Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		messages = append(messages, models.Message{
			MessageID:      value(m.MessageID),
			MessageText:    value(m.MessageText),
			DequeueCount:   value(m.DequeueCount),
			InsertionTime:  value(m.InsertionTime),
			ExpirationTime: value(m.ExpirationTime),
		})
	}
	return messages, nil
}

func (q *queueClient) Receive(ctx context.Context, queue string, count int32, keep bool) ([]models.Message, error) {
	client := q.client.NewQueueClient(queue)
	resp, err := client.DequeueMessages(ctx, &azqueue.DequeueMessagesOptions{NumberOfMessages: &count})
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages from %s: %w", queue, err)
	}

	messages := make([]models.Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		msg := models.Message{
			MessageID:      value(m.MessageID),
			MessageText:    value(m.MessageText),
			DequeueCount:   value(m.DequeueCount),
			InsertionTime:  value(m.InsertionTime),
			ExpirationTime: value(m.ExpirationTime),
			PopReceipt:     value(m.PopReceipt),
		}
		if !keep {
			if _, err := client.DeleteMessage(ctx, msg.MessageID, msg.PopReceipt, nil); err != nil {
				return messages, fmt.Errorf("failed to delete message %s: %w", msg.MessageID, err)
			}
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (q *queueClient) Clear(ctx context.Context, queue string) error {
	if _, err := q.client.NewQueueClient(queue).ClearMessages(ctx, nil); err != nil {
		return fmt.Errorf("failed to clear queue %s: %w", queue, err)
	}
	return nil
}
