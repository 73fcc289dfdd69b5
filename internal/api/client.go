// Package api implements the storage family clients on top of the Azure SDK.
package api

import (
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/demoray/azure-storage-blob-client/internal/config"
	"github.com/demoray/azure-storage-blob-client/internal/credential"
	"github.com/demoray/azure-storage-blob-client/internal/storage"
)

// ApplicationID is sent in the User-Agent of every request.
const ApplicationID = "azs"

const defaultEndpointSuffix = "core.windows.net"

// Service names a storage service endpoint.
type Service string

const (
	ServiceBlob  Service = "blob"
	ServiceQueue Service = "queue"
	ServiceDFS   Service = "dfs"
	ServiceTable Service = "table"
)

// Client represents the API client. It builds one SDK client per family
// and implements storage.Factory.
type Client struct {
	config config.StorageConfig

	// Transport replaces the SDK's HTTP transport when set.
	Transport policy.Transporter
}

var _ storage.Factory = (*Client)(nil)

// NewClient creates a new API client
func NewClient(cfg config.StorageConfig) *Client {
	return &Client{config: cfg}
}

// ServiceURL returns the endpoint of service for account. A configured
// override wins over the public cloud layout.
func (c *Client) ServiceURL(service Service, account string) string {
	var override string
	switch service {
	case ServiceBlob:
		override = c.config.Endpoints.Blob
	case ServiceQueue:
		override = c.config.Endpoints.Queue
	case ServiceDFS:
		override = c.config.Endpoints.DFS
	case ServiceTable:
		override = c.config.Endpoints.Table
	}
	if override != "" {
		return strings.ReplaceAll(override, "{account}", account)
	}

	suffix := c.config.EndpointSuffix
	if suffix == "" {
		suffix = defaultEndpointSuffix
	}
	return fmt.Sprintf("https://%s.%s.%s/", account, service, suffix)
}

func (c *Client) clientOptions() azcore.ClientOptions {
	return azcore.ClientOptions{
		Telemetry: policy.TelemetryOptions{ApplicationID: ApplicationID},
		Transport: c.Transport,
	}
}

// connect builds an SDK client with whichever constructor matches the
// resolved credential.
func connect[T any](
	cred credential.Credential,
	withKey func(account, key string) (T, error),
	withToken func(token azcore.TokenCredential) (T, error),
) (T, error) {
	var zero T

	switch c := cred.(type) {
	case credential.KeyBased:
		client, err := withKey(c.Account, c.Key.Reveal())
		if err != nil {
			return zero, fmt.Errorf("invalid access key: %w", err)
		}
		return client, nil
	case credential.IdentityBased:
		token, err := c.Token()
		if err != nil {
			return zero, fmt.Errorf("failed to acquire Azure identity: %w", err)
		}
		return withToken(token)
	default:
		return zero, fmt.Errorf("unsupported credential type %T", cred)
	}
}

func value[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func metadata(m map[string]*string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = value(v)
	}
	return out
}
