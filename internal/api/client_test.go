package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demoray/azure-storage-blob-client/internal/config"
	"github.com/demoray/azure-storage-blob-client/internal/credential"
	"github.com/demoray/azure-storage-blob-client/internal/utils"
)

const testKey = "c2VjcmV0LWtleS1mb3ItdGVzdHM="

type fakeTransport struct {
	mu       sync.Mutex
	requests []*http.Request
	respond  func(req *http.Request) *http.Response
}

func (f *fakeTransport) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	resp := f.respond(req)
	resp.Request = req
	if resp.Header == nil {
		resp.Header = http.Header{}
	}
	if resp.Body == nil {
		resp.Body = io.NopCloser(strings.NewReader(""))
	}
	return resp, nil
}

func (f *fakeTransport) last() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func respond(status int, headers map[string]string, body string) func(*http.Request) *http.Response {
	return func(*http.Request) *http.Response {
		h := http.Header{}
		for k, v := range headers {
			h.Set(k, v)
		}
		return &http.Response{StatusCode: status, Header: h, Body: io.NopCloser(strings.NewReader(body))}
	}
}

func newTestClient(t *testing.T, handler func(*http.Request) *http.Response) (*Client, *fakeTransport) {
	t.Helper()
	transport := &fakeTransport{respond: handler}
	client := NewClient(config.StorageConfig{})
	client.Transport = transport
	return client, transport
}

func keyCredential() credential.Credential {
	return credential.KeyBased{Account: "acct1", Key: credential.NewSecret(testKey)}
}

type staticToken struct{}

func (staticToken) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "tok", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func TestServiceURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		service Service
		want    string
	}{
		{name: "public blob", service: ServiceBlob, want: "https://acct1.blob.core.windows.net/"},
		{name: "public dfs", service: ServiceDFS, want: "https://acct1.dfs.core.windows.net/"},
		{
			name:    "sovereign cloud",
			cfg:     config.StorageConfig{EndpointSuffix: "core.chinacloudapi.cn"},
			service: ServiceQueue,
			want:    "https://acct1.queue.core.chinacloudapi.cn/",
		},
		{
			name:    "override",
			cfg:     config.StorageConfig{Endpoints: config.Endpoints{Table: "http://127.0.0.1:10002/{account}"}},
			service: ServiceTable,
			want:    "http://127.0.0.1:10002/acct1",
		},
		{
			name:    "override for another service is ignored",
			cfg:     config.StorageConfig{Endpoints: config.Endpoints{Blob: "http://127.0.0.1:10000/{account}"}},
			service: ServiceTable,
			want:    "https://acct1.table.core.windows.net/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewClient(tt.cfg).ServiceURL(tt.service, "acct1"))
		})
	}
}

type unknownCredential struct {
	credential.Credential
}

func TestConnectErrors(t *testing.T) {
	client := NewClient(config.StorageConfig{})

	badKey := credential.KeyBased{Account: "acct1", Key: credential.NewSecret("not base64!")}
	_, err := client.Account("acct1", badKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid access key")
	assert.NotContains(t, err.Error(), "not base64!")

	failing := credential.IdentityBased{Provider: func() (azcore.TokenCredential, error) {
		return nil, errors.New("no identity available")
	}}
	_, err = client.Queues("acct1", failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to acquire Azure identity")
	assert.Contains(t, err.Error(), "no identity available")

	_, err = client.Tables("acct1", unknownCredential{})
	assert.EqualError(t, err, "unsupported credential type api.unknownCredential")
}

func TestFactoryBuildsEveryFamilyWithoutNetwork(t *testing.T) {
	client, transport := newTestClient(t, respond(http.StatusOK, nil, ""))
	cred := keyCredential()

	_, err := client.Account("acct1", cred)
	require.NoError(t, err)
	_, err = client.Container("acct1", cred, "c1")
	require.NoError(t, err)
	_, err = client.Queues("acct1", cred)
	require.NoError(t, err)
	_, err = client.Datalake("acct1", cred)
	require.NoError(t, err)
	_, err = client.Tables("acct1", cred)
	require.NoError(t, err)

	assert.Empty(t, transport.requests)
}

func TestAccountInfoWithSharedKey(t *testing.T) {
	client, transport := newTestClient(t, respond(http.StatusOK, map[string]string{
		"x-ms-sku-name":       "Standard_LRS",
		"x-ms-account-kind":   "StorageV2",
		"x-ms-is-hns-enabled": "true",
	}, ""))

	account, err := client.Account("acct1", keyCredential())
	require.NoError(t, err)

	info, err := account.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acct1", info.Account)
	assert.Equal(t, "Standard_LRS", info.SKUName)
	assert.Equal(t, "StorageV2", info.AccountKind)
	assert.True(t, info.IsHierarchicalNamespaceEnabled)

	req := transport.last()
	assert.Equal(t, "acct1.blob.core.windows.net", req.URL.Host)
	assert.True(t, strings.HasPrefix(req.Header.Get("Authorization"), "SharedKey acct1:"))
	assert.Contains(t, req.Header.Get("User-Agent"), ApplicationID)
}

func TestAccountInfoWithIdentity(t *testing.T) {
	client, transport := newTestClient(t, respond(http.StatusOK, map[string]string{"x-ms-sku-name": "Premium_LRS"}, ""))

	identity := credential.IdentityBased{Provider: func() (azcore.TokenCredential, error) {
		return staticToken{}, nil
	}}
	account, err := client.Account("acct1", identity)
	require.NoError(t, err)

	info, err := account.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Premium_LRS", info.SKUName)
	assert.Equal(t, "Bearer tok", transport.last().Header.Get("Authorization"))
}

func TestContainerExists(t *testing.T) {
	status := http.StatusOK
	client, _ := newTestClient(t, func(req *http.Request) *http.Response {
		return respond(status, map[string]string{"x-ms-error-code": "ContainerNotFound"}, "")(req)
	})

	container, err := client.Container("acct1", keyCredential(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", container.Name())

	exists, err := container.Exists(context.Background())
	require.NoError(t, err)
	assert.True(t, exists)

	status = http.StatusNotFound
	exists, err = container.Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = container.Properties(context.Background())
	require.Error(t, err)
	assert.True(t, utils.IsNotFoundError(err))
	assert.Contains(t, err.Error(), "failed to get container c1")
}

func TestQueueProperties(t *testing.T) {
	client, transport := newTestClient(t, respond(http.StatusOK, map[string]string{
		"x-ms-approximate-messages-count": "5",
		"x-ms-meta-owner":                 "team",
	}, ""))

	queues, err := client.Queues("acct1", keyCredential())
	require.NoError(t, err)

	props, err := queues.QueueProperties(context.Background(), "jobs")
	require.NoError(t, err)
	assert.Equal(t, "jobs", props.Name)
	assert.Equal(t, int32(5), props.ApproximateMessagesCount)
	assert.Len(t, props.Metadata, 1)

	req := transport.last()
	assert.Equal(t, "acct1.queue.core.windows.net", req.URL.Host)
	assert.Equal(t, "/jobs", req.URL.Path)
}

func TestTableQuery(t *testing.T) {
	body := `{"value":[
		{"odata.etag":"W/\"1\"","PartitionKey":"p1","RowKey":"r1","Count":3},
		{"odata.etag":"W/\"2\"","PartitionKey":"p1","RowKey":"r2","Count":4}
	]}`
	client, transport := newTestClient(t, respond(http.StatusOK, map[string]string{"Content-Type": "application/json"}, body))

	tables, err := client.Tables("acct1", keyCredential())
	require.NoError(t, err)

	entities, err := tables.Query(context.Background(), "people", "PartitionKey eq 'p1'", 0)
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "p1", entities[0].PartitionKey())
	assert.Equal(t, "r2", entities[1].RowKey())
	assert.NotContains(t, entities[0], "odata.etag")
	assert.Equal(t, "PartitionKey eq 'p1'", transport.last().URL.Query().Get("$filter"))

	limited, err := tables.Query(context.Background(), "people", "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
	assert.Equal(t, "1", transport.last().URL.Query().Get("$top"))
}

func TestDecodeEntity(t *testing.T) {
	entity, err := decodeEntity([]byte(`{"odata.metadata":"x","PartitionKey":"p","RowKey":"r","Name":"n","Name@odata.type":"Edm.String"}`))
	require.NoError(t, err)
	assert.Len(t, entity, 3)
	assert.Equal(t, "n", entity["Name"])

	_, err = decodeEntity([]byte(`not json`))
	assert.Error(t, err)
}
