package dispatch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demoray/azure-storage-blob-client/internal/command"
	"github.com/demoray/azure-storage-blob-client/internal/credential"
	"github.com/demoray/azure-storage-blob-client/internal/docs"
	"github.com/demoray/azure-storage-blob-client/internal/logging"
	"github.com/demoray/azure-storage-blob-client/internal/storage"
	"github.com/demoray/azure-storage-blob-client/internal/storage/storagetest"
	"github.com/demoray/azure-storage-blob-client/internal/utils"
)

const secretValue = "dGhpcyBpcyBub3QgYSByZWFsIGtleQ=="

func noIdentity() (azcore.TokenCredential, error) {
	return nil, errors.New("identity must not be acquired")
}

func newDispatcher(factory storage.Factory, key string, out *bytes.Buffer, log *bytes.Buffer) *Dispatcher {
	inv := Invocation{Account: "acct1", AccessKey: credential.NewSecret(key), Path: []string{"azure-storage-cli", "container", "exists"}}
	return New(factory, noIdentity, inv, out, logging.New(log, true, logging.FormatJSON))
}

func TestDispatchContainerWithKey(t *testing.T) {
	factory := storagetest.NewFactory()
	factory.AddContainer("c1", nil)
	var out, log bytes.Buffer

	var exists bool
	err := newDispatcher(factory, secretValue, &out, &log).Dispatch(context.Background(), Container{
		Name: "c1",
		Run: func(ctx context.Context, client storage.ContainerClient) error {
			var err error
			exists, err = client.Exists(ctx)
			return err
		},
	})
	require.NoError(t, err)
	assert.True(t, exists)

	builds := factory.Builds()
	require.Len(t, builds, 1)
	assert.Equal(t, storage.FamilyContainer, builds[0].Family)
	assert.Equal(t, "acct1", builds[0].Account)
	assert.Equal(t, "c1", builds[0].Name)
	assert.Equal(t, credential.KeyBased{Account: "acct1", Key: credential.NewSecret(secretValue)}, builds[0].Credential)
	assert.Equal(t, []string{"Exists c1"}, factory.Calls())
	assert.Empty(t, out.String())

	assert.Contains(t, log.String(), `"family":"container"`)
	assert.Contains(t, log.String(), `"credential":"key"`)
	assert.NotContains(t, log.String(), secretValue)
	assert.NotContains(t, log.String(), "acct1")
}

func TestDispatchFamiliesBuildMatchingClient(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		family storage.Family
	}{
		{
			name:   "account",
			target: Account{Run: func(ctx context.Context, c storage.AccountClient) error { _, err := c.Info(ctx); return err }},
			family: storage.FamilyAccount,
		},
		{
			name:   "queues",
			target: Queues{Run: func(ctx context.Context, c storage.QueueClient) error { _, err := c.ListQueues(ctx, ""); return err }},
			family: storage.FamilyQueues,
		},
		{
			name:   "datalake",
			target: Datalake{Run: func(ctx context.Context, c storage.DatalakeClient) error { _, err := c.ListFileSystems(ctx, ""); return err }},
			family: storage.FamilyDatalake,
		},
		{
			name:   "tables",
			target: Tables{Run: func(ctx context.Context, c storage.TableClient) error { _, err := c.ListTables(ctx, ""); return err }},
			family: storage.FamilyTables,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := storagetest.NewFactory()
			var out, log bytes.Buffer

			require.NoError(t, newDispatcher(factory, secretValue, &out, &log).Dispatch(context.Background(), tt.target))

			builds := factory.Builds()
			require.Len(t, builds, 1)
			assert.Equal(t, tt.family, builds[0].Family)
			assert.Equal(t, tt.family, tt.target.Family())
			assert.Len(t, factory.Calls(), 1)
		})
	}
}

func TestDispatchWithoutKeyUsesIdentity(t *testing.T) {
	factory := storagetest.NewFactory()
	var out, log bytes.Buffer

	err := newDispatcher(factory, "", &out, &log).Dispatch(context.Background(), Queues{
		Run: func(context.Context, storage.QueueClient) error { return nil },
	})
	require.NoError(t, err)

	builds := factory.Builds()
	require.Len(t, builds, 1)
	_, ok := builds[0].Credential.(credential.IdentityBased)
	assert.True(t, ok, "got %T", builds[0].Credential)
	assert.Contains(t, log.String(), `"credential":"identity"`)
}

func TestDispatchReadme(t *testing.T) {
	factory := storagetest.NewFactory()
	var out, log bytes.Buffer
	root := &command.Node{
		Name:     "azure-storage-cli",
		Usage:    "Usage: azure-storage-cli <COMMAND>",
		Children: []*command.Node{{Name: "account", Usage: "Usage: azure-storage-cli account"}},
	}

	err := newDispatcher(factory, "", &out, &log).Dispatch(context.Background(), Readme{Root: root, Options: docs.DefaultOptions()})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out.String(), "# Azure Storage CLI\n"))
	assert.Contains(t, out.String(), "## azs account")
	assert.Empty(t, factory.Builds(), "readme must not build a client")
	assert.Contains(t, log.String(), `"family":"readme"`)
}

func TestDispatchPropagatesErrors(t *testing.T) {
	var out, log bytes.Buffer

	factory := storagetest.NewFactory()
	factory.Err = errors.New("boom")
	err := newDispatcher(factory, secretValue, &out, &log).Dispatch(context.Background(), Tables{
		Run: func(context.Context, storage.TableClient) error { return nil },
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create table client")
	assert.Contains(t, err.Error(), "boom")

	factory = storagetest.NewFactory()
	err = newDispatcher(factory, secretValue, &out, &log).Dispatch(context.Background(), Container{
		Name: "missing",
		Run: func(ctx context.Context, c storage.ContainerClient) error {
			_, err := c.Properties(ctx)
			return err
		},
	})
	require.Error(t, err)
	assert.True(t, utils.IsNotFoundError(err))

	err = newDispatcher(factory, secretValue, &out, &log).Dispatch(context.Background(), Account{})
	assert.EqualError(t, err, "command has no operation")
}

func TestDispatchKeyWithoutAccount(t *testing.T) {
	factory := storagetest.NewFactory()
	var out bytes.Buffer
	d := New(factory, noIdentity, Invocation{AccessKey: credential.NewSecret(secretValue)}, &out, nil)

	err := d.Dispatch(context.Background(), Account{Run: func(context.Context, storage.AccountClient) error { return nil }})
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
	assert.Empty(t, factory.Builds())
}

func TestDispatchChecksAccountName(t *testing.T) {
	factory := storagetest.NewFactory()
	var out bytes.Buffer
	d := New(factory, noIdentity, Invocation{Account: "My_Account", AccessKey: credential.NewSecret(secretValue)}, &out, nil)

	err := d.Dispatch(context.Background(), Account{Run: func(context.Context, storage.AccountClient) error { return nil }})
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
	assert.NotContains(t, err.Error(), "My_Account")
	assert.Empty(t, factory.Builds())

	root := &command.Node{Name: "azure-storage-cli", Usage: "Usage: azure-storage-cli <COMMAND>"}
	require.NoError(t, d.Dispatch(context.Background(), Readme{Root: root, Options: docs.DefaultOptions()}))
	assert.Contains(t, out.String(), "# Azure Storage CLI")
}

func TestContext(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.Error(t, err)

	d := New(storagetest.NewFactory(), nil, Invocation{Account: "acct1"}, &bytes.Buffer{}, nil)
	got, err := FromContext(WithDispatcher(context.Background(), d))
	require.NoError(t, err)
	assert.Same(t, d, got)
}
