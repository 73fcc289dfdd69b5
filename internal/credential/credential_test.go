package credential

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/demoray/azure-storage-blob-client/internal/utils"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		account  string
		key      string
		wantKind Kind
		wantErr  bool
	}{
		{name: "key present", account: "acct1", key: "c2VjcmV0", wantKind: KindKey},
		{name: "key absent", account: "acct1", wantKind: KindIdentity},
		{name: "key absent without account", account: "", wantKind: KindIdentity},
		{name: "key present without account", account: "", key: "c2VjcmV0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred, err := Resolve(tt.account, NewSecret(tt.key), nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, utils.IsValidationError(err))
				assert.Nil(t, cred)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, cred.Kind())
		})
	}
}

func TestResolveKeyBasedCarriesAccountAndKey(t *testing.T) {
	cred, err := Resolve("acct1", NewSecret("s3cr3t"), nil)
	require.NoError(t, err)

	key, ok := cred.(KeyBased)
	require.True(t, ok, "got %T", cred)
	assert.Equal(t, "acct1", key.Account)
	assert.Equal(t, "s3cr3t", key.Key.Reveal())
}

func TestResolveIdentityBasedDoesNotCallProvider(t *testing.T) {
	calls := 0
	provider := func() (azcore.TokenCredential, error) {
		calls++
		return nil, errors.New("no identity available")
	}

	cred, err := Resolve("acct1", Secret{}, provider)
	require.NoError(t, err)
	assert.Equal(t, 0, calls)

	identity, ok := cred.(IdentityBased)
	require.True(t, ok, "got %T", cred)

	_, err = identity.Token()
	assert.EqualError(t, err, "no identity available")
	assert.Equal(t, 1, calls)
}

func TestSecretNeverFormatsValue(t *testing.T) {
	const raw = "super-secret-key=="
	s := NewSecret(raw)

	outputs := []string{
		s.String(),
		fmt.Sprint(s),
		fmt.Sprintf("%v", s),
		fmt.Sprintf("%+v", s),
		fmt.Sprintf("%#v", s),
		fmt.Sprintf("%s", s),
		fmt.Sprintf("%q", s),
		fmt.Sprintf("%x", s),
		fmt.Sprintf("%v", KeyBased{Account: "acct1", Key: s}),
		fmt.Sprintf("%+v", KeyBased{Account: "acct1", Key: s}),
	}

	jsonOut, err := json.Marshal(KeyBased{Account: "acct1", Key: s})
	require.NoError(t, err)
	outputs = append(outputs, string(jsonOut))

	yamlOut, err := yaml.Marshal(map[string]Secret{"key": s})
	require.NoError(t, err)
	outputs = append(outputs, string(yamlOut))

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("resolved", "key", s)
	outputs = append(outputs, buf.String())

	for _, out := range outputs {
		assert.NotContains(t, out, raw)
	}
	assert.Contains(t, buf.String(), redacted)
}

func TestSecretZero(t *testing.T) {
	assert.True(t, Secret{}.IsZero())
	assert.True(t, NewSecret("").IsZero())
	assert.False(t, NewSecret("x").IsZero())
	assert.Equal(t, "", Secret{}.String())
}
