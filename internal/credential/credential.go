// Package credential selects how the CLI authenticates against the storage
// account: with an explicit access key, or through the ambient Azure identity
// chain when no key is configured.
package credential

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/demoray/azure-storage-blob-client/internal/utils"
)

// Kind names a credential strategy.
type Kind string

const (
	KindKey      Kind = "key"
	KindIdentity Kind = "identity"
)

// Credential is the resolved authentication strategy. It is one of KeyBased
// or IdentityBased; the unexported method keeps the set closed.
type Credential interface {
	Kind() Kind
	sealed()
}

// IdentityProvider acquires a token credential on demand.
type IdentityProvider func() (azcore.TokenCredential, error)

// KeyBased authenticates with the account's shared access key.
type KeyBased struct {
	Account string
	Key     Secret
}

// Kind returns KindKey.
func (KeyBased) Kind() Kind { return KindKey }

func (KeyBased) sealed() {}

// IdentityBased defers to the ambient identity chain (environment, workload
// identity, managed identity, Azure CLI and so on).
type IdentityBased struct {
	Provider IdentityProvider
}

// Kind returns KindIdentity.
func (IdentityBased) Kind() Kind { return KindIdentity }

func (IdentityBased) sealed() {}

// Token acquires the token credential from the provider.
func (c IdentityBased) Token() (azcore.TokenCredential, error) {
	provider := c.Provider
	if provider == nil {
		provider = DefaultIdentity
	}
	return provider()
}

// DefaultIdentity builds azidentity's DefaultAzureCredential. Construction
// performs no network I/O; tokens are fetched on the first request.
func DefaultIdentity() (azcore.TokenCredential, error) {
	return azidentity.NewDefaultAzureCredential(nil)
}

// Resolve picks the strategy purely from whether key is present. A present
// key always yields KeyBased and an absent key always yields IdentityBased;
// there is no fallback between the two.
func Resolve(account string, key Secret, provider IdentityProvider) (Credential, error) {
	if key.IsZero() {
		if provider == nil {
			provider = DefaultIdentity
		}
		return IdentityBased{Provider: provider}, nil
	}

	if err := utils.ValidateRequired(account, "account"); err != nil {
		return nil, err
	}

	return KeyBased{Account: account, Key: key}, nil
}
