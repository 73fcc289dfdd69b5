// Package dispatch routes a parsed command to the storage client of its
// family.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/demoray/azure-storage-blob-client/internal/command"
	"github.com/demoray/azure-storage-blob-client/internal/credential"
	"github.com/demoray/azure-storage-blob-client/internal/docs"
	"github.com/demoray/azure-storage-blob-client/internal/storage"
	"github.com/demoray/azure-storage-blob-client/internal/utils"
)

// Target is the family-specific half of a parsed command. Account,
// Container, Queues, Datalake, Tables and Readme are the only
// implementations.
type Target interface {
	Family() storage.Family
	target()
}

// Account runs an operation against the account's blob service.
type Account struct {
	Run func(ctx context.Context, client storage.AccountClient) error
}

// Container runs an operation against one container.
type Container struct {
	Name string
	Run  func(ctx context.Context, client storage.ContainerClient) error
}

// Queues runs an operation against the queue service.
type Queues struct {
	Run func(ctx context.Context, client storage.QueueClient) error
}

// Datalake runs an operation against the datalake service.
type Datalake struct {
	Run func(ctx context.Context, client storage.DatalakeClient) error
}

// Tables runs an operation against the table service.
type Tables struct {
	Run func(ctx context.Context, client storage.TableClient) error
}

// Readme prints the documentation of the tree rooted at Root.
type Readme struct {
	Root    *command.Node
	Options docs.Options
}

func (Account) Family() storage.Family { return storage.FamilyAccount }
func (Container) Family() storage.Family { return storage.FamilyContainer }
func (Queues) Family() storage.Family { return storage.FamilyQueues }
func (Datalake) Family() storage.Family { return storage.FamilyDatalake }
func (Tables) Family() storage.Family { return storage.FamilyTables }
func (Readme) Family() storage.Family { return storage.FamilyReadme }

func (Account) target() {}
func (Container) target() {}
func (Queues) target() {}
func (Datalake) target() {}
func (Tables) target() {}
func (Readme) target() {}

// Invocation holds the global arguments of one run.
type Invocation struct {
	Account   string
	AccessKey credential.Secret
	// Path is the command path from the root to the selected leaf.
	Path []string
}

// Dispatcher resolves the credential for an invocation and hands the
// matching family client to the target.
type Dispatcher struct {
	factory    storage.Factory
	identity   credential.IdentityProvider
	invocation Invocation
	out        io.Writer
	logger     *slog.Logger
}

// New creates a dispatcher. A nil identity uses the default Azure identity
// chain; a nil logger discards.
func New(factory storage.Factory, identity credential.IdentityProvider, invocation Invocation, out io.Writer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{
		factory:    factory,
		identity:   identity,
		invocation: invocation,
		out:        out,
		logger:     logger,
	}
}

// Out returns the writer command output goes to.
func (d *Dispatcher) Out() io.Writer {
	return d.out
}

// Dispatch checks the account name, resolves the credential, builds the
// target's client and runs the target's operation. Readme skips the name
// check. Errors from either step are returned wrapped but
// otherwise unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, target Target) error {
	account := d.invocation.Account
	if _, ok := target.(Readme); !ok {
		if err := utils.ValidateAccountName(account); err != nil {
			return err
		}
	}

	cred, err := credential.Resolve(account, d.invocation.AccessKey, d.identity)
	if err != nil {
		return err
	}

	d.logger.Debug("dispatching command",
		"family", string(target.Family()),
		"credential", string(cred.Kind()),
		"path", strings.Join(d.invocation.Path, " "),
	)

	switch t := target.(type) {
	case Readme:
		_, err := io.WriteString(d.out, docs.Render(t.Root, t.Options))
		return err

	case Account:
		client, err := d.factory.Account(account, cred)
		if err != nil {
			return fmt.Errorf("failed to create account client: %w", err)
		}
		return run(ctx, t.Run, client)

	case Container:
		client, err := d.factory.Container(account, cred, t.Name)
		if err != nil {
			return fmt.Errorf("failed to create container client: %w", err)
		}
		return run(ctx, t.Run, client)

	case Queues:
		client, err := d.factory.Queues(account, cred)
		if err != nil {
			return fmt.Errorf("failed to create queue client: %w", err)
		}
		return run(ctx, t.Run, client)

	case Datalake:
		client, err := d.factory.Datalake(account, cred)
		if err != nil {
			return fmt.Errorf("failed to create datalake client: %w", err)
		}
		return run(ctx, t.Run, client)

	case Tables:
		client, err := d.factory.Tables(account, cred)
		if err != nil {
			return fmt.Errorf("failed to create table client: %w", err)
		}
		return run(ctx, t.Run, client)

	default:
		return fmt.Errorf("unsupported command family %q", target.Family())
	}
}

func run[C any](ctx context.Context, fn func(context.Context, C) error, client C) error {
	if fn == nil {
		return errors.New("command has no operation")
	}
	return fn(ctx, client)
}

type contextKey struct{}

// WithDispatcher returns a context carrying d.
func WithDispatcher(ctx context.Context, d *Dispatcher) context.Context {
	return context.WithValue(ctx, contextKey{}, d)
}

// FromContext returns the dispatcher stored by WithDispatcher.
func FromContext(ctx context.Context) (*Dispatcher, error) {
	if ctx != nil {
		if d, ok := ctx.Value(contextKey{}).(*Dispatcher); ok && d != nil {
			return d, nil
		}
	}
	return nil, errors.New("command was not initialized")
}
