package command

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPositional(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("account", "", "")
	flags.Bool("debug", false, "")
	flags.StringP("output", "o", "table", "")
	flags.BoolP("verbose", "v", false, "")

	tests := []struct {
		name      string
		args      []string
		wantValue string
		wantRest  []string
		wantOK    bool
	}{
		{name: "leading positional", args: []string{"c1", "list"}, wantValue: "c1", wantRest: []string{"list"}, wantOK: true},
		{name: "flag with value", args: []string{"--account", "a1", "c1", "list"}, wantValue: "c1", wantRest: []string{"--account", "a1", "list"}, wantOK: true},
		{name: "flag with equals", args: []string{"--account=a1", "c1"}, wantValue: "c1", wantRest: []string{"--account=a1"}, wantOK: true},
		{name: "bool flag", args: []string{"--debug", "c1", "list"}, wantValue: "c1", wantRest: []string{"--debug", "list"}, wantOK: true},
		{name: "shorthand with value", args: []string{"-o", "json", "c1"}, wantValue: "c1", wantRest: []string{"-o", "json"}, wantOK: true},
		{name: "bool shorthand", args: []string{"-v", "c1"}, wantValue: "c1", wantRest: []string{"-v"}, wantOK: true},
		{name: "unknown flag takes value", args: []string{"--prefix", "p", "c1"}, wantValue: "c1", wantRest: []string{"--prefix", "p"}, wantOK: true},
		{name: "terminator", args: []string{"--", "-odd-name", "list"}, wantValue: "-odd-name", wantRest: []string{"list"}, wantOK: true},
		{name: "only flags", args: []string{"--debug"}, wantRest: []string{"--debug"}},
		{name: "empty", args: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, rest, ok := SplitPositional(flags, tt.args)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantValue, value)
			if tt.wantOK {
				assert.Equal(t, tt.wantRest, rest)
			}
		})
	}
}

func TestSplitPositionalDoesNotMutateArgs(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	args := []string{"c1", "list", "--prefix", "x"}

	_, _, _ = SplitPositional(flags, args)
	assert.Equal(t, []string{"c1", "list", "--prefix", "x"}, args)
}

type forwardHarness struct {
	root      *cobra.Command
	out       *bytes.Buffer
	account   string
	captured  string
	captureFn func(string) error
	preRunFor []string
	preRunErr error
	ran       []string
	ranArgs   [][]string
	prefix    string
}

func newForwardHarness() *forwardHarness {
	h := &forwardHarness{out: &bytes.Buffer{}}

	root := &cobra.Command{
		Use:           "tool",
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.DisableFlagParsing {
				return nil
			}
			h.preRunFor = append(h.preRunFor, cmd.CommandPath())
			return h.preRunErr
		},
	}
	root.PersistentFlags().StringVar(&h.account, "account", "", "account name")
	root.PersistentFlags().Bool("debug", false, "debug")

	record := func(cmd *cobra.Command, args []string) error {
		h.ran = append(h.ran, cmd.CommandPath())
		h.ranArgs = append(h.ranArgs, args)
		return nil
	}

	container := &cobra.Command{
		Use:                "container <container-name>",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Forward(cmd, args, func(value string) error {
				if h.captureFn != nil {
					if err := h.captureFn(value); err != nil {
						return err
					}
				}
				h.captured = value
				return nil
			})
		},
	}
	list := &cobra.Command{Use: "list", Short: "List blobs", Args: cobra.NoArgs, RunE: record}
	list.Flags().StringVar(&h.prefix, "prefix", "", "name prefix")

	blob := &cobra.Command{Use: "blob", Short: "Blob operations"}
	blob.AddCommand(&cobra.Command{Use: "upload <blob-name> <file>", Short: "Upload a blob", Args: cobra.ExactArgs(2), RunE: record})

	container.AddCommand(list, &cobra.Command{Use: "exists", Args: cobra.NoArgs, RunE: record}, blob)
	root.AddCommand(container)
	root.SetOut(h.out)
	root.SetErr(h.out)

	h.root = root
	return h
}

func (h *forwardHarness) run(args ...string) error {
	h.root.SetArgs(Route(h.root, args))
	return h.root.Execute()
}

func TestForwardRunsLeaf(t *testing.T) {
	h := newForwardHarness()

	require.NoError(t, h.run("container", "c1", "exists"))
	assert.Equal(t, "c1", h.captured)
	assert.Equal(t, []string{"tool container exists"}, h.ran)
	assert.Equal(t, []string{"tool container exists"}, h.preRunFor)
}

func TestForwardParsesFlagsAroundPositional(t *testing.T) {
	h := newForwardHarness()

	require.NoError(t, h.run("--account", "acct1", "container", "--debug", "c1", "list", "--prefix", "logs/"))
	assert.Equal(t, "c1", h.captured)
	assert.Equal(t, "acct1", h.account)
	assert.Equal(t, "logs/", h.prefix)
	assert.Equal(t, []string{"tool container list"}, h.ran)
}

func TestForwardNestedLeafReceivesPositionals(t *testing.T) {
	h := newForwardHarness()

	require.NoError(t, h.run("container", "c1", "blob", "upload", "b1", "./file.txt"))
	assert.Equal(t, []string{"tool container blob upload"}, h.ran)
	assert.Equal(t, [][]string{{"b1", "./file.txt"}}, h.ranArgs)
}

func TestForwardPositionalNamedLikeSubcommand(t *testing.T) {
	h := newForwardHarness()

	require.NoError(t, h.run("container", "list", "list"))
	assert.Equal(t, "list", h.captured)
	assert.Equal(t, []string{"tool container list"}, h.ran)
}

func TestRoute(t *testing.T) {
	root := newForwardHarness().root

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "forwarder", args: []string{"container", "c1", "list"}, want: []string{"container", "--", "c1", "list"}},
		{name: "flags before", args: []string{"--account", "a", "container", "--debug", "c1"}, want: []string{"--account", "a", "container", "--debug", "--", "c1"}},
		{name: "already terminated", args: []string{"container", "--", "c1", "list"}, want: []string{"container", "--", "c1", "list"}},
		{name: "help only", args: []string{"container", "-h"}, want: []string{"container", "-h"}},
		{name: "not a forwarder", args: []string{"help", "container"}, want: []string{"help", "container"}},
		{name: "unknown", args: []string{"nope", "c1"}, want: []string{"nope", "c1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(root, tt.args))
		})
	}
}

func TestForwardErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing positional", args: []string{"container"}, wantErr: "requires a <container-name> argument"},
		{name: "missing subcommand", args: []string{"container", "c1"}, wantErr: "requires a subcommand"},
		{name: "missing group subcommand", args: []string{"container", "c1", "blob"}, wantErr: `"tool container <container-name> blob" requires a subcommand`},
		{name: "unknown group subcommand", args: []string{"container", "c1", "blob", "upload2"}, wantErr: `unknown command "upload2"`},
		{name: "unknown subcommand", args: []string{"container", "c1", "lst"}, wantErr: `unknown command "lst"`},
		{name: "wrong arg count", args: []string{"container", "c1", "blob", "upload", "b1"}, wantErr: "accepts 2 arg(s)"},
		{name: "unknown flag", args: []string{"container", "c1", "list", "--nope"}, wantErr: "unknown flag: --nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newForwardHarness()

			err := h.run(tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, h.ran)
			assert.Empty(t, h.preRunFor)
		})
	}
}

func TestForwardUnknownSubcommandSuggests(t *testing.T) {
	h := newForwardHarness()

	err := h.run("container", "c1", "lst")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Did you mean this?")
	assert.Contains(t, err.Error(), "list")
}

func TestForwardParseErrorPrintsLeafUsageOnce(t *testing.T) {
	h := newForwardHarness()

	require.Error(t, h.run("container", "c1", "blob", "upload", "b1"))
	assert.Contains(t, h.out.String(), "tool container blob upload <blob-name> <file>")
	assert.Equal(t, 1, bytes.Count(h.out.Bytes(), []byte("Usage:")))
}

func TestForwardHelp(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "leaf", args: []string{"container", "c1", "list", "--help"}, want: "List blobs"},
		{name: "group", args: []string{"container", "c1", "blob", "--help"}, want: "Blob operations"},
		{name: "forwarder", args: []string{"container", "-h"}, want: "tool container <container-name>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newForwardHarness()

			require.NoError(t, h.run(tt.args...))
			assert.Contains(t, h.out.String(), tt.want)
			assert.Empty(t, h.ran)
		})
	}
}

func TestForwardCaptureErrorStopsBeforePreRun(t *testing.T) {
	h := newForwardHarness()
	h.captureFn = func(string) error { return errors.New("bad container name") }

	err := h.run("container", "Bad_Name", "exists")
	assert.EqualError(t, err, "bad container name")
	assert.Empty(t, h.preRunFor)
	assert.Empty(t, h.ran)
}

func TestForwardPreRunErrorStopsLeaf(t *testing.T) {
	h := newForwardHarness()
	h.preRunErr = errors.New("account is required")

	err := h.run("container", "c1", "exists")
	assert.EqualError(t, err, "account is required")
	assert.Equal(t, []string{"tool container exists"}, h.preRunFor)
	assert.Empty(t, h.ran)
}
