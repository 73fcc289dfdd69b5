package command

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGroupTree() (*cobra.Command, *[]string, *bytes.Buffer) {
	var ran []string
	out := &bytes.Buffer{}

	root := &cobra.Command{Use: "tool", SilenceErrors: true}
	queues := &cobra.Command{Use: "queues", Short: "Queue commands"}
	queues.AddCommand(&cobra.Command{
		Use:  "list",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ran = append(ran, cmd.CommandPath())
			return nil
		},
	})
	root.AddCommand(queues)
	RequireSubcommand(root)
	RequireSubcommand(queues)
	root.SetOut(out)
	root.SetErr(out)

	return root, &ran, out
}

func TestRequireSubcommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "root alone", args: []string{}, wantErr: `"tool" requires a subcommand`},
		{name: "group alone", args: []string{"queues"}, wantErr: `"tool queues" requires a subcommand`},
		{name: "unknown at root", args: []string{"nope"}, wantErr: `unknown command "nope" for "tool"`},
		{name: "typo in group", args: []string{"queues", "lst"}, wantErr: "Did you mean this?\n\tlist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, ran, out := newGroupTree()
			root.SetArgs(tt.args)

			err := root.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, out.String(), "Usage:")
			assert.Empty(t, *ran)
		})
	}
}

func TestRequireSubcommandKeepsLeavesAndHelp(t *testing.T) {
	root, ran, out := newGroupTree()

	root.SetArgs([]string{"queues", "list"})
	require.NoError(t, root.Execute())
	assert.Equal(t, []string{"tool queues list"}, *ran)

	root.SetArgs([]string{"queues", "--help"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Queue commands")
}
