package command

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(*cobra.Command, []string) error { return nil }

func testTree() *cobra.Command {
	root := &cobra.Command{Use: "tool", Short: "A tool"}

	group := &cobra.Command{Use: "container <container-name>", Short: "Containers", RunE: noop}
	group.AddCommand(
		&cobra.Command{Use: "list", Short: "List things", RunE: noop},
		&cobra.Command{Use: "create", Short: "Create things", RunE: noop},
	)
	blob := &cobra.Command{Use: "blob", Short: "Blobs"}
	blob.AddCommand(&cobra.Command{Use: "upload <blob-name> <file>", Short: "Upload", RunE: noop})
	group.AddCommand(blob)

	root.AddCommand(
		group,
		&cobra.Command{Use: "queues [flags]", Short: "Queues", RunE: noop},
		&cobra.Command{Use: "readme", Short: "Docs", Hidden: true, RunE: noop},
	)
	return root
}

func TestPositionals(t *testing.T) {
	tests := []struct {
		use  string
		want []string
	}{
		{use: "list", want: nil},
		{use: "container <container-name>", want: []string{"container-name"}},
		{use: "upload <blob-name> <file>", want: []string{"blob-name", "file"}},
		{use: "download <blob-name> [file]", want: []string{"blob-name", "file"}},
		{use: "send [flags] <queue-name> <message>", want: []string{"queue-name", "message"}},
		{use: "tool [command]", want: nil},
		{use: "put <paths...>", want: []string{"paths"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.want, Positionals(tt.use))
		})
	}
}

func TestBuild(t *testing.T) {
	cobra.EnableCommandSorting = false
	defer func() { cobra.EnableCommandSorting = true }()

	root := Build(testTree())

	assert.Equal(t, "tool", root.Name)
	assert.False(t, root.Hidden)

	var names []string
	for _, child := range root.Children {
		names = append(names, child.Name)
	}
	assert.Equal(t, []string{"container", "queues", "readme"}, names)

	container := root.Child("container")
	require.NotNil(t, container)
	assert.Equal(t, []string{"container-name"}, container.Positionals)
	assert.Equal(t, []string{"list", "create", "blob"}, childNames(container))

	readme := root.Child("readme")
	require.NotNil(t, readme)
	assert.True(t, readme.Hidden)

	upload := root.Find("container", "blob", "upload")
	require.NotNil(t, upload)
	assert.Equal(t, []string{"blob-name", "file"}, upload.Positionals)
	assert.True(t, upload.IsLeaf())
	assert.Contains(t, upload.Usage, "Upload")
	assert.Contains(t, upload.Usage, "Usage:")
	assert.NotRegexp(t, `\n$`, upload.Usage)
}

func TestBuildIncludesHelpCommandAsHidden(t *testing.T) {
	cmd := testTree()
	cmd.InitDefaultHelpCmd()

	root := Build(cmd)
	help := root.Child("help")
	require.NotNil(t, help)
	assert.True(t, help.Hidden)
}

func TestSegment(t *testing.T) {
	assert.Equal(t, "list", (&Node{Name: "list"}).Segment())
	assert.Equal(t, "container <CONTAINER-NAME>",
		(&Node{Name: "container", Positionals: []string{"container-name"}}).Segment())
	assert.Equal(t, "upload <BLOB-NAME> <FILE>",
		(&Node{Name: "upload", Positionals: []string{"blob-name", "file"}}).Segment())
}

func TestFind(t *testing.T) {
	root := Build(testTree())

	assert.Same(t, root, root.Find())
	assert.Nil(t, root.Find("container", "missing"))
	assert.Nil(t, root.Find("nope"))
	assert.Equal(t, "blob", root.Find("container", "blob").Name)
}

func TestWalkPreOrderWithPath(t *testing.T) {
	cobra.EnableCommandSorting = false
	defer func() { cobra.EnableCommandSorting = true }()

	root := Build(testTree())

	var visited []string
	var depths []int
	root.Walk(func(node *Node, path []*Node) bool {
		visited = append(visited, node.Name)
		depths = append(depths, len(path))
		assert.Same(t, node, path[len(path)-1])
		return true
	})

	assert.Equal(t, []string{"tool", "container", "list", "create", "blob", "upload", "queues", "readme"}, visited)
	assert.Equal(t, []int{1, 2, 3, 3, 3, 4, 2, 2}, depths)
}

func TestWalkSkipsChildrenWhenToldTo(t *testing.T) {
	root := Build(testTree())

	var visited []string
	root.Walk(func(node *Node, _ []*Node) bool {
		visited = append(visited, node.Name)
		return node.Name != "container"
	})

	assert.NotContains(t, visited, "list")
	assert.NotContains(t, visited, "upload")
	assert.Contains(t, visited, "queues")
}

func TestWalkPathsAreIndependent(t *testing.T) {
	root := Build(testTree())

	var paths [][]*Node
	root.Walk(func(_ *Node, path []*Node) bool {
		paths = append(paths, path)
		return true
	})

	for _, path := range paths {
		assert.Same(t, root, path[0])
		for i := 1; i < len(path); i++ {
			assert.NotNil(t, path[i-1].Child(path[i].Name), "broken path at %s", path[i].Name)
		}
	}
}

func TestLeaves(t *testing.T) {
	cobra.EnableCommandSorting = false
	defer func() { cobra.EnableCommandSorting = true }()

	leaves := Build(testTree()).Leaves()

	assert.Equal(t, [][]string{
		{"container", "list"},
		{"container", "create"},
		{"container", "blob", "upload"},
		{"queues"},
		{"readme"},
	}, leaves)
}

func childNames(n *Node) []string {
	var names []string
	for _, child := range n.Children {
		names = append(names, child.Name)
	}
	return names
}
