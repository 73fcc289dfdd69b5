package tables

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/demoray/azure-storage-blob-client/internal/command"
	"github.com/demoray/azure-storage-blob-client/internal/dispatch"
	"github.com/demoray/azure-storage-blob-client/internal/format"
	"github.com/demoray/azure-storage-blob-client/internal/models"
	"github.com/demoray/azure-storage-blob-client/internal/storage"
	"github.com/demoray/azure-storage-blob-client/internal/utils"
)

// TablesCmd represents the tables command
var TablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Table commands",
	Long: `Table commands for the storage account.

This command group manages tables and queries, reads and writes their
entities. Entities are given as JSON objects that carry PartitionKey and
RowKey, for example:

  {"PartitionKey":"p1","RowKey":"r1","Count":3}`,
}

// listCmd lists tables
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tables",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// createCmd creates a table
var createCmd = &cobra.Command{
	Use:   "create <table>",
	Short: "Create a table",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

// deleteCmd deletes a table
var deleteCmd = &cobra.Command{
	Use:   "delete <table>",
	Short: "Delete a table",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

// queryCmd queries entities
var queryCmd = &cobra.Command{
	Use:   "query <table>",
	Short: "Query entities",
	Long:  "List the entities of a table, optionally restricted by an OData filter such as \"PartitionKey eq 'p1'\"",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

// getCmd gets an entity
var getCmd = &cobra.Command{
	Use:   "get <table> <partition-key> <row-key>",
	Short: "Get an entity",
	Args:  cobra.ExactArgs(3),
	RunE:  runGet,
}

// insertCmd inserts an entity
var insertCmd = &cobra.Command{
	Use:   "insert <table> <entity-json>",
	Short: "Insert an entity",
	Long:  "Insert an entity. Fails if an entity with the same keys exists.",
	Args:  cobra.ExactArgs(2),
	RunE:  runInsert,
}

// upsertCmd inserts or replaces an entity
var upsertCmd = &cobra.Command{
	Use:   "upsert <table> <entity-json>",
	Short: "Insert or merge an entity",
	Args:  cobra.ExactArgs(2),
	RunE:  runUpsert,
}

// deleteEntityCmd deletes an entity
var deleteEntityCmd = &cobra.Command{
	Use:   "delete-entity <table> <partition-key> <row-key>",
	Short: "Delete an entity",
	Args:  cobra.ExactArgs(3),
	RunE:  runDeleteEntity,
}

// withTables runs fn against the account's table service.
func withTables(cmd *cobra.Command, fn func(ctx context.Context, client storage.TableClient, out io.Writer) error) error {
	d, err := dispatch.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	return d.Dispatch(cmd.Context(), dispatch.Tables{Run: func(ctx context.Context, client storage.TableClient) error {
		return fn(ctx, client, d.Out())
	}})
}

// tableArg validates the table name in args[0].
func tableArg(args []string) (string, error) {
	if err := utils.ValidateTableName(args[0]); err != nil {
		return "", err
	}
	return args[0], nil
}

// parseEntity decodes an entity given on the command line. Numbers keep
// their literal form.
func parseEntity(raw string) (models.Entity, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(raw)))
	decoder.UseNumber()

	var entity models.Entity
	if err := decoder.Decode(&entity); err != nil {
		return nil, utils.NewValidationError("entity", fmt.Sprintf("must be a JSON object: %v", err))
	}
	if entity == nil {
		return nil, utils.NewValidationError("entity", "must be a JSON object")
	}
	if entity.PartitionKey() == "" {
		return nil, utils.NewValidationError("entity", "PartitionKey is required")
	}
	if entity.RowKey() == "" {
		return nil, utils.NewValidationError("entity", "RowKey is required")
	}
	return entity, nil
}

func runList(cmd *cobra.Command, args []string) error {
	filter, _ := cmd.Flags().GetString("filter")

	return withTables(cmd, func(ctx context.Context, client storage.TableClient, out io.Writer) error {
		tables, err := client.ListTables(ctx, filter)
		if err != nil {
			return err
		}
		return format.Print(out, tables)
	})
}

func runCreate(cmd *cobra.Command, args []string) error {
	table, err := tableArg(args)
	if err != nil {
		return err
	}

	return withTables(cmd, func(ctx context.Context, client storage.TableClient, out io.Writer) error {
		if err := client.CreateTable(ctx, table); err != nil {
			return err
		}
		format.PrintSuccess(out, "✓ Table %s created", table)
		return nil
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	table, err := tableArg(args)
	if err != nil {
		return err
	}

	return withTables(cmd, func(ctx context.Context, client storage.TableClient, out io.Writer) error {
		if err := client.DeleteTable(ctx, table); err != nil {
			return err
		}
		format.PrintSuccess(out, "✓ Table %s deleted", table)
		return nil
	})
}

func runQuery(cmd *cobra.Command, args []string) error {
	table, err := tableArg(args)
	if err != nil {
		return err
	}
	filter, _ := cmd.Flags().GetString("filter")
	top, _ := cmd.Flags().GetInt32("top")
	if top < 0 {
		return utils.NewValidationError("top", "must not be negative")
	}

	return withTables(cmd, func(ctx context.Context, client storage.TableClient, out io.Writer) error {
		entities, err := client.Query(ctx, table, filter, top)
		if err != nil {
			return err
		}
		return format.Print(out, entities)
	})
}

func runGet(cmd *cobra.Command, args []string) error {
	table, err := tableArg(args)
	if err != nil {
		return err
	}
	partitionKey, rowKey := args[1], args[2]

	return withTables(cmd, func(ctx context.Context, client storage.TableClient, out io.Writer) error {
		entity, err := client.GetEntity(ctx, table, partitionKey, rowKey)
		if err != nil {
			return err
		}
		return format.Print(out, entity)
	})
}

func runInsert(cmd *cobra.Command, args []string) error {
	table, err := tableArg(args)
	if err != nil {
		return err
	}
	entity, err := parseEntity(args[1])
	if err != nil {
		return err
	}

	return withTables(cmd, func(ctx context.Context, client storage.TableClient, out io.Writer) error {
		if err := client.InsertEntity(ctx, table, entity); err != nil {
			return err
		}
		format.PrintSuccess(out, "✓ Entity %s/%s inserted into %s", entity.PartitionKey(), entity.RowKey(), table)
		return nil
	})
}

func runUpsert(cmd *cobra.Command, args []string) error {
	table, err := tableArg(args)
	if err != nil {
		return err
	}
	entity, err := parseEntity(args[1])
	if err != nil {
		return err
	}

	return withTables(cmd, func(ctx context.Context, client storage.TableClient, out io.Writer) error {
		if err := client.UpsertEntity(ctx, table, entity); err != nil {
			return err
		}
		format.PrintSuccess(out, "✓ Entity %s/%s upserted into %s", entity.PartitionKey(), entity.RowKey(), table)
		return nil
	})
}

func runDeleteEntity(cmd *cobra.Command, args []string) error {
	table, err := tableArg(args)
	if err != nil {
		return err
	}
	partitionKey, rowKey := args[1], args[2]

	return withTables(cmd, func(ctx context.Context, client storage.TableClient, out io.Writer) error {
		if err := client.DeleteEntity(ctx, table, partitionKey, rowKey); err != nil {
			return err
		}
		format.PrintSuccess(out, "✓ Entity %s/%s deleted from %s", partitionKey, rowKey, table)
		return nil
	})
}

func init() {
	listCmd.Flags().String("filter", "", "OData filter on table names")
	queryCmd.Flags().String("filter", "", "OData filter on entities")
	queryCmd.Flags().Int32("top", 0, "maximum number of entities to return (0 for all)")

	TablesCmd.AddCommand(listCmd)
	TablesCmd.AddCommand(createCmd)
	TablesCmd.AddCommand(deleteCmd)
	TablesCmd.AddCommand(queryCmd)
	TablesCmd.AddCommand(getCmd)
	TablesCmd.AddCommand(insertCmd)
	TablesCmd.AddCommand(upsertCmd)
	TablesCmd.AddCommand(deleteEntityCmd)
	command.RequireSubcommand(TablesCmd)
}
