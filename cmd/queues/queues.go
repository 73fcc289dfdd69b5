package queues

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/demoray/azure-storage-blob-client/internal/command"
	"github.com/demoray/azure-storage-blob-client/internal/dispatch"
	"github.com/demoray/azure-storage-blob-client/internal/format"
	"github.com/demoray/azure-storage-blob-client/internal/storage"
	"github.com/demoray/azure-storage-blob-client/internal/utils"
)

// maxMessages is the most messages the queue service returns per request.
const maxMessages = 32

// QueuesCmd represents the queues command
var QueuesCmd = &cobra.Command{
	Use:   "queues",
	Short: "Queue commands",
	Long: `Queue commands for the storage account.

This command group manages queues and sends, peeks at and receives
messages.`,
}

// listCmd lists queues
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List queues",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// createCmd creates a queue
var createCmd = &cobra.Command{
	Use:   "create <queue-name>",
	Short: "Create a queue",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

// deleteCmd deletes a queue
var deleteCmd = &cobra.Command{
	Use:   "delete <queue-name>",
	Short: "Delete a queue",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

// propertiesCmd shows queue properties
var propertiesCmd = &cobra.Command{
	Use:   "properties <queue-name>",
	Short: "Show queue properties",
	Long:  "Display the approximate message count and metadata of a queue",
	Args:  cobra.ExactArgs(1),
	RunE:  runProperties,
}

// sendCmd sends a message
var sendCmd = &cobra.Command{
	Use:   "send <queue-name> <message>",
	Short: "Send a message",
	Args:  cobra.ExactArgs(2),
	RunE:  runSend,
}

// peekCmd peeks at messages
var peekCmd = &cobra.Command{
	Use:   "peek <queue-name>",
	Short: "Peek at messages",
	Long:  "Show messages at the front of the queue without changing their visibility",
	Args:  cobra.ExactArgs(1),
	RunE:  runPeek,
}

// receiveCmd receives messages
var receiveCmd = &cobra.Command{
	Use:   "receive <queue-name>",
	Short: "Receive messages",
	Long: `Receive messages from the front of the queue.

Received messages are deleted from the queue unless --keep is given, in
which case they become visible again once their visibility timeout ends.`,
	Args: cobra.ExactArgs(1),
	RunE: runReceive,
}

// clearCmd clears a queue
var clearCmd = &cobra.Command{
	Use:   "clear <queue-name>",
	Short: "Delete every message in a queue",
	Args:  cobra.ExactArgs(1),
	RunE:  runClear,
}

// withQueues runs fn against the account's queue service.
func withQueues(cmd *cobra.Command, fn func(ctx context.Context, client storage.QueueClient, out io.Writer) error) error {
	d, err := dispatch.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	return d.Dispatch(cmd.Context(), dispatch.Queues{Run: func(ctx context.Context, client storage.QueueClient) error {
		return fn(ctx, client, d.Out())
	}})
}

// queueArg validates the queue name in args[0].
func queueArg(args []string) (string, error) {
	if err := utils.ValidateQueueName(args[0]); err != nil {
		return "", err
	}
	return args[0], nil
}

func countFlag(cmd *cobra.Command) (int32, error) {
	count, _ := cmd.Flags().GetInt32("count")
	if count < 1 || count > maxMessages {
		return 0, utils.NewValidationError("count", "must be between 1 and 32")
	}
	return count, nil
}

func runList(cmd *cobra.Command, args []string) error {
	prefix, _ := cmd.Flags().GetString("prefix")

	return withQueues(cmd, func(ctx context.Context, client storage.QueueClient, out io.Writer) error {
		queues, err := client.ListQueues(ctx, prefix)
		if err != nil {
			return err
		}
		return format.Print(out, queues)
	})
}

func runCreate(cmd *cobra.Command, args []string) error {
	name, err := queueArg(args)
	if err != nil {
		return err
	}

	return withQueues(cmd, func(ctx context.Context, client storage.QueueClient, out io.Writer) error {
		if err := client.CreateQueue(ctx, name); err != nil {
			return err
		}
		format.PrintSuccess(out, "✓ Queue %s created", name)
		return nil
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	name, err := queueArg(args)
	if err != nil {
		return err
	}

	return withQueues(cmd, func(ctx context.Context, client storage.QueueClient, out io.Writer) error {
		if err := client.DeleteQueue(ctx, name); err != nil {
			return err
		}
		format.PrintSuccess(out, "✓ Queue %s deleted", name)
		return nil
	})
}

func runProperties(cmd *cobra.Command, args []string) error {
	name, err := queueArg(args)
	if err != nil {
		return err
	}

	return withQueues(cmd, func(ctx context.Context, client storage.QueueClient, out io.Writer) error {
		props, err := client.QueueProperties(ctx, name)
		if err != nil {
			return err
		}
		return format.Print(out, props)
	})
}

func runSend(cmd *cobra.Command, args []string) error {
	name, err := queueArg(args)
	if err != nil {
		return err
	}
	text := args[1]

	return withQueues(cmd, func(ctx context.Context, client storage.QueueClient, out io.Writer) error {
		message, err := client.Send(ctx, name, text)
		if err != nil {
			return err
		}
		return format.Print(out, message)
	})
}

func runPeek(cmd *cobra.Command, args []string) error {
	name, err := queueArg(args)
	if err != nil {
		return err
	}
	count, err := countFlag(cmd)
	if err != nil {
		return err
	}

	return withQueues(cmd, func(ctx context.Context, client storage.QueueClient, out io.Writer) error {
		messages, err := client.Peek(ctx, name, count)
		if err != nil {
			return err
		}
		return format.Print(out, messages)
	})
}

func runReceive(cmd *cobra.Command, args []string) error {
	name, err := queueArg(args)
	if err != nil {
		return err
	}
	count, err := countFlag(cmd)
	if err != nil {
		return err
	}
	keep, _ := cmd.Flags().GetBool("keep")

	return withQueues(cmd, func(ctx context.Context, client storage.QueueClient, out io.Writer) error {
		messages, err := client.Receive(ctx, name, count, keep)
		if err != nil {
			return err
		}
		return format.Print(out, messages)
	})
}

func runClear(cmd *cobra.Command, args []string) error {
	name, err := queueArg(args)
	if err != nil {
		return err
	}

	return withQueues(cmd, func(ctx context.Context, client storage.QueueClient, out io.Writer) error {
		if err := client.Clear(ctx, name); err != nil {
			return err
		}
		format.PrintSuccess(out, "✓ Queue %s cleared", name)
		return nil
	})
}

func init() {
	listCmd.Flags().String("prefix", "", "only list queues whose names start with this prefix")
	peekCmd.Flags().Int32("count", 1, "number of messages to show (1-32)")
	receiveCmd.Flags().Int32("count", 1, "number of messages to receive (1-32)")
	receiveCmd.Flags().Bool("keep", false, "leave received messages in the queue")

	QueuesCmd.AddCommand(listCmd)
	QueuesCmd.AddCommand(createCmd)
	QueuesCmd.AddCommand(deleteCmd)
	QueuesCmd.AddCommand(propertiesCmd)
	QueuesCmd.AddCommand(sendCmd)
	QueuesCmd.AddCommand(peekCmd)
	QueuesCmd.AddCommand(receiveCmd)
	QueuesCmd.AddCommand(clearCmd)
	command.RequireSubcommand(QueuesCmd)
}
