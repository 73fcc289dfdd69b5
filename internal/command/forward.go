package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// SplitPositional finds the first positional token in args, skipping flags
// and the values of flags that take one. Unknown long flags written without
// "=" are assumed to take a value, matching cobra's own lookahead. It returns
// the positional and args with that token (and a "--" right before it)
// removed.
func SplitPositional(flags *pflag.FlagSet, args []string) (string, []string, bool) {
	i, terminated := positionalIndex(flags, args)
	if i < 0 {
		return "", args, false
	}
	start := i
	if terminated {
		start--
	}
	rest := append(append([]string{}, args[:start]...), args[i+1:]...)
	return args[i], rest, true
}

// positionalIndex returns the index of the first positional in args, or -1.
// terminated reports that the positional follows a "--".
func positionalIndex(flags *pflag.FlagSet, args []string) (int, bool) {
	for i := 0; i < len(args); i++ {
		s := args[i]
		switch {
		case s == "--":
			if i+1 < len(args) {
				return i + 1, true
			}
			return -1, false
		case strings.HasPrefix(s, "--"):
			if !strings.Contains(s, "=") && takesValue(flags.Lookup(s[2:])) {
				i++
			}
		case strings.HasPrefix(s, "-") && len(s) > 1:
			if len(s) == 2 && takesValue(flags.ShorthandLookup(s[1:])) {
				i++
			}
		default:
			return i, false
		}
	}
	return -1, false
}

// Route prepares raw arguments for cobra. cobra resolves the command path by
// name before anything runs, so a forwarder's positional that matches one of
// its subcommand names ("container list list") would be taken for the
// subcommand. Route puts a "--" in front of such positionals, which stops
// cobra's lookup at the forwarder. Forwarders are commands that disable flag
// parsing and have subcommands.
func Route(root *cobra.Command, args []string) []string {
	cmd, pos := root, 0
	for {
		i, terminated := positionalIndex(mergedFlags(cmd), args[pos:])
		if i < 0 || terminated {
			return args
		}
		next := child(cmd, args[pos+i])
		if next == nil {
			return args
		}
		cmd, pos = next, pos+i+1
		if !isForwarder(cmd) {
			continue
		}

		j, terminated := positionalIndex(mergedFlags(cmd), args[pos:])
		if j < 0 || terminated {
			return args
		}
		routed := make([]string, 0, len(args)+1)
		routed = append(routed, args[:pos+j]...)
		routed = append(routed, "--")
		return append(routed, args[pos+j:]...)
	}
}

func isForwarder(cmd *cobra.Command) bool {
	return cmd.DisableFlagParsing && cmd.HasSubCommands()
}

func mergedFlags(cmd *cobra.Command) *pflag.FlagSet {
	cmd.InitDefaultHelpFlag()
	cmd.InheritedFlags()
	return cmd.Flags()
}

func child(cmd *cobra.Command, name string) *cobra.Command {
	for _, sub := range cmd.Commands() {
		if sub.Name() == name || sub.HasAlias(name) {
			return sub
		}
	}
	return nil
}

func takesValue(flag *pflag.Flag) bool {
	return flag == nil || flag.NoOptDefVal == ""
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		if arg == "-h" || arg == "--help" {
			return true
		}
	}
	return false
}

// Forward executes a subcommand of cmd when cmd declares a positional that
// comes before subcommand selection, as in "container <container-name> list".
// cmd must set DisableFlagParsing so that args arrive untouched, and the
// arguments given to the root should pass through Route first.
//
// The positional is handed to capture once the subcommand and its flags have
// parsed. Parse failures print the usage of the deepest command resolved so
// far. The persistent pre-run hook that applies to the subcommand runs before
// it, as it would for a directly executed command.
func Forward(cmd *cobra.Command, args []string, capture func(value string) error) error {
	value, rest, ok := SplitPositional(mergedFlags(cmd), args)
	if !ok {
		if wantsHelp(args) {
			return cmd.Help()
		}
		name := "argument"
		if positionals := Positionals(cmd.Use); len(positionals) > 0 {
			name = "<" + positionals[0] + "> argument"
		}
		return fmt.Errorf("%q requires a %s", cmd.CommandPath(), name)
	}

	leaf, leafArgs, err := cmd.Find(rest)
	if err != nil {
		return usageError(cmd, leaf, err)
	}
	if leaf == cmd {
		if wantsHelp(rest) {
			return cmd.Help()
		}
		return usageError(cmd, cmd, unknownCommand(cmd, rest))
	}
	if !leaf.Runnable() {
		if wantsHelp(leafArgs) {
			return leaf.Help()
		}
		return usageError(cmd, leaf, unknownCommand(leaf, leafArgs))
	}

	leaf.SetContext(cmd.Context())
	leaf.InitDefaultHelpFlag()
	if err := leaf.ParseFlags(leafArgs); err != nil {
		return usageError(cmd, leaf, leaf.FlagErrorFunc()(leaf, err))
	}
	if help, _ := leaf.Flags().GetBool("help"); help {
		return leaf.Help()
	}

	positionals := leaf.Flags().Args()
	if err := leaf.ValidateArgs(positionals); err != nil {
		return usageError(cmd, leaf, err)
	}
	if err := leaf.ValidateRequiredFlags(); err != nil {
		return usageError(cmd, leaf, err)
	}
	if err := leaf.ValidateFlagGroups(); err != nil {
		return usageError(cmd, leaf, err)
	}
	if err := capture(value); err != nil {
		return usageError(cmd, leaf, err)
	}
	if err := persistentPreRun(leaf, positionals); err != nil {
		return usageError(cmd, leaf, err)
	}

	cmd.SilenceUsage = true
	if leaf.RunE != nil {
		return leaf.RunE(leaf, positionals)
	}
	leaf.Run(leaf, positionals)
	return nil
}

// persistentPreRun runs the closest persistent pre-run hook, the same one
// cobra would pick for leaf.
func persistentPreRun(leaf *cobra.Command, args []string) error {
	for p := leaf; p != nil; p = p.Parent() {
		if p.PersistentPreRunE != nil {
			return p.PersistentPreRunE(leaf, args)
		}
		if p.PersistentPreRun != nil {
			p.PersistentPreRun(leaf, args)
			return nil
		}
	}
	return nil
}

func unknownCommand(cmd *cobra.Command, args []string) error {
	name, _, _ := SplitPositional(cmd.Flags(), args)
	if name == "" {
		return fmt.Errorf("%q requires a subcommand", CommandPath(cmd))
	}
	msg := fmt.Sprintf("unknown command %q for %q", name, CommandPath(cmd))
	if cmd.DisableSuggestions {
		return fmt.Errorf("%s", msg)
	}
	if cmd.SuggestionsMinimumDistance <= 0 {
		cmd.SuggestionsMinimumDistance = 2
	}
	if suggestions := cmd.SuggestionsFor(name); len(suggestions) > 0 {
		msg += "\n\nDid you mean this?\n\t" + strings.Join(suggestions, "\n\t")
	}
	return fmt.Errorf("%s", msg)
}

// usageError prints the usage of the failing command and silences the
// forwarding command's own usage so it is not printed twice.
func usageError(forwarder, failed *cobra.Command, err error) error {
	if failed == nil {
		failed = forwarder
	}
	failed.PrintErrln(failed.UsageString())
	forwarder.SilenceUsage = true
	return err
}
