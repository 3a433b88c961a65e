package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pseudo2wasm/internal/compiler"
)

const version = "0.1.0"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	debug     bool
	format    string
	stackSize uint32
}

func (f *globalFlags) options(cmd *cobra.Command) (*compiler.Options, error) {
	opts := &compiler.Options{
		Debug:     f.debug,
		Writer:    cmd.ErrOrStderr(),
		StackSize: f.stackSize,
	}
	switch strings.ToLower(f.format) {
	case "ansi", "":
		opts.LogFormat = compiler.ANSI
	case "html":
		opts.LogFormat = compiler.HTML
	default:
		return nil, fmt.Errorf("unknown format %q (want ansi or html)", f.format)
	}
	return opts, nil
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "pseudo2wasm",
		Short: "pseudo2wasm: compile exam-style pseudocode to WebAssembly",
		Long: `pseudo2wasm checks and compiles pseudocode syntax trees (JSON) into
WebAssembly modules.

Commands:
  build  Compile a tree into a .wasm module
  check  Run only the semantic checker
  run    Compile a tree and execute it
`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug output")
	root.PersistentFlags().StringVar(&flags.format, "format", "ansi", "diagnostic format: ansi or html")
	root.PersistentFlags().Uint32Var(&flags.stackSize, "stack-size", 0, "bytes reserved for the shadow stack (0 = default)")

	root.AddCommand(newBuildCmd(flags), newCheckCmd(flags), newRunCmd(flags))
	return root
}

// Execute runs the command line and reports a failure on stderr.
func Execute() error {
	root := NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		root.PrintErrln("Error:", err)
		return err
	}
	return nil
}
