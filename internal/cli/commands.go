package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pseudo2wasm/colors"
	"pseudo2wasm/internal/compiler"
	"pseudo2wasm/internal/host"
)

var errCompilationFailed = errors.New("compilation failed")

// compile runs the driver and, in HTML mode, prints the rendered
// diagnostic itself.
func compile(cmd *cobra.Command, flags *globalFlags, path string, skipCodegen bool) (compiler.Result, error) {
	opts, err := flags.options(cmd)
	if err != nil {
		return compiler.Result{}, err
	}
	opts.SkipCodegen = skipCodegen
	result := compiler.CompileFile(path, opts)
	if !result.Success {
		if result.Output != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), result.Output)
		}
		return result, errCompilationFailed
	}
	return result, nil
}

// build: tree -> .wasm
func newBuildCmd(flags *globalFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "build <tree.json>",
		Short: "Compile a syntax tree into a WebAssembly module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := compile(cmd, flags, args[0], false)
			if err != nil {
				return err
			}
			out := output
			if out == "" {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".wasm"
			}
			if err := os.WriteFile(out, result.Binary(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			colors.GREEN.Fprintf(cmd.OutOrStdout(), "✓ wrote %d bytes to %s\n", len(result.Binary()), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: <tree>.wasm)")
	return cmd
}

// check: semantic analysis only
func newCheckCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check <tree.json>",
		Short: "Run the semantic checker without emitting code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := compile(cmd, flags, args[0], true); err != nil {
				return err
			}
			colors.GREEN.Fprintf(cmd.OutOrStdout(), "✓ %s: no errors\n", args[0])
			return nil
		},
	}
}

// run: compile and execute under the host runner
func newRunCmd(flags *globalFlags) *cobra.Command {
	var inputs []string
	cmd := &cobra.Command{
		Use:   "run <tree.json>",
		Short: "Compile a syntax tree and execute it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := compile(cmd, flags, args[0], false)
			if err != nil {
				return err
			}
			_, err = host.Run(cmd.Context(), result.Binary(), host.Config{
				Inputs: inputs,
				Stdout: cmd.OutOrStdout(),
			})
			return err
		},
	}
	cmd.Flags().StringArrayVar(&inputs, "input", nil, "value for the next INPUT statement (repeatable)")
	return cmd
}
