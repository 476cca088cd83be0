package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/liamcoop/ui5helper/internal/logger"
	"github.com/liamcoop/ui5helper/internal/prompt"
	"github.com/liamcoop/ui5helper/scaffold"
)

// promptUI is what the interactive commands need from the terminal
type promptUI interface {
	Select(title string, options []string) (int, error)
	Input(title, placeholder string, required bool) (string, error)
	Confirm(question string) (bool, error)
}

// cli carries the global flags and collaborators shared by every command
type cli struct {
	root    string
	verbose bool
	prompt  promptUI
}

func (c *cli) generator() *scaffold.Generator {
	return scaffold.New(c.root)
}

// newRootCmd builds the command tree; ui may be nil to prompt on the command's streams
func newRootCmd(ui promptUI) *cobra.Command {
	c := &cli{prompt: ui}

	rootCmd := &cobra.Command{
		Use:   "ui5helper",
		Short: "Scaffold UI5 routes, fragments and form validation",
		Long: `ui5helper generates boilerplate for a UI5 application and validates
records against compact rule strings (field|req|maxLength|type|message).

Run without arguments to pick an action from a menu.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "WARN"
			if c.verbose {
				level = "DEBUG"
			}
			if err := logger.Setup(logger.Options{
				Level:      level,
				Format:     "text",
				Output:     cmd.ErrOrStderr(),
				SampleRate: 1,
			}); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			if c.prompt == nil {
				c.prompt = prompt.Prompter{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInteractive(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.root, "root", "r", ".", "UI5 project root (the directory holding webapp/)")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		c.newRouteCmd(),
		c.newFragmentCmd(),
		c.newValidationCmd(),
		c.newInstallCmd(),
		c.newValidateCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		if !errors.Is(err, errInvalidRecords) {
			fmt.Fprintln(os.Stderr, prompt.Red(err.Error()))
		}
		os.Exit(1)
	}
}
