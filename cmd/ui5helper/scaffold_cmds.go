package main

import (
	"github.com/spf13/cobra"
)

func (c *cli) newRouteCmd() *cobra.Command {
	var ts bool

	cmd := &cobra.Command{
		Use:   "route [name]",
		Short: "Create a controller and view and register the route in manifest.json",
		Long: `Creates webapp/controller/<name>.controller.{js,ts} and webapp/view/<name>.view.xml.
The route and target are added to sap.ui5.routing when the view is new;
the first view of the app gets the empty pattern.

Example:
  ui5helper route Detail --ts`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := c.argOrPrompt(args, "View & Controller name?", "Main")
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("ts") && len(args) == 0 {
				if ts, err = c.prompt.Confirm("Do you want to use TypeScript?"); err != nil {
					return err
				}
			}
			return c.createRoute(cmd, name, ts)
		},
	}
	cmd.Flags().BoolVar(&ts, "ts", false, "Generate a TypeScript controller")
	return cmd
}

func (c *cli) createRoute(cmd *cobra.Command, name string, ts bool) error {
	results, err := c.generator().CreateRoute(name, ts)
	if err != nil {
		return err
	}
	printResults(cmd.OutOrStdout(), results)
	return nil
}

func (c *cli) newFragmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fragment [name]",
		Short: "Create webapp/fragment/<name>.fragment.xml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := c.argOrPrompt(args, "Fragment name?", "Dialog")
			if err != nil {
				return err
			}
			return c.setupFragment(cmd, name)
		},
	}
}

func (c *cli) setupFragment(cmd *cobra.Command, name string) error {
	results, err := c.generator().SetupFragment(name)
	if err != nil {
		return err
	}
	printResults(cmd.OutOrStdout(), results)
	return nil
}

func (c *cli) newValidationCmd() *cobra.Command {
	var ts bool

	cmd := &cobra.Command{
		Use:   "validation",
		Short: "Create webapp/validation/formValidation.{js,ts}",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.createFormValidation(cmd, ts)
		},
	}
	cmd.Flags().BoolVar(&ts, "ts", false, "Generate the TypeScript module")
	return cmd
}

func (c *cli) createFormValidation(cmd *cobra.Command, ts bool) error {
	results, err := c.generator().CreateFormValidation(ts)
	if err != nil {
		return err
	}
	printResults(cmd.OutOrStdout(), results)
	return nil
}

func (c *cli) newInstallCmd() *cobra.Command {
	var command string

	cmd := &cobra.Command{
		Use:   "install",
		Short: `Add the "ui5-helper" script to package.json`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := c.generator().RegisterScript(command)
			if err != nil {
				return err
			}
			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().StringVar(&command, "command", "ui5helper", "Command the script runs")
	return cmd
}

// argOrPrompt returns the positional argument or asks for it
func (c *cli) argOrPrompt(args []string, title, placeholder string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return c.prompt.Input(title, placeholder, true)
}
