package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/liamcoop/ui5helper/internal/prompt"
)

var menuOptions = []string{"Create Route", "Fragment Setup", "Form Validation", "Validate Record"}

// runInteractive shows the action menu and asks for whatever the action needs
func (c *cli) runInteractive(cmd *cobra.Command) error {
	choice, err := c.prompt.Select("Please select an option:", menuOptions)
	if errors.Is(err, prompt.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}

	switch choice {
	case 0:
		name, err := c.prompt.Input("View & Controller name?", "Main", true)
		if err != nil {
			return ignoreCancel(err)
		}
		ts, err := c.prompt.Confirm("Do you want to use TypeScript?")
		if err != nil {
			return ignoreCancel(err)
		}
		return c.createRoute(cmd, name, ts)
	case 1:
		name, err := c.prompt.Input("Fragment name?", "Dialog", true)
		if err != nil {
			return ignoreCancel(err)
		}
		return c.setupFragment(cmd, name)
	case 2:
		ts, err := c.prompt.Confirm("Are you using TypeScript?")
		if err != nil {
			return ignoreCancel(err)
		}
		return c.createFormValidation(cmd, ts)
	case 3:
		rulesPath, err := c.prompt.Input("Rule file?", "rules.yaml", true)
		if err != nil {
			return ignoreCancel(err)
		}
		dataPath, err := c.prompt.Input("Record file?", "record.json", true)
		if err != nil {
			return ignoreCancel(err)
		}
		return c.validate(cmd, rulesPath, dataPath, true)
	}
	return errors.New("invalid option selected")
}

func ignoreCancel(err error) error {
	if errors.Is(err, prompt.ErrCancelled) {
		return nil
	}
	return err
}
