package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liamcoop/ui5helper/internal/config"
	"github.com/liamcoop/ui5helper/internal/logger"
	"github.com/liamcoop/ui5helper/internal/prompt"
	"github.com/liamcoop/ui5helper/rules"
)

// errInvalidRecords makes the process exit non-zero after the report is printed
var errInvalidRecords = errors.New("one or more records are invalid")

func (c *cli) newValidateCmd() *cobra.Command {
	var (
		rulesPath string
		dataPath  string
		bind      bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate JSON records against a rule file",
		Long: `Validates one record, or an array of records, against the rules and
constraints of a YAML rule file and prints the report as JSON.

With --bind the record is printed with <field>ValueState and
<field>ValueStateText entries, the layout a UI5 valid model expects.

Example:
  ui5helper validate --rules employee.yaml --data employee.json --bind`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.validate(cmd, rulesPath, dataPath, bind)
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "Rule file (YAML or JSON)")
	cmd.Flags().StringVar(&dataPath, "data", "", "Record file (JSON object or array)")
	cmd.Flags().BoolVar(&bind, "bind", false, "Print records with value state bindings")
	_ = cmd.MarkFlagRequired("rules")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func (c *cli) validate(cmd *cobra.Command, rulesPath, dataPath string, bind bool) error {
	file, err := config.LoadRuleFile(rulesPath)
	if err != nil {
		if errors.Is(err, rules.ErrMalformedRule) {
			logger.WarnMalformedRule(rulesPath, err)
		}
		return err
	}
	records, isArray, err := config.LoadRecords(dataPath)
	if err != nil {
		return err
	}

	engine, err := rules.NewEngine(rules.NewInMemoryRuleSetStore())
	if err != nil {
		return err
	}
	set := file.RuleSet()
	if err := engine.AddRuleSet(set); err != nil {
		return err
	}

	reports, err := engine.ValidateBatch(cmd.Context(), set.ID, records)
	if err != nil {
		return err
	}

	output := make([]any, len(reports))
	invalid := 0
	for i, report := range reports {
		logger.CountValidation(report.Valid)
		if !report.Valid {
			invalid++
		}
		if bind {
			output[i] = rules.BindValueStates(records[i], report)
		} else {
			output[i] = report
		}
	}

	var doc any = output
	if !isArray {
		doc = output[0]
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))

	if invalid > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), prompt.Red(fmt.Sprintf("%d of %d records invalid", invalid, len(reports))))
		return errInvalidRecords
	}
	fmt.Fprintln(cmd.ErrOrStderr(), prompt.Green(fmt.Sprintf("%d records valid", len(reports))))
	return nil
}
