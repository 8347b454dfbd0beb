package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/opendataio/harvester/adapter/datajson"
	"github.com/opendataio/harvester/source"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <data.json>",
		Short: "Validate a data.json catalog against the Project Open Data rules",
		Long: `Validate parses a local data.json catalog and reports every
metadata problem grouped by severity. The command exits non-zero when
any dataset has missing or invalid required fields.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := source.ReadCatalogFile(args[0], slog.Default())
			if err != nil {
				return err
			}

			validator := &datajson.Validator{}
			failed := 0
			for _, record := range cat.Datasets {
				groups := validator.ValidateDataset(record)
				if len(groups) == 0 {
					continue
				}
				identifier, _ := record["identifier"].(string)
				fmt.Printf("%s:\n", identifier)
				hardFailure := false
				for _, group := range groups {
					fmt.Printf("  %s:\n", group.Heading)
					for _, desc := range group.Descriptions {
						fmt.Printf("    - %s\n", desc)
					}
					if group.Severity <= datajson.SeverityMissingRequired {
						hardFailure = true
					}
				}
				if hardFailure {
					failed++
				}
			}

			fmt.Printf("%d datasets checked, %d with required-field problems\n",
				len(cat.Datasets), failed)
			if failed > 0 {
				return fmt.Errorf("%d datasets failed validation", failed)
			}
			return nil
		},
	}
}
