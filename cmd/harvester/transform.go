package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/opendataio/harvester/adapter"
	"github.com/opendataio/harvester/adapter/datajson"
	"github.com/opendataio/harvester/catalog"
	"github.com/opendataio/harvester/source"
)

func transformCmd() *cobra.Command {
	var (
		schemaName string
		ownerOrg   string
	)

	cmd := &cobra.Command{
		Use:   "transform <data.json>",
		Short: "Transform a data.json catalog and print the canonical datasets",
		Long: `Transform parses a local data.json catalog, runs every record
through the dataset adapter and prints the resulting canonical datasets
as a JSON list on stdout. Rejected records are reported on stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := source.ReadCatalogFile(args[0], slog.Default())
			if err != nil {
				return err
			}

			cat.StampDatasets()
			cat.DetectCollections()
			cat.RemoveDuplicateIdentifiers()

			transformer := &datajson.DatasetAdapter{
				Schema:   schemaFor(schemaName),
				OwnerOrg: ownerOrg,
				Log:      slog.Default(),
			}

			var datasets []catalog.Dataset
			rejected := 0
			for _, record := range cat.Datasets {
				ds, err := transformer.Transform(record, nil)
				if err != nil {
					var rejectedErr *adapter.RejectedError
					if errors.As(err, &rejectedErr) {
						identifier, _ := record["identifier"].(string)
						fmt.Fprintf(os.Stderr, "rejected %s: %v\n", identifier, err)
						rejected++
						continue
					}
					return err
				}
				datasets = append(datasets, ds)
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(datasets); err != nil {
				return fmt.Errorf("encode datasets: %w", err)
			}
			if rejected > 0 {
				fmt.Fprintf(os.Stderr, "%d of %d records rejected\n", rejected, len(cat.Datasets))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaName, "schema", "default", "Target schema (default, usmetadata)")
	cmd.Flags().StringVar(&ownerOrg, "owner-org", "", "Destination organization id")
	_ = cmd.MarkFlagRequired("owner-org")

	return cmd
}
