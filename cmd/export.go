package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/export"
	"github.com/sells-group/leadgen-cli/internal/store"
)

var (
	exportSearchID string
	exportFormat   string
	exportOutput   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored leads to TSV or Excel",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		leads, err := st.ListLeads(ctx, store.LeadFilter{SearchID: exportSearchID})
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		dest := exportOutput
		switch exportFormat {
		case "tsv":
			// dest default "-" prints to stdout
		case "xlsx":
			if dest == "" || dest == "-" {
				dest = export.Filename(time.Now())
			}
		default:
			return eris.Errorf("unsupported format %q: want tsv or xlsx", exportFormat)
		}

		if err := writeLeadsOutput(dest, leads); err != nil {
			return err
		}

		if dest != "" && dest != "-" {
			zap.L().Info("export written", zap.String("file", dest), zap.Int("leads", len(leads)))
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportSearchID, "search-id", "", "filter by search run")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "tsv", "output format (tsv or xlsx)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "output file, '-' for stdout")
	rootCmd.AddCommand(exportCmd)
}
