package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

var (
	leadsSearchID string
	leadsQuality  string
	leadsLimit    int
	leadsOutput   string
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List stored leads",
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

		filter := store.LeadFilter{
			SearchID: leadsSearchID,
			Limit:    leadsLimit,
		}
		if leadsQuality != "" {
			switch strings.ToLower(leadsQuality) {
			case "good":
				filter.Quality = model.QualityGood
			case "decent":
				filter.Quality = model.QualityDecent
			case "bad":
				filter.Quality = model.QualityBad
			default:
				return eris.Errorf("invalid quality %q: want good, decent, or bad", leadsQuality)
			}
		}

		leads, err := st.ListLeads(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		return writeLeadsOutput(leadsOutput, leads)
	},
}

func init() {
	leadsCmd.Flags().StringVar(&leadsSearchID, "search-id", "", "filter by search run")
	leadsCmd.Flags().StringVar(&leadsQuality, "quality", "", "filter by website quality (good, decent, bad)")
	leadsCmd.Flags().IntVar(&leadsLimit, "limit", 0, "max leads to list")
	leadsCmd.Flags().StringVarP(&leadsOutput, "output", "o", "-", "output file, '-' for stdout")
	rootCmd.AddCommand(leadsCmd)
}
