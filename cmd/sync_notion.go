package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/crm"
	"github.com/sells-group/leadgen-cli/internal/store"
	"github.com/sells-group/leadgen-cli/pkg/notion"
)

var (
	syncSearchID string
	syncPrune    bool
)

var syncNotionCmd = &cobra.Command{
	Use:   "sync-notion",
	Short: "Push stored leads into the Notion lead tracker",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Notion.Token == "" {
			return eris.New("notion token is required (LEADGEN_NOTION_TOKEN)")
		}
		if cfg.Notion.LeadDB == "" {
			return eris.New("notion lead database ID is required (LEADGEN_NOTION_LEAD_DB)")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		leads, err := st.ListLeads(ctx, store.LeadFilter{SearchID: syncSearchID})
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		client := notion.NewClient(cfg.Notion.Token)
		syncer := crm.NewNotionSyncer(client, cfg.Notion.LeadDB)

		if len(leads) == 0 {
			zap.L().Info("no leads to sync")
		} else {
			result, err := syncer.Sync(ctx, leads)
			if err != nil {
				return eris.Wrap(err, "sync leads")
			}
			zap.L().Info("notion sync complete",
				zap.Int("created", result.Created),
				zap.Int("updated", result.Updated),
				zap.Int("failed", result.Failed),
			)
		}

		if !syncPrune {
			return nil
		}

		// The keep set is every stored lead, not just the filtered batch,
		// so a --search-id sync never archives pages from other runs.
		all, err := st.ListLeads(ctx, store.LeadFilter{})
		if err != nil {
			return eris.Wrap(err, "list leads for prune")
		}

		archived, err := syncer.Prune(ctx, all)
		if err != nil {
			return eris.Wrap(err, "prune tracker pages")
		}
		zap.L().Info("notion prune complete", zap.Int("archived", archived))
		return nil
	},
}

func init() {
	syncNotionCmd.Flags().StringVar(&syncSearchID, "search-id", "", "filter by search run")
	syncNotionCmd.Flags().BoolVar(&syncPrune, "prune", false, "archive tracker pages for leads no longer stored")
	rootCmd.AddCommand(syncNotionCmd)
}
