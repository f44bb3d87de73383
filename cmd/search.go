package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/leadsearch"
	"github.com/sells-group/leadgen-cli/internal/session"
	"github.com/sells-group/leadgen-cli/pkg/gemini"
	"github.com/sells-group/leadgen-cli/pkg/geocode"
)

var (
	searchQuery    string
	searchLocation string
	searchCount    int
	searchAppend   bool
	searchPreset   string
	searchOutput   string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find businesses matching a query in a location",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Gemini.Key == "" {
			return eris.New("gemini API key is required (LEADGEN_GEMINI_KEY)")
		}

		query, location, count := searchQuery, searchLocation, searchCount
		if searchPreset != "" {
			presets, err := leadsearch.LoadPresets(cfg.Presets)
			if err != nil {
				return eris.Wrap(err, "load presets")
			}
			p, ok := presets[searchPreset]
			if !ok {
				return eris.Errorf("unknown preset %q", searchPreset)
			}
			query, location = p.Query, p.Location
			if p.Count > 0 {
				count = p.Count
			}
		}
		if query == "" || location == "" {
			return eris.New("--query and --location are required (or --preset)")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		client := gemini.NewClient(cfg.Gemini.Key,
			gemini.WithModel(cfg.Gemini.Model),
			gemini.WithRateLimit(cfg.Gemini.RateLimit),
		)

		req := leadsearch.Request{
			Query:    query,
			Location: location,
			Count:    count,
		}

		if cfg.Geocode.Enabled {
			req.Bias = locateBias(ctx, location)
		}

		// Seed the exclusion list from prior runs so repeated invocations
		// surface fresh businesses.
		names, err := st.RecentNames(ctx, cfg.Search.ExclusionBound)
		if err != nil {
			return eris.Wrap(err, "load recent names")
		}
		req.Exclude = names

		searcher := leadsearch.New(client, searchConfig())
		sess := session.New(cfg.Search.ExclusionBound)
		runner := session.NewRunner(searcher, sess)

		mode := session.ModeReplace
		if searchAppend {
			mode = session.ModeAppend
		}

		search, err := st.CreateSearch(ctx, query, location)
		if err != nil {
			return eris.Wrap(err, "create search")
		}

		leads, err := runner.Run(ctx, req, mode)
		if err != nil {
			if failErr := st.FailSearch(ctx, search.ID, err.Error()); failErr != nil {
				zap.L().Warn("record search failure", zap.Error(failErr))
			}
			fmt.Fprintln(os.Stderr, session.UserMessage(err))
			return err
		}

		inserted, err := st.InsertLeads(ctx, search.ID, leads)
		if err != nil {
			return eris.Wrap(err, "persist leads")
		}
		if err := st.CompleteSearch(ctx, search.ID, len(leads)); err != nil {
			return eris.Wrap(err, "complete search")
		}

		zap.L().Info("search complete",
			zap.String("query", query),
			zap.String("location", location),
			zap.Int("leads", len(leads)),
			zap.Int("new", inserted),
		)

		return writeLeadsOutput(searchOutput, leads)
	},
}

// locateBias resolves the location string to coordinates for Maps grounding.
// Geocoding failures are non-fatal: the search still runs without a bias.
func locateBias(ctx context.Context, location string) *gemini.LatLng {
	geocoder := geocode.NewClient(geocode.WithRateLimit(cfg.Geocode.RateLimit))
	result, err := geocoder.Locate(ctx, location)
	if err != nil {
		zap.L().Warn("geocode failed, searching without location bias", zap.Error(err))
		return nil
	}
	if !result.Matched {
		zap.L().Debug("location not matched by geocoder", zap.String("location", location))
		return nil
	}
	return &gemini.LatLng{Latitude: result.Latitude, Longitude: result.Longitude}
}

func searchConfig() leadsearch.Config {
	return leadsearch.Config{
		BatchSize:      cfg.Search.BatchSize,
		MinRetryBatch:  cfg.Search.MinRetryBatch,
		RetryDelay:     cfg.Search.RetryDelay,
		ExclusionBound: cfg.Search.ExclusionBound,
		Temperature:    cfg.Search.Temperature,
	}
}

func init() {
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "business type to search for")
	searchCmd.Flags().StringVarP(&searchLocation, "location", "l", "", "city or area to search in")
	searchCmd.Flags().IntVarP(&searchCount, "count", "n", 0, "number of leads to request (default from config)")
	searchCmd.Flags().BoolVar(&searchAppend, "append", false, "add to prior results instead of replacing")
	searchCmd.Flags().StringVar(&searchPreset, "preset", "", "named preset from the presets file")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "-", "output file, '-' for stdout")
	rootCmd.AddCommand(searchCmd)
}
