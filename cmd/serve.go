package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadgen-cli/internal/export"
	"github.com/sells-group/leadgen-cli/internal/leadsearch"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/session"
	"github.com/sells-group/leadgen-cli/internal/store"
	"github.com/sells-group/leadgen-cli/pkg/gemini"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lead search API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Gemini.Key == "" {
			return eris.New("gemini API key is required (LEADGEN_GEMINI_KEY)")
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
		searcher := leadsearch.New(client, searchConfig())
		sess := session.New(cfg.Search.ExclusionBound)
		runner := session.NewRunner(searcher, sess)

		api := &apiServer{sess: sess, runner: runner, store: st}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

// apiServer exposes the interactive search session over HTTP.
type apiServer struct {
	sess   *session.Session
	runner *session.Runner
	store  store.Store
}

func (a *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", a.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/search", a.handleSearch)
		r.Get("/leads", a.handleLeads)
		r.Get("/pipeline", a.handlePipeline)
		r.Get("/export.tsv", a.handleExportTSV)
		r.Get("/export.xlsx", a.handleExportXLSX)
	})
	return r
}

func (a *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type searchRequest struct {
	Query    string `json:"query"`
	Location string `json:"location"`
	Count    int    `json:"count"`
	Append   bool   `json:"append"`
}

func (a *apiServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" || req.Location == "" {
		writeError(w, http.StatusBadRequest, "query and location are required")
		return
	}

	mode := session.ModeReplace
	if req.Append {
		mode = session.ModeAppend
	}

	leads, err := a.runner.Run(r.Context(), leadsearch.Request{
		Query:    req.Query,
		Location: req.Location,
		Count:    req.Count,
	}, mode)
	if err != nil {
		if errors.Is(err, session.ErrSearchInFlight) {
			writeError(w, http.StatusConflict, session.UserMessage(err))
			return
		}
		a.recordFailure(r.Context(), req, err)
		writeError(w, http.StatusBadGateway, session.UserMessage(err))
		return
	}

	a.recordSuccess(r.Context(), req, leads)
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

func (a *apiServer) handleLeads(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"leads": a.sess.Leads()})
}

func (a *apiServer) handlePipeline(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"stages": a.sess.Pipeline().States()})
}

func (a *apiServer) handleExportTSV(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	_, _ = w.Write([]byte(export.TSV(a.sess.Leads())))
}

func (a *apiServer) handleExportXLSX(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(time.Now())))
	if err := export.WriteXLSX(w, a.sess.Leads()); err != nil {
		zap.L().Error("xlsx export failed", zap.Error(err))
	}
}

// recordSuccess persists a completed run. Persistence errors are logged, not
// surfaced: the caller already has the leads.
func (a *apiServer) recordSuccess(ctx context.Context, req searchRequest, leads []model.Lead) {
	search, err := a.store.CreateSearch(ctx, req.Query, req.Location)
	if err != nil {
		zap.L().Warn("record search", zap.Error(err))
		return
	}
	if _, err := a.store.InsertLeads(ctx, search.ID, leads); err != nil {
		zap.L().Warn("persist leads", zap.Error(err))
		return
	}
	if err := a.store.CompleteSearch(ctx, search.ID, len(leads)); err != nil {
		zap.L().Warn("complete search", zap.Error(err))
	}
}

func (a *apiServer) recordFailure(ctx context.Context, req searchRequest, runErr error) {
	search, err := a.store.CreateSearch(ctx, req.Query, req.Location)
	if err != nil {
		zap.L().Warn("record search", zap.Error(err))
		return
	}
	if err := a.store.FailSearch(ctx, search.ID, runErr.Error()); err != nil {
		zap.L().Warn("record search failure", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
