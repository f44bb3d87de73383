package leadsearch

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/pkg/gemini"
)

// Sentinel errors surfaced to the presentation layer.
var (
	// ErrRateLimited means the provider rejected the call on quota grounds.
	// It is terminal for the invocation and never retried.
	ErrRateLimited = errors.New("leadsearch: rate limited by provider")

	// ErrNoLeads means both attempts completed without yielding any parseable
	// records.
	ErrNoLeads = errors.New("leadsearch: no leads found")
)

// Config controls one searcher's batch and retry behavior.
type Config struct {
	// BatchSize is the lead count requested on the first attempt. Default: 20.
	BatchSize int

	// MinRetryBatch floors the halved batch size on retry. Default: 5.
	MinRetryBatch int

	// RetryDelay is the fixed wait before the single reduced-batch retry.
	// Default: 2s.
	RetryDelay time.Duration

	// ExclusionBound caps how many recent names are embedded in the prompt.
	// Default: 120.
	ExclusionBound int

	// Temperature for generation. Default: 0.4.
	Temperature float64
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.MinRetryBatch <= 0 {
		c.MinRetryBatch = 5
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
	if c.ExclusionBound <= 0 {
		c.ExclusionBound = 120
	}
	if c.Temperature <= 0 {
		c.Temperature = 0.4
	}
	return c
}

// Request is one search invocation.
type Request struct {
	Query    string
	Location string
	Exclude  []string       // full known-name history; bounded before prompting
	Bias     *gemini.LatLng // optional retrieval bias point
	Count    int            // overrides Config.BatchSize when > 0
}

// Searcher orchestrates a single generation call with a one-shot
// reduced-batch retry ladder.
type Searcher struct {
	client gemini.Client
	cfg    Config
}

// New creates a Searcher around a Gemini client.
func New(client gemini.Client, cfg Config) *Searcher {
	return &Searcher{client: client, cfg: cfg.withDefaults()}
}

// Search runs the retry ladder and returns normalized leads.
//
// Decision table: a rate-limit fault short-circuits as ErrRateLimited; a
// non-transient fault propagates immediately; a transient fault or an empty
// parse waits RetryDelay then retries exactly once at half the batch size
// (floored at MinRetryBatch). A failed or empty second attempt is terminal.
func (s *Searcher) Search(ctx context.Context, req Request) ([]model.Lead, error) {
	batch := s.cfg.BatchSize
	if req.Count > 0 {
		batch = req.Count
	}
	exclude := BoundExclusions(req.Exclude, s.cfg.ExclusionBound)

	leads, err := s.attempt(ctx, req, exclude, batch)
	if err != nil {
		switch {
		case resilience.IsRateLimited(err):
			return nil, eris.Wrap(ErrRateLimited, err.Error())
		case !resilience.IsTransient(err):
			return nil, err
		}
		zap.L().Warn("leadsearch: first attempt failed, retrying with reduced batch",
			zap.Int("batch", batch),
			zap.Error(err),
		)
	} else if len(leads) > 0 {
		return leads, nil
	} else {
		zap.L().Warn("leadsearch: first attempt returned no records, retrying with reduced batch",
			zap.Int("batch", batch),
		)
	}

	if err := sleep(ctx, s.cfg.RetryDelay); err != nil {
		return nil, err
	}

	batch = batch / 2
	if batch < s.cfg.MinRetryBatch {
		batch = s.cfg.MinRetryBatch
	}

	leads, err = s.attempt(ctx, req, exclude, batch)
	if err != nil {
		if resilience.IsRateLimited(err) {
			return nil, eris.Wrap(ErrRateLimited, err.Error())
		}
		return nil, err
	}
	if len(leads) == 0 {
		return nil, ErrNoLeads
	}
	return leads, nil
}

// attempt issues one generation call and salvages leads from its text.
// Provider errors are classified into the typed taxonomy here so the ladder
// never inspects error strings from the transport.
func (s *Searcher) attempt(ctx context.Context, req Request, exclude []string, batch int) ([]model.Lead, error) {
	genReq := gemini.GenerateContentRequest{
		Contents: []gemini.Content{{
			Role:  "user",
			Parts: []gemini.Part{{Text: buildPrompt(req.Query, req.Location, batch, exclude)}},
		}},
		SystemInstruction: &gemini.Content{Parts: []gemini.Part{{Text: systemInstruction}}},
		Tools: []gemini.Tool{
			{GoogleMaps: &gemini.GoogleMaps{}},
			{GoogleSearch: &gemini.GoogleSearch{}},
		},
		GenerationConfig: &gemini.GenerationConfig{Temperature: &s.cfg.Temperature},
	}
	if req.Bias != nil {
		genReq.ToolConfig = &gemini.ToolConfig{
			RetrievalConfig: &gemini.RetrievalConfig{LatLng: req.Bias},
		}
	}

	resp, err := s.client.GenerateContent(ctx, genReq)
	if err != nil {
		return nil, classify(err)
	}

	leads := ExtractLeads(resp.Text())
	if resp.UsageMetadata != nil {
		zap.L().Info("leadsearch: attempt complete",
			zap.Int("requested", batch),
			zap.Int("parsed", len(leads)),
			zap.Int("total_tokens", resp.UsageMetadata.TotalTokenCount),
		)
	}
	return leads, nil
}

// classify maps provider errors onto the resilience taxonomy by status code.
// Errors without a status code fall through untouched; the keyword fallback
// in the resilience package covers those.
func classify(err error) error {
	var apiErr *gemini.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.StatusCode == 429:
		return resilience.NewRateLimitError(err)
	case resilience.IsTransientHTTPStatus(apiErr.StatusCode):
		return resilience.NewTransientError(err, apiErr.StatusCode)
	default:
		return err
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
