package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cuongbtq/jobfeed-etl/internal/ingest/domain"
	"github.com/cuongbtq/jobfeed-etl/internal/ingest/storage"
)

// Fetcher pulls raw listings for an ordered set of query terms
type Fetcher interface {
	Fetch(ctx context.Context, terms []string) ([]domain.RawListing, error)
}

// Store is the persistence surface the pipeline drives
type Store interface {
	EnsureSchema(ctx context.Context) error
	BeginRun(ctx context.Context, run *domain.Run) error
	UpsertBatch(ctx context.Context, records []domain.JobRecord) (storage.BatchResult, error)
	CompleteRun(ctx context.Context, run *domain.Run) error
}

// Publisher emits run summary events. Delivery is best effort; the
// pipeline never fails a run over it.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

// Config holds the run-scoped pipeline parameters
type Config struct {
	QueryTerms []string

	// BatchSize is accepted for trigger parity and logged per run, but
	// fetch paging does not consume it.
	BatchSize int
}

// RunSummary is the reported outcome of one ingestion cycle. It is
// returned to the caller and published as the run event body.
type RunSummary struct {
	RunID           string    `json:"run_id"`
	Status          string    `json:"status"`
	QueryTerms      []string  `json:"query_terms"`
	ListingsFetched int       `json:"listings_fetched"`
	RecordsCreated  int       `json:"records_created"`
	RecordsUpdated  int       `json:"records_updated"`
	StartedAt       time.Time `json:"started_at"`
	DurationMS      int64     `json:"duration_ms"`
	Error           string    `json:"error,omitempty"`
}

// Pipeline sequences one ingestion cycle: schema bootstrap, extract,
// transform, load, run bookkeeping, event publish. Stages run strictly
// in order and hand over full batches; any stage failure aborts the run.
type Pipeline struct {
	config      *Config
	fetcher     Fetcher
	transformer *Transformer
	store       Store
	publisher   Publisher
	logger      *slog.Logger
}

// NewPipeline wires the pipeline stages together. publisher may be nil
// when run events are disabled.
func NewPipeline(config *Config, fetcher Fetcher, transformer *Transformer, store Store, publisher Publisher, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		config:      config,
		fetcher:     fetcher,
		transformer: transformer,
		store:       store,
		publisher:   publisher,
		logger:      logger,
	}
}

// Run executes one ingestion cycle and reports its summary. The next
// scheduled run is the unit of recovery for any error returned here.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	run := &domain.Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Status:    domain.RunStatusRunning,
	}

	logger := p.logger.With(slog.String("run_id", run.ID))

	logger.Info("Starting ingest run",
		slog.Any("query_terms", p.config.QueryTerms),
		slog.Int("batch_size", p.config.BatchSize),
	)

	if err := p.store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	if err := p.store.BeginRun(ctx, run); err != nil {
		return nil, fmt.Errorf("recording run start: %w", err)
	}

	// Extract
	listings, err := p.fetcher.Fetch(ctx, p.config.QueryTerms)
	if err != nil {
		return nil, p.fail(ctx, run, logger, fmt.Errorf("extract: %w", err))
	}
	run.ListingsFetched = len(listings)
	logger.Info("Extract stage complete", slog.Int("listings", len(listings)))

	// Transform
	records := p.transformer.Transform(listings)
	logger.Info("Transform stage complete", slog.Int("records", len(records)))

	// Load
	result, err := p.store.UpsertBatch(ctx, records)
	if err != nil {
		return nil, p.fail(ctx, run, logger, fmt.Errorf("load: %w", err))
	}
	run.RecordsCreated = result.Created
	run.RecordsUpdated = result.Updated

	completedAt := time.Now().UTC()
	run.CompletedAt = &completedAt
	run.Status = domain.RunStatusSucceeded

	// The records are durably stored at this point; bookkeeping and
	// event failures alone do not fail the run.
	if err := p.store.CompleteRun(ctx, run); err != nil {
		logger.Error("Failed to record run completion", slog.String("error", err.Error()))
	}

	summary := p.summarize(run)
	p.publish(ctx, summary, logger)

	logger.Info("Ingest run succeeded",
		slog.Int("listings_fetched", run.ListingsFetched),
		slog.Int("records_created", run.RecordsCreated),
		slog.Int("records_updated", run.RecordsUpdated),
		slog.Duration("duration", completedAt.Sub(run.StartedAt)),
	)

	return summary, nil
}

// fail marks the run failed, records and publishes the outcome, and
// hands the stage error back to the caller.
func (p *Pipeline) fail(ctx context.Context, run *domain.Run, logger *slog.Logger, err error) error {
	completedAt := time.Now().UTC()
	run.CompletedAt = &completedAt
	run.Status = domain.RunStatusFailed
	msg := err.Error()
	run.ErrorMessage = &msg

	if updateErr := p.store.CompleteRun(ctx, run); updateErr != nil {
		logger.Error("Failed to record run failure", slog.String("error", updateErr.Error()))
	}

	p.publish(ctx, p.summarize(run), logger)

	logger.Error("Ingest run failed", slog.String("error", err.Error()))

	return err
}

func (p *Pipeline) summarize(run *domain.Run) *RunSummary {
	summary := &RunSummary{
		RunID:           run.ID,
		Status:          run.Status,
		QueryTerms:      p.config.QueryTerms,
		ListingsFetched: run.ListingsFetched,
		RecordsCreated:  run.RecordsCreated,
		RecordsUpdated:  run.RecordsUpdated,
		StartedAt:       run.StartedAt,
	}
	if run.CompletedAt != nil {
		summary.DurationMS = run.CompletedAt.Sub(run.StartedAt).Milliseconds()
	}
	if run.ErrorMessage != nil {
		summary.Error = *run.ErrorMessage
	}
	return summary
}

func (p *Pipeline) publish(ctx context.Context, summary *RunSummary, logger *slog.Logger) {
	if p.publisher == nil {
		return
	}

	body, err := json.Marshal(summary)
	if err != nil {
		logger.Error("Failed to marshal run summary", slog.String("error", err.Error()))
		return
	}

	if err := p.publisher.Publish(ctx, body); err != nil {
		logger.Warn("Failed to publish run summary", slog.String("error", err.Error()))
	}
}
