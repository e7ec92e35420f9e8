package handler

import (
	"log/slog"

	"github.com/cuongbtq/jobfeed-etl/internal/api/storage"
	"github.com/cuongbtq/jobfeed-etl/shared/postgresql"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger   *slog.Logger
	DBClient *postgresql.Client
}

// JobHandler serves the read side of the ingested job data
type JobHandler struct {
	logger  *slog.Logger
	storage *storage.Storage
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:  deps.Logger,
		storage: storage.NewStorage(deps.DBClient),
	}
}
