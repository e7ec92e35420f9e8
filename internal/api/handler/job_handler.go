package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/jobfeed-etl/internal/api/domain"
	"github.com/cuongbtq/jobfeed-etl/internal/api/dto"
	"github.com/cuongbtq/jobfeed-etl/internal/api/model"
	"github.com/cuongbtq/jobfeed-etl/internal/api/storage"
	"github.com/cuongbtq/jobfeed-etl/internal/experience"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	defaultRunLimit = 20
)

// ListJobs handles GET /api/v1/jobs
// Lists ingested jobs with optional filtering and cursor pagination
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.Level != "" && !validLevel(req.Level) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid level, expected one of: entry, mid, senior, executive",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		h.logger.Error("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	filter := storage.JobFilter{
		Source:   req.Source,
		Level:    req.Level,
		Company:  req.Company,
		Search:   req.Search,
		PageSize: req.PageSize,
		Cursor:   cursor,
	}

	jobs, err := h.storage.ListJobs(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list jobs",
		})
		return
	}

	// One extra row was fetched to detect a following page
	hasMore := len(jobs) > req.PageSize
	if hasMore {
		jobs = jobs[:req.PageSize]
	}

	jobResponse := make([]dto.JobDTO, len(jobs))
	for i, job := range jobs {
		jobResponse[i] = jobToDTO(job)
	}

	var nextCursor string
	if hasMore {
		lastJob := jobs[len(jobs)-1]
		nextCursor = EncodeJobCursor(&storage.JobCursor{
			CreatedDate: lastJob.CreatedDate,
			ID:          lastJob.ID,
		})
	}

	c.JSON(http.StatusOK, dto.ListJobsResponse{
		Jobs:       jobResponse,
		NextCursor: nextCursor,
	})
}

// GetJob handles GET /api/v1/jobs/:id
// Returns one job including its stored source payload
func (h *JobHandler) GetJob(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "id must be an integer",
		})
		return
	}

	job, err := h.storage.GetJobByID(c.Request.Context(), id)
	if errors.Is(err, domain.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Job not found",
		})
		return
	}
	if err != nil {
		h.logger.Error("Failed to get job", slog.Int64("id", id), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get job",
		})
		return
	}

	resp := jobToDTO(*job)
	resp.Raw = job.RawData

	c.JSON(http.StatusOK, resp)
}

// DeleteJob handles DELETE /api/v1/jobs/:id
// Permanently deletes a job record from the database
func (h *JobHandler) DeleteJob(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "id must be an integer",
		})
		return
	}

	err = h.storage.DeleteJob(c.Request.Context(), id)
	if errors.Is(err, domain.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Job not found",
		})
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete job", slog.Int64("id", id), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete job",
		})
		return
	}

	h.logger.Info("Job deleted", slog.Int64("id", id))

	c.Status(http.StatusNoContent)
}

// GetStats handles GET /api/v1/stats
// Aggregates stored jobs by source and experience level
func (h *JobHandler) GetStats(c *gin.Context) {
	stats, err := h.storage.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to compute stats", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to compute stats",
		})
		return
	}

	resp := dto.StatsResponse{
		TotalJobs: stats.TotalJobs,
		BySource:  stats.BySource,
		ByLevel:   stats.ByLevel,
	}
	if stats.LatestCreatedDate != nil {
		latest := stats.LatestCreatedDate.Format(time.RFC3339)
		resp.LatestCreatedDate = &latest
	}

	c.JSON(http.StatusOK, resp)
}

// ListRuns handles GET /api/v1/runs
// Lists recent ingestion cycles, newest first
func (h *JobHandler) ListRuns(c *gin.Context) {
	limit := defaultRunLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	runs, err := h.storage.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list runs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list runs",
		})
		return
	}

	runResponse := make([]dto.RunDTO, len(runs))
	for i, run := range runs {
		runResponse[i] = dto.RunDTO{
			ID:              run.ID,
			Status:          run.Status,
			StartedAt:       run.StartedAt.Format(time.RFC3339),
			ListingsFetched: run.ListingsFetched,
			RecordsCreated:  run.RecordsCreated,
			RecordsUpdated:  run.RecordsUpdated,
			ErrorMessage:    run.ErrorMessage,
		}
		if run.CompletedAt != nil {
			completed := run.CompletedAt.Format(time.RFC3339)
			runResponse[i].CompletedAt = &completed
		}
	}

	c.JSON(http.StatusOK, dto.ListRunsResponse{Runs: runResponse})
}

func jobToDTO(job model.Job) dto.JobDTO {
	return dto.JobDTO{
		ID:                 job.ID,
		ExternalID:         job.ExternalID,
		Source:             job.JobSource,
		Title:              job.Title,
		Company:            job.Company,
		Location:           job.Location,
		Description:        job.Description,
		Skills:             job.Skills,
		ExperienceYearsMin: job.ExperienceYearsMin,
		ExperienceYearsMax: job.ExperienceYearsMax,
		ExperienceLevel:    job.ExperienceLevel,
		CreatedDate:        job.CreatedDate.Format(time.RFC3339),
	}
}

func validLevel(level string) bool {
	switch experience.Level(level) {
	case experience.LevelEntry, experience.LevelMid, experience.LevelSenior, experience.LevelExecutive:
		return true
	}
	return false
}
