package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/capperdesk/grader/internal/usecase"
)

const gradeJobPath = "/v1/internal/jobs/grade"

type internalGradingJobRequest struct {
	StartDate   string `json:"start_date" validate:"omitempty"`
	EndDate     string `json:"end_date" validate:"omitempty"`
	WindowHours int    `json:"window_hours" validate:"omitempty,min=1,max=720"`
}

func (h *Handler) RunGradingJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunGradingJob")
	defer span.End()

	if h.gradingService == nil {
		writeError(ctx, w, fmt.Errorf("%w: grading service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeInternalGradingJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	start, end, err := resolveGradingWindow(req, time.Now().UTC())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.gradingService.GradeWindow(ctx, start, end)
	if err != nil {
		h.logger.WarnContext(ctx, "run grading job failed",
			"start", req.StartDate,
			"end", req.EndDate,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	h.scheduleNextGradingRun(r, summary.RunID)

	writeSuccess(ctx, w, http.StatusOK, summary)
}

func decodeInternalGradingJobRequest(r *http.Request) (internalGradingJobRequest, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return internalGradingJobRequest{}, fmt.Errorf("%w: reading request body: %v", usecase.ErrInvalidInput, err)
	}
	// Only a genuinely empty body means "default window"; a truncated
	// payload must fail, not silently trigger a run.
	if len(bytes.TrimSpace(body)) == 0 {
		return internalGradingJobRequest{}, nil
	}

	decoder := sonic.ConfigDefault.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()

	var req internalGradingJobRequest
	if err := decoder.Decode(&req); err != nil {
		return internalGradingJobRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}

func resolveGradingWindow(req internalGradingJobRequest, now time.Time) (time.Time, time.Time, error) {
	var start, end time.Time

	if req.EndDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date must be RFC3339: %v", usecase.ErrInvalidInput, err)
		}
		end = parsed.UTC()
	}
	if req.StartDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date must be RFC3339: %v", usecase.ErrInvalidInput, err)
		}
		start = parsed.UTC()
	}

	if req.WindowHours > 0 && start.IsZero() {
		anchor := end
		if anchor.IsZero() {
			anchor = now
		}
		start = anchor.Add(-time.Duration(req.WindowHours) * time.Hour)
	}

	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date must be before end_date", usecase.ErrInvalidInput)
	}

	return start, end, nil
}

// scheduleNextGradingRun keeps the grading loop alive without an external
// cron: each completed run enqueues the next one through the job queue.
// Deduplication by interval bucket stops overlapping invocations from
// fanning out into parallel chains.
func (h *Handler) scheduleNextGradingRun(r *http.Request, runID string) {
	if h.rescheduleInterval <= 0 {
		return
	}

	ctx, span := startSpan(r.Context(), "httpapi.Handler.scheduleNextGradingRun")
	defer span.End()

	nextRun := time.Now().UTC().Add(h.rescheduleInterval).Truncate(h.rescheduleInterval)
	deduplicationID := "grade-" + nextRun.Format("20060102T150405Z")

	err := h.jobQueue.Enqueue(ctx, gradeJobPath, map[string]any{}, h.rescheduleInterval, deduplicationID)
	if err != nil {
		h.logger.WarnContext(ctx, "schedule next grading run failed",
			"run_id", runID,
			"deduplication_id", deduplicationID,
			"error", err,
		)
		return
	}

	h.logger.InfoContext(ctx, "scheduled next grading run",
		"run_id", runID,
		"deduplication_id", deduplicationID,
		"delay", h.rescheduleInterval.String(),
	)
}
