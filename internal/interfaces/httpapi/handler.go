package httpapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/capperdesk/grader/internal/platform/logging"
	"github.com/capperdesk/grader/internal/usecase"
)

type Handler struct {
	gradingService *usecase.GradingService
	jobQueue       usecase.JobQueue
	logger         *logging.Logger
	validator      *validator.Validate

	// rescheduleInterval > 0 makes a completed grading job enqueue the next one.
	rescheduleInterval time.Duration
}

func NewHandler(
	gradingService *usecase.GradingService,
	jobQueue usecase.JobQueue,
	rescheduleInterval time.Duration,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if jobQueue == nil {
		jobQueue = usecase.NewNoopJobQueue()
	}

	return &Handler{
		gradingService:     gradingService,
		jobQueue:           jobQueue,
		logger:             logger,
		validator:          validator.New(),
		rescheduleInterval: rescheduleInterval,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
