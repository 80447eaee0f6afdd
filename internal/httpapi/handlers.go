package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/outreachcore/campaign-engine/internal/domain"
	"github.com/outreachcore/campaign-engine/internal/pkg/httputil"
	"github.com/outreachcore/campaign-engine/internal/xerrors"
)

type handlers struct {
	deps Deps
}

type launchRequest struct {
	StartTime *time.Time `json:"start_time"`
}

func (h *handlers) launch(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")

	var req launchRequest
	if r.ContentLength > 0 {
		if !httputil.Decode(w, r, &req) {
			return
		}
	}

	campaign, err := h.deps.Lifecycle.Launch(r.Context(), campaignID, req.StartTime)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, campaign)
}

func (h *handlers) pause(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")
	campaign, err := h.deps.Lifecycle.Pause(r.Context(), campaignID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, campaign)
}

func (h *handlers) resume(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")
	campaign, err := h.deps.Lifecycle.Resume(r.Context(), campaignID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, campaign)
}

func (h *handlers) deleteCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")
	if err := h.deps.Lifecycle.Delete(r.Context(), campaignID); err != nil {
		writeError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *handlers) emailHistory(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	history, err := h.deps.Store.ListJobHistory(r.Context(), leadID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, history)
}

func (h *handlers) retryJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if err := h.deps.Store.ResetJobForRetry(r.Context(), jobID, time.Now().UTC()); err != nil {
		writeError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *handlers) markReplied(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	ok, err := h.deps.Store.UpdateLeadStatus(r.Context(), leadID,
		[]domain.LeadStatus{domain.LeadPending, domain.LeadContacted}, domain.LeadReplied)
	if err != nil {
		writeError(w, err)
		return
	}
	if ok {
		if err := h.deps.Store.CancelPendingJobsForLead(r.Context(), leadID); err != nil {
			writeError(w, err)
			return
		}
	}
	httputil.NoContent(w)
}

func (h *handlers) inboundWebhook(w http.ResponseWriter, r *http.Request) {
	if !h.deps.Ingestor.Authenticate(r) {
		httputil.Unauthorized(w, "invalid webhook credentials")
		return
	}
	if err := h.deps.Ingestor.Ingest(r.Context(), r); err != nil {
		// Per §4.4, malformed requests are logged and still answered 200 so
		// the provider doesn't retry-storm a payload we'll never parse.
		httputil.OK(w, map[string]string{"status": "ignored"})
		return
	}
	httputil.OK(w, map[string]string{"status": "accepted"})
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}

	if h.deps.PingDB != nil {
		if err := h.deps.PingDB(); err != nil {
			status["status"] = "degraded"
			status["db_error"] = err.Error()
		}
	}
	if h.deps.Dispatcher != nil {
		age := h.deps.Dispatcher.HeartbeatAge()
		status["dispatcher_heartbeat_age_seconds"] = age.Seconds()
		stats := h.deps.Dispatcher.Stats()
		status["dispatcher_stats"] = stats
	}
	httputil.OK(w, status)
}

func writeError(w http.ResponseWriter, err error) {
	var xe *xerrors.Error
	if errors.As(err, &xe) {
		switch {
		case errors.Is(xe, xerrors.ErrNotFound):
			httputil.ErrorCode(w, http.StatusNotFound, xe.Message, string(xe.Code))
		case errors.Is(xe, xerrors.ErrInvalidState):
			httputil.ErrorCode(w, http.StatusConflict, xe.Message, string(xe.Code))
		case errors.Is(xe, xerrors.ErrUnauthorized):
			httputil.ErrorCode(w, http.StatusUnauthorized, xe.Message, string(xe.Code))
		default:
			httputil.ErrorCode(w, http.StatusBadRequest, xe.Message, string(xe.Code))
		}
		return
	}
	httputil.InternalError(w, err)
}
