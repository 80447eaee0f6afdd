// Package httpapi exposes the campaign execution core's thin HTTP surface,
// routed with go-chi/chi/v5 and go-chi/cors per the reference repo's router
// conventions.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/outreachcore/campaign-engine/internal/dispatcher"
	"github.com/outreachcore/campaign-engine/internal/lifecycle"
	"github.com/outreachcore/campaign-engine/internal/replyingest"
	"github.com/outreachcore/campaign-engine/internal/store"
)

// ReplyMode selects whether inbound replies arrive via webhook or are
// simulated through a development-only endpoint.
type ReplyMode string

const (
	ReplyModeWebhook   ReplyMode = "webhook"
	ReplyModeSimulated ReplyMode = "simulated"
)

// Deps bundles everything the router needs to build handlers.
type Deps struct {
	Store      store.Store
	Lifecycle  *lifecycle.Manager
	Ingestor   *replyingest.Ingestor
	Dispatcher *dispatcher.Dispatcher
	ReplyMode  ReplyMode
	PingDB     func() error
}

// NewRouter builds the full HTTP surface described in §6.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := &handlers{deps: deps}

	r.Get("/healthz", h.healthz)

	r.Route("/campaigns/{campaignID}", func(r chi.Router) {
		r.Post("/launch", h.launch)
		r.Post("/pause", h.pause)
		r.Post("/resume", h.resume)
		r.Delete("/", h.deleteCampaign)
		r.Get("/leads/{leadID}/email-history", h.emailHistory)
		if deps.ReplyMode == ReplyModeSimulated {
			r.Post("/leads/{leadID}/mark-replied", h.markReplied)
		}
	})

	r.Post("/jobs/{jobID}/retry", h.retryJob)
	r.Post("/webhooks/inbound", h.inboundWebhook)

	return r
}
