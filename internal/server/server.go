/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and wires the
per-browser form controllers to the router, the live refresh hub and
the metrics collector.
*/
package server

import (
	"fmt"
	"net/http"
	"time"

	"DietWallah/internal/config"
	"DietWallah/internal/dietplan"
	"DietWallah/internal/metrics"
	"DietWallah/internal/openaiservice"
	"DietWallah/internal/session"
	"DietWallah/internal/utility"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	// store maps browser sessions to their form controllers.
	store *session.Store

	// hub pushes reload notices to pages waiting on a plan.
	hub *utility.Hub

	metrics *metrics.Collector

	// submitRate and submitBurst bound plan submissions per client IP.
	submitRate  rate.Limit
	submitBurst int
}

// NewServer initializes a new Server instance and returns a configured *http.Server.
// Every live session is released when the returned server shuts down.
func NewServer(cfg *config.Config) *http.Server {
	client := openaiservice.NewClient(
		cfg.OpenAI.URL,
		cfg.OpenAI.Model,
		cfg.OpenAI.APIKey,
		openaiservice.WithLogger(log.Logger),
	)
	newApp := newApp(cfg, client)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", newApp.port),
		Handler:      newApp.RegisterRoutes(), // Injected from routes.go
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.OpenAI.Timeout + 30*time.Second, // JSON submit waits on the model.
	}
	server.RegisterOnShutdown(newApp.store.Close)

	return server
}

// newApp assembles the dependencies around gen, the plan generator.
func newApp(cfg *config.Config, gen dietplan.Generator) *Server {
	s := &Server{
		port:    cfg.Port,
		hub:     utility.NewHub(),
		metrics: metrics.NewCollector(),

		submitRate:  rate.Limit(cfg.SubmitRate),
		submitBurst: cfg.SubmitBurst,
	}

	factory := func(id string) *dietplan.Controller {
		return dietplan.NewController(gen,
			dietplan.WithTimeout(cfg.OpenAI.Timeout),
			dietplan.WithRecorder(s.metrics),
			dietplan.WithLogger(log.With().Str("session_id", id).Logger()),
			dietplan.WithOnChange(func(st dietplan.State) {
				// The loading page is the only one listening.
				if st.Phase != dietplan.Loading {
					s.hub.Notify(id)
				}
			}),
		)
	}

	s.store = session.NewStore(cfg.Session, cfg.IsProduction(), factory,
		session.WithEvictHook(s.hub.Forget),
		session.WithSizeHook(s.metrics.SetActiveSessions),
	)
	return s
}
