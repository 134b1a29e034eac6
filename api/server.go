// Package api exposes the resolver, the turret controller and the
// configuration boundary over HTTP. Every request works on its own
// configuration snapshot; the handlers map the error taxonomy onto status
// codes and surface fault reasons verbatim.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/openbar/barbot/config"
	"github.com/openbar/barbot/core/bartender"
	"github.com/openbar/barbot/core/logger"
	"github.com/openbar/barbot/core/metrics"
	"github.com/openbar/barbot/core/model"
	"github.com/openbar/barbot/core/turret"
)

// ConfigStore is the slice of the configuration boundary the API needs.
type ConfigStore interface {
	Snapshot() model.BarConfig
	Bar() config.Bar
	UpdateBar(config.Bar) ([]string, error)
}

// Server wires the HTTP handlers to the core components.
type Server struct {
	store   ConfigStore
	catalog func() []model.Recipe
	ctrl    *turret.Controller
	bar     *bartender.Bartender
	sink    metrics.MetricsSink
	log     logger.Logger
}

// NewServer creates the API server. The catalog function is called per
// request so a reloaded catalog is picked up without restart.
func NewServer(store ConfigStore, catalog func() []model.Recipe, ctrl *turret.Controller, bar *bartender.Bartender, sink metrics.MetricsSink, log logger.Logger) *Server {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Server{store: store, catalog: catalog, ctrl: ctrl, bar: bar, sink: sink, log: log}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/menu", s.handleMenu).Methods(http.MethodGet)
	r.HandleFunc("/api/suggestions", s.handleSuggestions).Methods(http.MethodGet)
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/rotate/{slot:[0-9]+}", s.handleRotate).Methods(http.MethodPost)
	r.HandleFunc("/api/pour/{slot:[0-9]+}", s.handlePour).Methods(http.MethodPost)
	r.HandleFunc("/api/home", s.handleHome).Methods(http.MethodPost)
	r.HandleFunc("/api/reset", s.handleReset).Methods(http.MethodPost)
	r.HandleFunc("/api/make/{id}", s.handleMake).Methods(http.MethodPost)
	r.HandleFunc("/api/config", s.handleGetConfig).Methods(http.MethodGet)
	r.HandleFunc("/api/config", s.handlePutConfig).Methods(http.MethodPut)
	return r
}

// Start runs the HTTP server until the context is canceled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("api listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
