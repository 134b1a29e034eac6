package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/openbar/barbot/config"
	"github.com/openbar/barbot/core/bartender"
	"github.com/openbar/barbot/core/metrics"
	"github.com/openbar/barbot/core/model"
	"github.com/openbar/barbot/core/resolve"
	"github.com/openbar/barbot/core/turret"
)

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	cfg := s.store.Snapshot()
	catalog := s.catalog()
	resolved, diags := resolve.Resolve(cfg, catalog)
	for _, d := range diags {
		s.log.Warnf("catalog: recipe %s skipped: %s", d.RecipeID, d.Reason)
	}
	makeable := 0
	out := make([]model.ResolvedRecipe, 0, len(resolved))
	all := r.URL.Query().Get("all") == "1"
	for _, rr := range resolved {
		if rr.Makeable {
			makeable++
		}
		if rr.Makeable || all {
			out = append(out, rr)
		}
	}
	_ = s.sink.RecordMenu(metrics.MenuRecord{Catalog: len(catalog), Makeable: makeable, Time: time.Now()})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	maxMissing := 1
	if v := r.URL.Query().Get("missing"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "missing must be a non-negative integer")
			return
		}
		maxMissing = n
	}
	out := resolve.Suggestions(s.store.Snapshot(), s.catalog(), maxMissing)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleRotate(w http.ResponseWriter, r *http.Request) {
	slot, err := strconv.Atoi(mux.Vars(r)["slot"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid slot")
		return
	}
	cfg := s.store.Snapshot()
	if err := s.ctrl.RotateTo(slot, cfg.SafeMode); err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handlePour(w http.ResponseWriter, r *http.Request) {
	slot, err := strconv.Atoi(mux.Vars(r)["slot"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid slot")
		return
	}
	var body struct {
		Ounces float64 `json:"ounces"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	cfg := s.store.Snapshot()
	job := model.NewDispenseJob(slot, body.Ounces)
	if err := s.ctrl.Pour(job, cfg.SafeMode); err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job_id": job.ID, "status": s.ctrl.Status()})
}

func (s *Server) handleHome(w http.ResponseWriter, _ *http.Request) {
	cfg := s.store.Snapshot()
	if err := s.ctrl.Home(cfg.SafeMode); err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	cfg := s.store.Snapshot()
	if err := s.ctrl.Reset(cfg.SafeMode); err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleMake(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	cfg := s.store.Snapshot()
	res, err := s.bar.Make(cfg, s.catalog(), id)
	if err != nil {
		var nm bartender.NotMakeableError
		switch {
		case errors.As(err, &nm):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":   "not makeable",
				"missing": nm.Missing,
			})
		case turret.IsFault(err) || errors.Is(err, turret.ErrBusy):
			writeControllerError(w, err)
		default:
			writeError(w, http.StatusNotFound, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Bar())
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var b config.Bar
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	warns, err := s.store.UpdateBar(b)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"warnings": warns, "config": s.store.Bar()})
}

// writeControllerError maps the controller error taxonomy onto HTTP status
// codes. Fault reasons are surfaced verbatim.
func writeControllerError(w http.ResponseWriter, err error) {
	var ve turret.ValidationError
	var wp turret.WrongPositionError
	var hf turret.HardwareFault
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, turret.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &wp):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &hf):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
