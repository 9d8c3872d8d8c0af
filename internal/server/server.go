// Package server exposes the current snapshot and burn history as a
// read-only HTTP projection. It consumes the snapshot holder and the
// history store; it mutates nothing.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"supplyscope/internal/history"
	"supplyscope/internal/model"
	"supplyscope/internal/reconcile"
)

// Server serves the read-only oracle API.
type Server struct {
	holder  *reconcile.Holder
	history *history.Store
	// staleAfter is the snapshot age past which the service reports
	// itself stale, a small multiple of the poll interval.
	staleAfter time.Duration
	decimals   uint8
	logger     *zap.Logger
}

func New(holder *reconcile.Holder, hist *history.Store, staleAfter time.Duration, decimals uint8, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		holder:     holder,
		history:    hist,
		staleAfter: staleAfter,
		decimals:   decimals,
		logger:     logger,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/supply", s.handleSupply).Methods(http.MethodGet)
	r.HandleFunc("/supply/total", s.handleTotal).Methods(http.MethodGet)
	r.HandleFunc("/supply/circulating", s.handleCirculating).Methods(http.MethodGet)
	r.HandleFunc("/burns", s.handleBurns).Methods(http.MethodGet)
	r.HandleFunc("/burns/history", s.handleBurnHistory).Methods(http.MethodGet)
	r.HandleFunc("/validators", s.handleValidators).Methods(http.MethodGet)
	r.HandleFunc("/price", s.handlePrice).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	return r
}

// Run serves until ctx is done.
func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) snapshot(w http.ResponseWriter) *model.SupplySnapshot {
	snap := s.holder.Load()
	if snap == nil {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return nil
	}
	return snap
}

func (s *Server) handleSupply(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, snap, s.logger)
}

// handleTotal returns the total supply in whole tokens as a bare decimal
// number, the format supply aggregators expect.
func (s *Server) handleTotal(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}
	writeNumber(w, s.wholeTokens(float64(snap.TotalSupply)))
}

func (s *Server) handleCirculating(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}
	writeNumber(w, s.wholeTokens(float64(snap.Circulating)))
}

type burnsResponse struct {
	TotalBurned     uint64            `json:"totalBurned"`
	Categories      map[string]uint64 `json:"categories"`
	Rate1h          *uint64           `json:"rate1h,omitempty"`
	Rate24h         *uint64           `json:"rate24h,omitempty"`
	Rate7d          *uint64           `json:"rate7d,omitempty"`
	FoundationBurns uint64            `json:"foundationBurns"`
}

func (s *Server) handleBurns(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}
	if snap.FeeConfig == nil {
		http.Error(w, "fee accounting unavailable", http.StatusServiceUnavailable)
		return
	}

	cfg := snap.FeeConfig
	resp := burnsResponse{
		TotalBurned: cfg.TotalBurned,
		Categories: map[string]uint64{
			"gas":       cfg.GasBurned,
			"compute":   cfg.ComputeBurned,
			"inference": cfg.InferenceBurned,
			"bridge":    cfg.BridgeBurned,
			"subnet":    cfg.SubnetBurned,
		},
		FoundationBurns: cfg.TotalFoundationBurned,
	}

	if s.history != nil {
		resp.Rate1h = rate(s.history, time.Hour)
		resp.Rate24h = rate(s.history, 24*time.Hour)
		resp.Rate7d = rate(s.history, 7*24*time.Hour)
	}

	writeJSON(w, resp, s.logger)
}

func rate(store *history.Store, window time.Duration) *uint64 {
	delta, _, ok := store.DeltaOver(window)
	if !ok {
		return nil
	}
	return &delta
}

func (s *Server) handleBurnHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "history unavailable", http.StatusServiceUnavailable)
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = "24h"
	}
	window, err := history.ParsePeriod(period)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			http.Error(w, fmt.Sprintf("invalid limit %q", raw), http.StatusBadRequest)
			return
		}
	}

	writeJSON(w, s.history.Query(window, limit), s.logger)
}

func (s *Server) handleValidators(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	validators := snap.Validators
	if validators == nil {
		validators = []model.ValidatorInfo{}
	}
	writeJSON(w, validators, s.logger)
}

func (s *Server) handlePrice(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}
	if snap.Price == nil {
		http.Error(w, "no price yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap.Price, s.logger)
}

type healthResponse struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
	AgeSecs   float64   `json:"ageSeconds,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	snap := s.holder.Load()
	if snap == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, healthResponse{Status: "starting"}, s.logger)
		return
	}

	age := snap.Age(time.Now())
	if s.staleAfter > 0 && age > s.staleAfter {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, healthResponse{Status: "stale", UpdatedAt: snap.UpdatedAt, AgeSecs: age.Seconds()}, s.logger)
		return
	}
	writeJSON(w, healthResponse{Status: "ok", UpdatedAt: snap.UpdatedAt, AgeSecs: age.Seconds()}, s.logger)
}

func (s *Server) wholeTokens(raw float64) float64 {
	scale := 1.0
	for i := uint8(0); i < s.decimals; i++ {
		scale *= 10
	}
	return raw / scale
}

func writeJSON(w http.ResponseWriter, v interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("write response", zap.Error(err))
	}
}

func writeNumber(w http.ResponseWriter, v float64) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, strconv.FormatFloat(v, 'f', -1, 64))
}
