package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gobmr/gobmr/internal/model"
	"github.com/gobmr/gobmr/internal/wire"
)

// Snapshots is the slice of the poller the read endpoints serve from.
// Reads never touch the device directly.
type Snapshots interface {
	Latest() (*model.AllData, time.Duration, bool)
	Stale() bool
}

// Commander is the slice of the device client the write endpoints go
// through. The client serializes device access internally.
type Commander interface {
	SetTemperatureOverride(circuitID int, temperature float64, duration time.Duration) error
	RemoveTemperatureOverride(circuitID int) error
	SetSummerMode(on bool) error
	SetLowMode(enabled bool, temperature *int, start, end *time.Time) error
}

type Server struct {
	snapshots Snapshots
	commander Commander
}

type HealthResponse struct {
	Status string `json:"status"`
	Stale  bool   `json:"stale"`
}

type StatusResponse struct {
	AgeSeconds float64        `json:"age_seconds"`
	Stale      bool           `json:"stale"`
	Data       *model.AllData `json:"data"`
}

type OverrideRequest struct {
	Temperature     float64 `json:"temperature"`
	DurationSeconds *int    `json:"duration_seconds,omitempty"`
}

type SummerModeRequest struct {
	Enabled bool `json:"enabled"`
}

type LowModeRequest struct {
	Enabled     bool       `json:"enabled"`
	Temperature *int       `json:"temperature,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewServer(snapshots Snapshots, commander Commander) *Server {
	return &Server{
		snapshots: snapshots,
		commander: commander,
	}
}

func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	// Add CORS middleware
	corsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		mux.ServeHTTP(w, r)
	})

	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/circuits", s.handleCircuits)
	mux.HandleFunc("/circuits/", s.handleCircuitOperations)
	mux.HandleFunc("/summer-mode", s.handleSummerMode)
	mux.HandleFunc("/low-mode", s.handleLowMode)

	log.Info().Str("address", addr).Msg("Starting REST API server")

	return http.ListenAndServe(addr, corsHandler)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Stale:  s.snapshots.Stale(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	data, age, ok := s.snapshots.Latest()
	if !ok {
		s.writeError(w, http.StatusServiceUnavailable, "No snapshot from the controller yet")
		return
	}

	s.writeJSON(w, http.StatusOK, StatusResponse{
		AgeSeconds: age.Seconds(),
		Stale:      s.snapshots.Stale(),
		Data:       data,
	})
}

func (s *Server) handleCircuits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || r.URL.Path != "/circuits" {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	data, _, ok := s.snapshots.Latest()
	if !ok {
		s.writeError(w, http.StatusServiceUnavailable, "No snapshot from the controller yet")
		return
	}

	s.writeJSON(w, http.StatusOK, data.Circuits)
}

func (s *Server) handleCircuitOperations(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/circuits/")
	parts := strings.Split(path, "/")

	if len(parts) < 1 || parts[0] == "" {
		s.writeError(w, http.StatusNotFound, "Circuit ID required")
		return
	}

	circuitID, err := strconv.Atoi(parts[0])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Circuit ID must be a number")
		return
	}

	if len(parts) == 1 {
		// /circuits/{id}
		if r.Method == http.MethodGet {
			s.getCircuit(w, r, circuitID)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	} else if len(parts) == 2 && parts[1] == "override" {
		// /circuits/{id}/override
		switch r.Method {
		case http.MethodPost:
			s.createOverride(w, r, circuitID)
		case http.MethodDelete:
			s.removeOverride(w, r, circuitID)
		default:
			s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	} else {
		s.writeError(w, http.StatusNotFound, "Unknown operation")
	}
}

func (s *Server) getCircuit(w http.ResponseWriter, r *http.Request, circuitID int) {
	data, _, ok := s.snapshots.Latest()
	if !ok {
		s.writeError(w, http.StatusServiceUnavailable, "No snapshot from the controller yet")
		return
	}

	for i := range data.Circuits {
		if data.Circuits[i].ID == circuitID {
			s.writeJSON(w, http.StatusOK, data.Circuits[i])
			return
		}
	}

	s.writeError(w, http.StatusNotFound, "Circuit not found")
}

func (s *Server) createOverride(w http.ResponseWriter, r *http.Request, circuitID int) {
	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	var duration time.Duration
	if req.DurationSeconds != nil {
		if *req.DurationSeconds <= 0 {
			s.writeError(w, http.StatusBadRequest, "duration_seconds must be positive")
			return
		}
		duration = time.Duration(*req.DurationSeconds) * time.Second
	}

	err := s.commander.SetTemperatureOverride(circuitID, req.Temperature, duration)
	if err != nil {
		s.writeCommandError(w, err)
		return
	}

	log.Info().
		Int("circuit", circuitID).
		Float64("temperature", req.Temperature).
		Dur("duration", duration).
		Msg("Override created via API")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) removeOverride(w http.ResponseWriter, r *http.Request, circuitID int) {
	if err := s.commander.RemoveTemperatureOverride(circuitID); err != nil {
		s.writeCommandError(w, err)
		return
	}

	log.Info().Int("circuit", circuitID).Msg("Override removed via API")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleSummerMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SummerModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if err := s.commander.SetSummerMode(req.Enabled); err != nil {
		s.writeCommandError(w, err)
		return
	}

	log.Info().Bool("enabled", req.Enabled).Msg("Summer mode updated via API")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleLowMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req LowModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if err := s.commander.SetLowMode(req.Enabled, req.Temperature, req.Start, req.End); err != nil {
		s.writeCommandError(w, err)
		return
	}

	log.Info().Bool("enabled", req.Enabled).Msg("Low mode updated via API")
	w.WriteHeader(http.StatusOK)
}

// writeCommandError maps a failed device command to a status code:
// arguments the protocol cannot encode are the caller's fault, everything
// else is a device-side failure.
func (s *Server) writeCommandError(w http.ResponseWriter, err error) {
	var vErr *wire.ValidationError
	if errors.As(err, &vErr) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Error().Err(err).Msg("Device command failed")
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
