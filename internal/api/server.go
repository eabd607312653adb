// Package api exposes the scan session over HTTP: session control,
// status, and measurement history.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/boxscan/internal/db"
	"github.com/banshee-data/boxscan/internal/httputil"
	"github.com/banshee-data/boxscan/internal/monitoring"
	"github.com/banshee-data/boxscan/internal/scan"
	"github.com/banshee-data/boxscan/internal/version"
)

// Server wires the scan session and the measurement store to HTTP
// handlers. store may be nil when history persistence is disabled.
type Server struct {
	session *scan.Session
	store   *db.DB
}

// NewServer creates an API server for the given session and store.
func NewServer(session *scan.Session, store *db.DB) *Server {
	return &Server{session: session, store: store}
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/session", s.showSession)
	mux.HandleFunc("/api/session/start", s.startSession)
	mux.HandleFunc("/api/session/stop", s.stopSession)
	mux.HandleFunc("/api/session/restart", s.restartSession)
	mux.HandleFunc("/api/session/interrupt", s.interruptSession)
	mux.HandleFunc("/api/session/resume", s.resumeSession)
	mux.HandleFunc("/api/measurements", s.listMeasurements)
	mux.HandleFunc("/api/version", s.showVersion)
	return mux
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs method, path, status, and duration through the
// monitoring logger.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf("[%d] %s %s %vms",
			lrw.statusCode, r.Method, r.RequestURI,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// sessionView is the JSON shape shared by all session endpoints.
type sessionView struct {
	State        scan.SessionState `json:"state"`
	Status       string            `json:"status"`
	Observations int               `json:"observations"`
	LastBox      *scan.BoundingBox `json:"last_box,omitempty"`
}

func (s *Server) view() sessionView {
	return sessionView{
		State:        s.session.State(),
		Status:       s.session.Status(),
		Observations: s.session.ObservationCount(),
		LastBox:      s.session.LastBox(),
	}
}

func (s *Server) showSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.view())
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	if err := s.session.Start(); err != nil {
		httputil.Conflict(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.view())
}

// restartSession is an alias for start from the Paused state; both
// perform the same full reset.
func (s *Server) restartSession(w http.ResponseWriter, r *http.Request) {
	s.startSession(w, r)
}

type stopResponse struct {
	sessionView
	MeasurementID string `json:"measurement_id,omitempty"`
}

func (s *Server) stopSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	box, err := s.session.Stop()
	if errors.Is(err, scan.ErrInsufficientData) {
		// The transition happened; only the estimate is missing.
		httputil.Conflict(w, s.session.Status())
		return
	}
	if err != nil {
		httputil.Conflict(w, err.Error())
		return
	}

	resp := stopResponse{sessionView: s.view()}
	if s.store != nil {
		id, err := s.store.RecordMeasurement(
			float64(box.Width), float64(box.Height), float64(box.Length),
			s.session.ObservationCount(),
		)
		if err != nil {
			monitoring.Logf("api: failed to record measurement: %v", err)
		} else {
			resp.MeasurementID = id
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) interruptSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	if err := s.session.HandleInterruption(); err != nil {
		httputil.Conflict(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.view())
}

func (s *Server) resumeSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	if err := s.session.HandleInterruptionEnded(); err != nil {
		httputil.Conflict(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.view())
}

func (s *Server) showVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, version.Current())
}

func (s *Server) listMeasurements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.store == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "measurement store disabled")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httputil.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	measurements, err := s.store.ListMeasurements(limit)
	if err != nil {
		monitoring.Logf("api: failed to list measurements: %v", err)
		httputil.InternalServerError(w, "failed to list measurements")
		return
	}
	if measurements == nil {
		measurements = []db.Measurement{}
	}
	httputil.WriteJSON(w, http.StatusOK, measurements)
}
