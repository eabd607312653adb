package scan

import (
	"context"
	"fmt"
	"sync"

	"github.com/banshee-data/boxscan/internal/monitoring"
)

// SessionState is the lifecycle state of a scan session.
type SessionState string

const (
	StateNotStarted SessionState = "not_started" // No scan has run yet
	StateRunning    SessionState = "running"     // Surfaces are being collected
	StatePaused     SessionState = "paused"      // Collection stopped, result (if any) computed
)

// Status strings shown to the operator. Presentation detail: the API
// contract is the state enum and the last box, not these exact strings.
const (
	statusReady         = "Ready to scan"
	statusScanning      = "Scanning for surfaces"
	statusInsufficient  = "Not enough surfaces detected: point the sensor at two faces of the box"
	statusInterrupted   = "Tracking interrupted, scan paused"
	statusReportPending = "Box measured, sending report"
	statusReportOK      = "Box measured, report delivered"
)

// SurfaceDetector is the session's handle on the surface-detection
// subsystem. Begin instructs it to start producing plane observations,
// Pause to stop producing them. Observations arrive via the session's
// OnPlaneAdded/OnPlaneUpdated methods.
type SurfaceDetector interface {
	Begin() error
	Pause() error
}

// BoxReporter delivers a computed box to the external collector. One
// request, one response, no retries.
type BoxReporter interface {
	Report(ctx context.Context, box BoundingBox) error
}

// Session is the scan session state machine. It owns all per-session
// state: the collector, the last computed box, the user-facing status
// text, and a generation counter that invalidates stale asynchronous
// report completions after a restart.
//
// All mutation goes through one mutex. Detector events and report
// completions from other goroutines serialize on it, so there is exactly
// one writer at any time.
type Session struct {
	mu         sync.Mutex
	state      SessionState
	generation uint64
	collector  *Collector
	lastBox    *BoundingBox
	status     string

	detector SurfaceDetector
	reporter BoxReporter
}

// NewSession creates a session in the NotStarted state.
func NewSession(detector SurfaceDetector, reporter BoxReporter) *Session {
	return &Session{
		state:     StateNotStarted,
		collector: NewCollector(),
		status:    statusReady,
		detector:  detector,
		reporter:  reporter,
	}
}

// Start begins a scan. Valid from NotStarted (first scan) and from Paused
// (restart); both perform a full reset: observations and the last box are
// discarded, the generation advances so completions of in-flight reports
// are ignored, and the detector is told to begin producing surfaces.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state == StateRunning {
		s.mu.Unlock()
		return fmt.Errorf("scan: cannot start session in state %q", s.state)
	}
	s.resetLocked()
	s.state = StateRunning
	s.status = statusScanning
	s.mu.Unlock()

	// Begin outside the lock: the detector may deliver the first
	// observations synchronously.
	if err := s.detector.Begin(); err != nil {
		s.Fail(err)
		return fmt.Errorf("scan: surface detector failed to start: %w", err)
	}
	return nil
}

// Stop ends collection and computes the box from the surfaces gathered so
// far. On success the box is stored, returned, and dispatched to the
// reporter asynchronously. With fewer than two surfaces the session still
// moves to Paused but no box is produced and ErrInsufficientData is
// returned.
func (s *Session) Stop() (*BoundingBox, error) {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return nil, fmt.Errorf("scan: cannot stop session in state %q", s.state)
	}
	s.state = StatePaused

	box, err := EstimateBox(s.collector.Observations())
	if err != nil {
		s.status = statusInsufficient
		s.mu.Unlock()
		s.pauseDetector()
		return nil, err
	}

	s.lastBox = &box
	s.status = statusReportPending
	gen := s.generation
	s.mu.Unlock()

	s.pauseDetector()
	go s.sendReport(gen, box)

	return &box, nil
}

// HandleInterruption records an external tracking interruption. The
// session pauses without running the estimator; whatever was collected is
// kept until the session restarts.
func (s *Session) HandleInterruption() error {
	s.mu.Lock()
	if s.state == StateNotStarted {
		s.mu.Unlock()
		return fmt.Errorf("scan: no session to interrupt")
	}
	s.state = StatePaused
	s.status = statusInterrupted
	s.mu.Unlock()

	s.pauseDetector()
	return nil
}

// HandleInterruptionEnded resumes after an interruption. Tracking context
// may have been lost while interrupted, so this is a full restart rather
// than a resume.
func (s *Session) HandleInterruptionEnded() error {
	s.mu.Lock()
	if s.state != StatePaused {
		s.mu.Unlock()
		return fmt.Errorf("scan: cannot resume session in state %q", s.state)
	}
	s.mu.Unlock()
	return s.Start()
}

// Fail handles an unrecoverable detection-subsystem failure: the session
// returns to NotStarted and all accumulated state is cleared.
func (s *Session) Fail(cause error) {
	s.mu.Lock()
	s.resetLocked()
	s.state = StateNotStarted
	s.status = fmt.Sprintf("Session failed: %v", cause)
	s.mu.Unlock()

	s.pauseDetector()
	monitoring.Logf("scan: session failed: %v", cause)
}

// OnPlaneAdded forwards a surface add event to the collector. Events are
// accepted only while the session is Running.
func (s *Session) OnPlaneAdded(obs PlaneObservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return
	}
	s.collector.OnAdd(obs)
}

// OnPlaneUpdated forwards a surface update event to the collector. Events
// are accepted only while the session is Running.
func (s *Session) OnPlaneUpdated(obs PlaneObservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return
	}
	s.collector.OnUpdate(obs)
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns the current user-facing status text.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// LastBox returns a copy of the last computed box, or nil if none has
// been computed since the last reset.
func (s *Session) LastBox() *BoundingBox {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastBox == nil {
		return nil
	}
	box := *s.lastBox
	return &box
}

// ObservationCount returns the number of surfaces collected so far.
func (s *Session) ObservationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collector.Len()
}

// Generation returns the live session generation. It advances on every
// reset; report completions tagged with an older generation are ignored.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// resetLocked clears per-scan state and advances the generation. Caller
// must hold s.mu.
func (s *Session) resetLocked() {
	s.generation++
	s.collector.Reset()
	s.lastBox = nil
}

// sendReport delivers the box and routes the completion back through the
// single mutex-guarded update point. There is no cancellation: a restart
// does not abort the request, it just makes the completion stale.
func (s *Session) sendReport(generation uint64, box BoundingBox) {
	err := s.reporter.Report(context.Background(), box)
	s.completeReport(generation, err)
}

// completeReport applies a report outcome to the session status. A
// completion from a previous generation belongs to a scan that has since
// been reset and is discarded.
func (s *Session) completeReport(generation uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		monitoring.Logf("scan: discarding report completion from generation %d (live %d)", generation, s.generation)
		return
	}

	if err != nil {
		s.status = fmt.Sprintf("Report failed: %v", err)
		monitoring.Logf("scan: report failed: %v", err)
		return
	}
	s.status = statusReportOK
}

func (s *Session) pauseDetector() {
	if err := s.detector.Pause(); err != nil {
		monitoring.Logf("scan: surface detector pause: %v", err)
	}
}
