// Package sim provides a simulated surface-detection subsystem. It stands
// in for depth-sensing hardware: on Begin it reports two roughly
// orthogonal unclassified planes (two adjacent faces of a box) and then
// keeps refining their extents with noisy updates until paused.
package sim

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/banshee-data/boxscan/internal/monitoring"
	"github.com/banshee-data/boxscan/internal/scan"
	"github.com/banshee-data/boxscan/internal/timeutil"
)

const (
	// defaultRefineInterval paces extent updates when the config does
	// not set one.
	defaultRefineInterval = 250 * time.Millisecond

	// minExtent keeps noisy measurements physically meaningful.
	minExtent = 0.001
)

// EventSink receives the detector's surface events. scan.Session
// satisfies it.
type EventSink interface {
	OnPlaneAdded(scan.PlaneObservation)
	OnPlaneUpdated(scan.PlaneObservation)
}

// Config describes the simulated box and measurement behaviour.
type Config struct {
	// True dimensions of the simulated box, metres.
	BoxWidth  float64
	BoxHeight float64
	BoxLength float64

	// NoiseSigma is the standard deviation of the Gaussian noise added
	// to every reported extent, metres.
	NoiseSigma float64

	// RefineInterval is the pause between extent update rounds. Zero
	// uses defaultRefineInterval.
	RefineInterval time.Duration

	// Seed makes the noise sequence reproducible. Zero seeds from a
	// random value.
	Seed uint64
}

// DefaultConfig returns a plausible parcel-sized box with a centimetre
// of measurement noise.
func DefaultConfig() Config {
	return Config{
		BoxWidth:   0.3,
		BoxHeight:  0.2,
		BoxLength:      0.45,
		NoiseSigma:     0.01,
		RefineInterval: defaultRefineInterval,
	}
}

// Detector is the simulated surface detector. It emits two plane add
// events synchronously from Begin, then update events on every tick of
// its clock until Pause.
type Detector struct {
	mu      sync.Mutex
	cfg     Config
	sink    EventSink
	clock   timeutil.Clock
	noise   distuv.Normal
	planes  []scan.PlaneObservation
	stop    chan struct{}
	running bool
}

// NewDetector creates a detector delivering events to sink, paced by
// clock ticks at the given interval. A nil clock uses real time.
func NewDetector(cfg Config, sink EventSink, clock timeutil.Clock) *Detector {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Detector{
		cfg:   cfg,
		sink:  sink,
		clock: clock,
		noise: distuv.Normal{
			Mu:    0,
			Sigma: cfg.NoiseSigma,
			Src:   rand.NewPCG(seed, seed),
		},
	}
}

// Begin starts surface production. Two fresh planes are reported
// immediately; earlier planes are forgotten, as a real detector loses its
// anchors when tracking restarts.
func (d *Detector) Begin() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return fmt.Errorf("sim: detector already running")
	}
	d.running = true
	d.stop = make(chan struct{})

	// Two adjacent faces sharing the vertical edge: the front face
	// (height x width) and the side face (height x length).
	d.planes = []scan.PlaneObservation{
		{
			ID:           uuid.NewString(),
			ExtentHeight: d.measure(d.cfg.BoxHeight),
			ExtentWidth:  d.measure(d.cfg.BoxWidth),
			Center:       scan.Vector3{Z: float32(d.cfg.BoxHeight / 2)},
			Normal:       scan.Vector3{Y: -1},
		},
		{
			ID:           uuid.NewString(),
			ExtentHeight: d.measure(d.cfg.BoxHeight),
			ExtentWidth:  d.measure(d.cfg.BoxLength),
			Center: scan.Vector3{
				X: float32(d.cfg.BoxWidth / 2),
				Z: float32(d.cfg.BoxHeight / 2),
			},
			Normal: scan.Vector3{X: 1},
		},
	}

	for _, p := range d.planes {
		d.sink.OnPlaneAdded(p)
	}
	monitoring.Logf("sim: detecting %d surfaces", len(d.planes))

	go d.refineLoop(d.stop)
	return nil
}

// Pause stops surface production. Safe to call when not running.
func (d *Detector) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}
	d.running = false
	close(d.stop)
	return nil
}

// Running reports whether the detector is producing surfaces.
func (d *Detector) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// refineLoop emits one update per plane on every clock tick, re-measuring
// the extents with fresh noise.
func (d *Detector) refineLoop(stop chan struct{}) {
	interval := d.cfg.RefineInterval
	if interval <= 0 {
		interval = defaultRefineInterval
	}
	ticker := d.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			d.emitUpdates()
		}
	}
}

func (d *Detector) emitUpdates() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.planes[0].ExtentHeight = d.measure(d.cfg.BoxHeight)
	d.planes[0].ExtentWidth = d.measure(d.cfg.BoxWidth)
	d.planes[1].ExtentHeight = d.measure(d.cfg.BoxHeight)
	d.planes[1].ExtentWidth = d.measure(d.cfg.BoxLength)
	updates := make([]scan.PlaneObservation, len(d.planes))
	copy(updates, d.planes)
	d.mu.Unlock()

	for _, p := range updates {
		d.sink.OnPlaneUpdated(p)
	}
}

// measure returns the true dimension plus Gaussian noise, clamped to stay
// positive.
func (d *Detector) measure(trueDim float64) float32 {
	v := trueDim + d.noise.Rand()
	if v < minExtent {
		v = minExtent
	}
	return float32(v)
}
