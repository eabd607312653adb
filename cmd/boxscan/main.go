// boxscan runs the scan service: a simulated surface detector feeding a
// scan session, a measurement store, and the HTTP control API.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/banshee-data/boxscan/internal/api"
	"github.com/banshee-data/boxscan/internal/config"
	"github.com/banshee-data/boxscan/internal/db"
	"github.com/banshee-data/boxscan/internal/httputil"
	"github.com/banshee-data/boxscan/internal/report"
	"github.com/banshee-data/boxscan/internal/scan"
	"github.com/banshee-data/boxscan/internal/sim"
	"github.com/banshee-data/boxscan/internal/version"
)

var (
	configPath = flag.String("config", "", "Path to JSON config file")
	listen     = flag.String("listen", "", "Listen address (overrides config)")
	dbPath     = flag.String("db", "", "SQLite database path (overrides config)")
	reportURL  = flag.String("report-url", "", "Result endpoint URL (overrides config)")
	useSim     = flag.Bool("sim", true, "Run the simulated surface detector")
)

// sessionSink forwards detector events to a session constructed after
// the detector. The field is set before the detector can emit anything.
type sessionSink struct {
	session *scan.Session
}

func (s *sessionSink) OnPlaneAdded(obs scan.PlaneObservation)   { s.session.OnPlaneAdded(obs) }
func (s *sessionSink) OnPlaneUpdated(obs scan.PlaneObservation) { s.session.OnPlaneUpdated(obs) }

// idleDetector stands in when the simulator is disabled and observations
// arrive from an external integration instead.
type idleDetector struct{}

func (idleDetector) Begin() error { return nil }
func (idleDetector) Pause() error { return nil }

func main() {
	flag.Parse()
	log.Printf("boxscan %s", version.Current())

	// A missing .env file is fine; env vars may come from the shell.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	cfg := config.Empty()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	// Precedence: flag, then environment, then config file, then defaults.
	listenAddr := firstOf(*listen, os.Getenv("BOXSCAN_LISTEN"), cfg.GetListen())
	databasePath := firstOf(*dbPath, os.Getenv("BOXSCAN_DB"), cfg.GetDBPath())
	endpoint := firstOf(*reportURL, os.Getenv("BOXSCAN_REPORT_URL"), cfg.GetReportURL())

	store, err := db.NewDB(databasePath)
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", databasePath, err)
	}
	defer store.Close()
	if err := store.MigrateUp(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	reporter := report.NewReporter(
		httputil.NewStandardClient(&http.Client{Timeout: cfg.GetReportTimeout()}),
		endpoint,
	)

	var detector scan.SurfaceDetector = idleDetector{}
	sink := &sessionSink{}
	if *useSim {
		detector = sim.NewDetector(sim.Config{
			BoxWidth:       cfg.GetSimBoxWidth(),
			BoxHeight:      cfg.GetSimBoxHeight(),
			BoxLength:      cfg.GetSimBoxLength(),
			NoiseSigma:     cfg.GetSimNoiseSigma(),
			RefineInterval: cfg.GetSimRefineInterval(),
			Seed:           cfg.GetSimSeed(),
		}, sink, nil)
	}

	session := scan.NewSession(detector, reporter)
	sink.session = session

	server := api.NewServer(session, store)
	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: api.LoggingMiddleware(server.ServeMux()),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("boxscan listening on %s (report endpoint %s)", listenAddr, endpoint)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	if err := detector.Pause(); err != nil {
		log.Printf("Detector pause error: %v", err)
	}
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
