// Command intercept runs the signal-intelligence orchestrator HTTP
// server: one process supervising the pager, sensor, WiFi, Bluetooth,
// ADS-B, satellite, and Iridium capture modes described alongside this
// package, serving its dashboard and JSON/SSE API on a single address.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/unipheas/intercept/internal/aplog"
	"github.com/unipheas/intercept/internal/httpapi"
	"github.com/unipheas/intercept/internal/metrics"
	"github.com/unipheas/intercept/internal/oui"
	"github.com/unipheas/intercept/internal/process"
)

var (
	addr         = flag.String("addr", "0.0.0.0:5050", "address to listen on")
	templateDir  = flag.String("template_dir", "templates", "location of httpd templates")
	clientWebDir = flag.String("client-web_dir", "client-web", "location of httpd client web root")
	ouiFile      = flag.String("oui-file", "", "optional path to an IEEE OUI database for MAC vendor lookups")
	logLevel     = flag.String("log-level", "info", "log level (debug, info, warn, error)")

	sweepInterval = time.Minute
)

func main() {
	flag.Parse()

	if err := aplog.SetLevel(*logLevel); err != nil {
		panic(err)
	}
	log := aplog.New("intercept")
	defer process.CleanupAll()

	lookup := oui.New(*ouiFile)
	server := httpapi.NewServer(log, lookup, *templateDir, *clientWebDir)

	metrics.Register(
		map[string]metrics.ModeSource{
			"pager":     server.Pager(),
			"sensor":    server.Sensor(),
			"wifi":      server.Wifi(),
			"bluetooth": server.Bluetooth(),
			"adsb":      server.Adsb(),
			"iridium":   server.Iridium(),
		},
		map[string]metrics.SlotStatus{
			"pager":     server.Pager().Slot(),
			"sensor":    server.Sensor().Slot(),
			"wifi":      server.Wifi().Slot(),
			"bluetooth": server.Bluetooth().Slot(),
			"adsb":      server.Adsb().Slot(),
			"iridium":   server.Iridium().Slot(),
		},
	)

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: server.Router(),
	}

	go runSweeper(log, server)

	go func() {
		log.Infow("listening", "addr", *addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("listen failed", "err", err)
		}
	}()

	waitForShutdown(log, httpServer, server)
}

// runSweeper periodically evicts stale live-state records (WiFi
// networks/clients, Bluetooth devices, aircraft) on a fixed tick.
func runSweeper(log *zap.SugaredLogger, server *httpapi.Server) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		n := server.Cleaner().SweepAll(time.Now().UnixNano())
		if n > 0 {
			log.Debugw("swept stale live-state records", "count", n)
		}
	}
}

// waitForShutdown blocks until SIGINT/SIGTERM, then stops every
// supervised pipeline and the HTTP listener in turn.
func waitForShutdown(log *zap.SugaredLogger, httpServer *http.Server, server *httpapi.Server) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Infow("shutting down")
	server.Shutdown()
	process.CleanupAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
}
