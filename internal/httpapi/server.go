// Package httpapi wires every mode controller into INTERCEPT's HTTP
// surface: request decoding, outcome-to-status-code translation, SSE
// streaming, and the gorilla/mux + negroni + apache-logformat server
// stack.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	apachelog "github.com/lestrrat-go/apache-logformat"
	"github.com/urfave/negroni"
	"go.uber.org/zap"

	"github.com/unipheas/intercept/internal/modes"
	"github.com/unipheas/intercept/internal/oui"
	"github.com/unipheas/intercept/internal/process"
	"github.com/unipheas/intercept/internal/state"

	"github.com/gorilla/mux"
)

// Server holds every mode controller and the static assets needed to
// serve INTERCEPT's HTTP API and dashboard.
type Server struct {
	log *zap.SugaredLogger

	pager     *modes.Pager
	sensor    *modes.Sensor
	wifi      *modes.Wifi
	bluetooth *modes.Bluetooth
	adsb      *modes.Adsb
	satellite *modes.Satellite
	iridium   *modes.Iridium

	cleaner *state.Cleaner

	templateDir  string
	clientWebDir string
}

// Live-state eviction TTLs. WiFi and Bluetooth observations linger so
// a paused scan still shows its last picture; aircraft go stale fast
// since an ADS-B contact without updates has left receiver range.
const (
	wifiTTL     = 5 * time.Minute
	btTTL       = 5 * time.Minute
	aircraftTTL = time.Minute
)

// NewServer builds a Server with every mode controller wired up and its
// live-state stores registered with a cleanup sweeper.
func NewServer(log *zap.SugaredLogger, lookup *oui.Lookup, templateDir, clientWebDir string) *Server {
	s := &Server{
		log:          log,
		pager:        modes.NewPager(log),
		sensor:       modes.NewSensor(log),
		wifi:         modes.NewWifi(log, lookup),
		bluetooth:    modes.NewBluetooth(log, lookup),
		adsb:         modes.NewAdsb(log),
		satellite:    modes.NewSatellite(log),
		iridium:      modes.NewIridium(log),
		cleaner:      state.NewCleaner(),
		templateDir:  templateDir,
		clientWebDir: clientWebDir,
	}

	s.cleaner.Register(stalenessOf(s.wifi.NetworkStore(), wifiTTL))
	s.cleaner.Register(stalenessOf(s.wifi.ClientStore(), wifiTTL))
	s.cleaner.Register(stalenessOf(s.bluetooth.DeviceStore(), btTTL))
	s.cleaner.Register(stalenessOf(s.adsb.AircraftStore(), aircraftTTL))

	return s
}

func stalenessOf[K comparable, V any](store *state.Store[K, V], ttl time.Duration) state.Sweeper {
	return state.Registered[K, V]{Store: store, TTL: int64(ttl)}
}

// Cleaner exposes the registered stores' sweeper, so main can run it on
// a ticker.
func (s *Server) Cleaner() *state.Cleaner { return s.cleaner }

// Pager, Sensor, Wifi, Bluetooth, Adsb, and Iridium expose each mode
// controller so main can wire them into Prometheus metrics
// registration without httpapi depending on the metrics package.
func (s *Server) Pager() *modes.Pager         { return s.pager }
func (s *Server) Sensor() *modes.Sensor       { return s.sensor }
func (s *Server) Wifi() *modes.Wifi           { return s.wifi }
func (s *Server) Bluetooth() *modes.Bluetooth { return s.bluetooth }
func (s *Server) Adsb() *modes.Adsb           { return s.adsb }
func (s *Server) Iridium() *modes.Iridium     { return s.iridium }

// Shutdown stops every mode controller's running pipeline, used from
// the signal handler alongside process.CleanupAll.
func (s *Server) Shutdown() {
	s.pager.Stop()
	s.sensor.Stop()
	s.wifi.StopScan()
	s.bluetooth.Stop()
	s.adsb.Stop()
	s.iridium.Stop()
}

// Router builds the full mux.Router wrapped in negroni's recovery
// middleware and Apache combined-log output.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	s.registerRoutes(r)

	n := negroni.New(negroni.NewRecovery())
	n.UseHandler(apachelog.CombinedLog.Wrap(r, os.Stderr))
	return n
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warnw("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{"status": "error", "message": message})
}

func (s *Server) writeStopOutcome(w http.ResponseWriter, out modes.StopOutcome) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "stopped", "was_running": out.WasRunning})
}

// causeStatus maps an EarlyExit's classified cause to an HTTP status:
// a recognizable cause is a 400 (the operator can act on it), an
// unrecognized stderr tail is a 500.
func causeStatus(cause process.Cause) int {
	if cause == process.CauseGeneric {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// writeOutcome translates a mode controller's Outcome into the uniform
// HTTP response shape, so no handler re-derives this mapping itself.
func (s *Server) writeOutcome(w http.ResponseWriter, out modes.Outcome, label string) {
	switch {
	case out.ValidationErr != nil:
		s.writeError(w, http.StatusBadRequest, out.ValidationErr.Error())
	case out.DependencyErr != nil:
		s.writeError(w, http.StatusServiceUnavailable, out.DependencyErr.Error())
	default:
		switch out.Result {
		case process.Started:
			s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "started"})
		case process.AlreadyRunning:
			s.writeError(w, http.StatusConflict, label+" already running")
		case process.FailedToSpawn:
			s.writeError(w, http.StatusServiceUnavailable, "failed to start "+label)
		case process.EarlyExit:
			s.writeError(w, causeStatus(out.Cause), label+" exited immediately: "+string(out.Cause))
		}
	}
}

func timeoutCtx(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}
