package httpapi

import (
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// gz wraps a plain JSON/HTML handler with gzip compression. It is
// never applied to a /stream route: gzip's internal buffering holds
// back exactly the bytes an SSE client is waiting on.
func gz(h http.HandlerFunc) http.Handler {
	return gziphandler.GzipHandler(h)
}

func (s *Server) registerRoutes(r *mux.Router) {
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/favicon.svg", s.handleFavicon).Methods(http.MethodGet)
	r.Handle("/devices", gz(s.handleDevices)).Methods(http.MethodGet)
	r.Handle("/dependencies", gz(s.handleDependencies)).Methods(http.MethodGet)
	r.HandleFunc("/killall", s.handleKillall).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/start", s.handlePagerStart).Methods(http.MethodPost)
	r.HandleFunc("/stop", s.handlePagerStop).Methods(http.MethodPost)
	r.Handle("/status", gz(s.handlePagerStatus)).Methods(http.MethodGet)
	r.HandleFunc("/logging", s.handlePagerLogging).Methods(http.MethodPost)
	r.HandleFunc("/stream", s.handleStream(s.pager.Bus)).Methods(http.MethodGet)

	r.HandleFunc("/start_sensor", s.handleSensorStart).Methods(http.MethodPost)
	r.HandleFunc("/stop_sensor", s.handleSensorStop).Methods(http.MethodPost)
	r.HandleFunc("/stream_sensor", s.handleStream(s.sensor.Bus)).Methods(http.MethodGet)

	r.Handle("/wifi/interfaces", gz(s.handleWifiInterfaces)).Methods(http.MethodGet)
	r.HandleFunc("/wifi/monitor", s.handleWifiMonitor).Methods(http.MethodPost)
	r.HandleFunc("/wifi/scan/start", s.handleWifiScanStart).Methods(http.MethodPost)
	r.HandleFunc("/wifi/scan/stop", s.handleWifiScanStop).Methods(http.MethodPost)
	r.HandleFunc("/wifi/stream", s.handleStream(s.wifi.Bus)).Methods(http.MethodGet)
	r.Handle("/wifi/networks", gz(s.handleWifiNetworks)).Methods(http.MethodGet)
	r.HandleFunc("/wifi/deauth", s.handleWifiDeauth).Methods(http.MethodPost)
	r.HandleFunc("/wifi/handshake/capture", s.handleWifiHandshakeCapture).Methods(http.MethodPost)
	r.HandleFunc("/wifi/handshake/status", s.handleWifiHandshakeStatus).Methods(http.MethodPost)
	r.HandleFunc("/wifi/pmkid/capture", s.handleWifiPMKIDCapture).Methods(http.MethodPost)
	r.HandleFunc("/wifi/pmkid/status", s.handleWifiPMKIDStatus).Methods(http.MethodPost)
	r.HandleFunc("/wifi/pmkid/stop", s.handleWifiPMKIDStop).Methods(http.MethodPost)

	r.Handle("/bt/interfaces", gz(s.handleBtInterfaces)).Methods(http.MethodGet)
	r.HandleFunc("/bt/scan/start", s.handleBtScanStart).Methods(http.MethodPost)
	r.HandleFunc("/bt/scan/stop", s.handleBtScanStop).Methods(http.MethodPost)
	r.HandleFunc("/bt/stream", s.handleStream(s.bluetooth.Bus)).Methods(http.MethodGet)
	r.Handle("/bt/devices", gz(s.handleBtDevices)).Methods(http.MethodGet)
	r.HandleFunc("/bt/reset", s.handleBtReset).Methods(http.MethodPost)
	r.HandleFunc("/bt/enum", s.handleBtEnum).Methods(http.MethodPost)
	r.HandleFunc("/bt/reload-oui", s.handleBtReloadOUI).Methods(http.MethodPost)

	r.Handle("/adsb/tools", gz(s.handleAdsbTools)).Methods(http.MethodGet)
	r.HandleFunc("/adsb/start", s.handleAdsbStart).Methods(http.MethodPost)
	r.HandleFunc("/adsb/stop", s.handleAdsbStop).Methods(http.MethodPost)
	r.HandleFunc("/adsb/stream", s.handleStream(s.adsb.Bus)).Methods(http.MethodGet)

	r.HandleFunc("/satellite/predict", s.handleSatellitePredict).Methods(http.MethodPost)
	r.HandleFunc("/satellite/position", s.handleSatellitePosition).Methods(http.MethodPost)
	r.HandleFunc("/satellite/update-tle", s.handleSatelliteUpdateTLE).Methods(http.MethodPost)
	r.HandleFunc("/satellite/celestrak/{category}", s.handleSatelliteCelestrak).Methods(http.MethodGet)

	r.Handle("/iridium/tools", gz(s.handleIridiumTools)).Methods(http.MethodGet)
	r.HandleFunc("/iridium/start", s.handleIridiumStart).Methods(http.MethodPost)
	r.HandleFunc("/iridium/stop", s.handleIridiumStop).Methods(http.MethodPost)
	r.HandleFunc("/iridium/stream", s.handleStream(s.iridium.Bus)).Methods(http.MethodGet)

	r.PathPrefix("/client-web/").Handler(
		http.StripPrefix("/client-web/", http.FileServer(http.Dir(s.clientWebDir))))
}
