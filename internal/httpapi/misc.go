package httpapi

import (
	"context"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/unipheas/intercept/internal/devices"
	"github.com/unipheas/intercept/internal/process"
	"github.com/unipheas/intercept/internal/tools"
)

// openTemplate parses the named *.html.got file out of templateDir,
// mirroring ap.httpd's openTemplate.
func (s *Server) openTemplate(name string) (*template.Template, error) {
	path := filepath.Join(s.templateDir, name+".html.got")
	t, err := template.ParseFiles(path)
	if err != nil {
		s.log.Warnw("failed to parse template", "name", name, "err", err)
	}
	return t, err
}

// handleIndex serves the single-page dashboard shell.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	t, err := s.openTemplate("index")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "template unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, nil); err != nil {
		s.log.Warnw("template execute failed", "err", err)
	}
}

// handleFavicon serves the dashboard's icon straight out of the
// client-web root, so a favicon request doesn't fall through to the
// static file prefix's StripPrefix routing.
func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.clientWebDir, "favicon.svg")
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	http.ServeFile(w, r, path)
}

// handleDevices reports the attached RTL-SDR dongles.
func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	devs := devices.Probe(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"devices": devs})
}

// modeDependencies is one mode's slice of the dependency report: its
// tool inventory, whether every required tool is present, and the names
// of the required tools that are not.
type modeDependencies struct {
	Tools   []tools.Status `json:"tools"`
	Ready   bool           `json:"ready"`
	Missing []string       `json:"missing"`
}

// handleDependencies reports every external tool's presence, grouped by
// the mode that needs it.
func (s *Server) handleDependencies(w http.ResponseWriter, r *http.Request) {
	byMode := make(map[string]*modeDependencies)
	for _, st := range tools.Probe(r.Context()) {
		md, ok := byMode[st.Mode]
		if !ok {
			md = &modeDependencies{Ready: true, Missing: []string{}}
			byMode[st.Mode] = md
		}
		md.Tools = append(md.Tools, st)
		if st.Required && !st.Present {
			md.Ready = false
			md.Missing = append(md.Missing, st.Binary)
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "modes": byMode})
}

// writeToolStatus reports one mode's tool inventory with a ready flag,
// the per-mode slice of the full /dependencies report.
func (s *Server) writeToolStatus(w http.ResponseWriter, mode string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var relevant []tools.Status
	ready := true
	for _, st := range tools.Probe(ctx) {
		if st.Mode != mode && st.Mode != "common" {
			continue
		}
		relevant = append(relevant, st)
		if st.Required && !st.Present {
			ready = false
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"tools":  relevant,
		"ready":  ready,
	})
}

// handleKillall stops every supervised pipeline this server owns and
// then force-kills any stray decoder process left behind by a prior
// crashed run, the host-wide recovery hammer.
func (s *Server) handleKillall(w http.ResponseWriter, r *http.Request) {
	s.Shutdown()
	killed := process.KillAllDecoders()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "killed": killed})
}
