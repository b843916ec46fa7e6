package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/pbaille/daemon/internal/domain"
)

// Snapshot is a freshly parsed daemon.md
type Snapshot struct {
	Sections domain.Sections
	Daemon   domain.DaemonData
	Hero     domain.HeroData
}

// LoadFunc parses daemon.md on demand
type LoadFunc func() (*Snapshot, error)

// BuildLister lists recorded builds. Implemented by *store.Store.
type BuildLister interface {
	ListBuilds(limit, offset int) ([]domain.Build, error)
	LatestBuild() (*domain.Build, error)
}

// Server serves a live preview of the daemon data
type Server struct {
	load         LoadFunc
	builds       BuildLister
	addr         string
	allowedHosts []string
	md           goldmark.Markdown
}

// New creates a preview server. builds may be nil.
func New(load LoadFunc, builds BuildLister, addr string, extraHosts []string) *Server {
	return &Server{
		load:         load,
		builds:       builds,
		addr:         addr,
		allowedHosts: append([]string{"localhost", ".local"}, extraHosts...),
		md:           goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Linkify)),
	}
}

// Handler returns the routed handler with host checks and CORS applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /daemon", s.getDaemon)
	mux.HandleFunc("GET /hero", s.getHero)
	mux.HandleFunc("GET /sections", s.listSections)
	mux.HandleFunc("GET /sections/{name}", s.getSection)
	mux.HandleFunc("GET /builds", s.listBuilds)
	mux.HandleFunc("GET /builds/latest", s.latestBuild)
	mux.HandleFunc("GET /health", s.health)

	return s.withAllowedHosts(withCORS(mux))
}

// Run starts the HTTP server
func (s *Server) Run() error {
	fmt.Printf("Starting preview server on %s\n", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// withAllowedHosts rejects requests whose Host is not allow-listed.
// Entries starting with "." match any subdomain suffix.
func (s *Server) withAllowedHosts(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.hostAllowed(r.Host) {
			writeError(w, http.StatusForbidden, "host not allowed: "+r.Host)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func (s *Server) hostAllowed(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	host = strings.ToLower(strings.Trim(host, "[]"))

	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	for _, allowed := range s.allowedHosts {
		allowed = strings.ToLower(allowed)
		if strings.HasPrefix(allowed, ".") {
			if strings.HasSuffix(host, allowed) || host == allowed[1:] {
				return true
			}
			continue
		}
		if host == allowed {
			return true
		}
	}
	return false
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) snapshot(w http.ResponseWriter) (*Snapshot, bool) {
	snap, err := s.load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return snap, true
}

func (s *Server) getDaemon(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w); ok {
		writeJSON(w, http.StatusOK, snap.Daemon)
	}
}

func (s *Server) getHero(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w); ok {
		writeJSON(w, http.StatusOK, snap.Hero)
	}
}

func (s *Server) listSections(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w); ok {
		writeJSON(w, http.StatusOK, snap.Sections)
	}
}

// getSection renders one section's markdown to HTML
func (s *Server) getSection(w http.ResponseWriter, r *http.Request) {
	name := strings.ToUpper(r.PathValue("name"))

	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	content, found := snap.Sections[name]
	if !found {
		writeError(w, http.StatusNotFound, "section not found: "+name)
		return
	}

	var buf bytes.Buffer
	if err := s.md.Convert([]byte(content), &buf); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) listBuilds(w http.ResponseWriter, r *http.Request) {
	if s.builds == nil {
		writeError(w, http.StatusNotFound, "build history disabled")
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	builds, err := s.builds.ListBuilds(limit, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if builds == nil {
		builds = []domain.Build{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"builds": builds,
		"limit":  limit,
	})
}

func (s *Server) latestBuild(w http.ResponseWriter, r *http.Request) {
	if s.builds == nil {
		writeError(w, http.StatusNotFound, "build history disabled")
		return
	}

	b, err := s.builds.LatestBuild()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "no builds yet")
		return
	}

	writeJSON(w, http.StatusOK, b)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
