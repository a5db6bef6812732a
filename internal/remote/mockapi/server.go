// Package mockapi is an in-process stand-in for the platform API. It serves
// the endpoints httpapi.Client speaks and lets tests and the mock-server
// command script denials, missing installs, failures and latency.
package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"
	"github.com/rileyhilliard/hublink/internal/logger"
	"github.com/rileyhilliard/hublink/internal/remote"
)

// Options scripts the mock platform.
type Options struct {
	Targets []remote.Target

	// Unprovisioned targets refuse credentials until installed.
	Unprovisioned []int64

	// Remap gives the id an install returns for a target, when it differs.
	Remap map[int64]int64

	// Denied targets refuse credential requests outright.
	Denied []int64

	// DenyInstall makes every install report cancellation.
	DenyInstall bool

	// FailMethods answer with an API error, e.g. "groups.setSettings".
	FailMethods []string

	// Latency delays every response.
	Latency time.Duration

	// TokenTTL bounds how long issued credentials stay valid.
	TokenTTL time.Duration

	Logger logger.Logger
}

type tokenGrant struct {
	GroupID int64
	Scope   string
}

// Server is the mock platform.
type Server struct {
	opts   Options
	router *mux.Router
	tokens *cache.Cache
	log    logger.Logger

	mu          sync.Mutex
	provisioned map[int64]bool
	denied      map[int64]bool
	failing     map[string]bool
	settings    map[int64]map[string]string
	calls       map[string]int
}

// New creates a mock server. No listener is opened until ListenAndServe.
func New(opts Options) *Server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	s := &Server{
		opts:        opts,
		tokens:      cache.New(opts.TokenTTL, 10*time.Minute),
		log:         opts.Logger,
		provisioned: make(map[int64]bool),
		denied:      make(map[int64]bool),
		failing:     make(map[string]bool),
		settings:    make(map[int64]map[string]string),
		calls:       make(map[string]int),
	}
	if s.log == nil {
		s.log = logger.Noop()
	}
	for _, t := range opts.Targets {
		s.provisioned[t.ID] = true
	}
	for _, id := range opts.Unprovisioned {
		s.provisioned[id] = false
	}
	for _, id := range opts.Denied {
		s.denied[id] = true
	}
	for _, m := range opts.FailMethods {
		s.failing[m] = true
	}

	router := mux.NewRouter()
	router.HandleFunc("/auth/community_token", s.handleCommunityToken).Methods(http.MethodPost)
	router.HandleFunc("/auth/user_token", s.handleUserToken).Methods(http.MethodPost)
	router.HandleFunc("/apps/add_to_community", s.handleAddToCommunity).Methods(http.MethodPost)
	router.HandleFunc("/method/{method}", s.handleMethod).Methods(http.MethodPost)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	router.Use(s.latencyMiddleware, s.loggingMiddleware)
	s.router = router

	return s
}

// Handler returns the HTTP handler, for use with httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
// ready, when non-nil, receives the bound address once listening.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(addr string)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	if ready != nil {
		ready(ln.Addr().String())
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("error shutting down mock server: %v", err)
		}
		return nil
	}
}

// Calls returns how many times an endpoint or method was hit. Methods are
// keyed by name ("groups.setSettings"), endpoints by path ("auth/community_token").
func (s *Server) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

// Settings returns the settings applied to groupID.
func (s *Server) Settings(groupID int64) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.settings[groupID]))
	for k, v := range s.settings[groupID] {
		out[k] = v
	}
	return out
}

// Provisioned reports whether the app is installed for groupID.
func (s *Server) Provisioned(groupID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.provisioned[groupID]
}

// SetDenied flips the denial of credential requests for groupID.
func (s *Server) SetDenied(groupID int64, denied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denied[groupID] = denied
}

func (s *Server) count(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
}

type tokenRequest struct {
	AppID   int64  `json:"app_id"`
	GroupID int64  `json:"group_id"`
	Scope   string `json:"scope"`
}

func (s *Server) handleCommunityToken(w http.ResponseWriter, r *http.Request) {
	s.count("auth/community_token")

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, 100, "invalid request body")
		return
	}
	defer r.Body.Close()

	s.mu.Lock()
	denied := s.denied[req.GroupID]
	provisioned, known := s.provisioned[req.GroupID]
	s.mu.Unlock()

	switch {
	case denied:
		respondWithError(w, http.StatusForbidden, remote.CodeUserCancelled, "user denied access")
		return
	case !known || !provisioned:
		respondWithError(w, http.StatusConflict, remote.CodeNotProvisioned, "app is not installed in this community")
		return
	}

	token := "c1." + uuid.NewString()
	s.tokens.Set(token, tokenGrant{GroupID: req.GroupID, Scope: req.Scope}, cache.DefaultExpiration)
	respondWithJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func (s *Server) handleUserToken(w http.ResponseWriter, r *http.Request) {
	s.count("auth/user_token")

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, 100, "invalid request body")
		return
	}
	defer r.Body.Close()

	token := "u1." + uuid.NewString()
	s.tokens.Set(token, tokenGrant{Scope: req.Scope}, cache.DefaultExpiration)
	respondWithJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func (s *Server) handleAddToCommunity(w http.ResponseWriter, r *http.Request) {
	s.count("apps/add_to_community")

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, 100, "invalid request body")
		return
	}
	defer r.Body.Close()

	if s.opts.DenyInstall {
		respondWithError(w, http.StatusForbidden, remote.CodeUserCancelled, "installation cancelled")
		return
	}

	id := req.GroupID
	if mapped, ok := s.opts.Remap[id]; ok {
		id = mapped
	}
	s.mu.Lock()
	s.provisioned[id] = true
	s.mu.Unlock()

	respondWithJSON(w, http.StatusOK, map[string]int64{"group_id": id})
}

func (s *Server) handleMethod(w http.ResponseWriter, r *http.Request) {
	method := mux.Vars(r)["method"]
	s.count(method)

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, 100, "invalid form")
		return
	}

	raw, ok := s.tokens.Get(r.PostForm.Get("access_token"))
	if !ok {
		respondWithError(w, http.StatusUnauthorized, remote.CodeAuthFailed, "user authorization failed: invalid access_token")
		return
	}
	grant := raw.(tokenGrant)

	s.mu.Lock()
	failing := s.failing[method]
	s.mu.Unlock()
	if failing {
		respondWithError(w, http.StatusOK, remote.CodeTooManyCalls, "too many requests per second")
		return
	}

	switch method {
	case "groups.get":
		s.handleGroupsGet(w)
	case "groups.setSettings", "groups.setLongPollSettings":
		s.handleSettings(w, r, method, grant)
	default:
		respondWithError(w, http.StatusNotFound, 3, "unknown method passed")
	}
}

func (s *Server) handleGroupsGet(w http.ResponseWriter) {
	items := make([]map[string]interface{}, 0, len(s.opts.Targets))
	for _, t := range s.opts.Targets {
		items = append(items, map[string]interface{}{
			"id":        t.ID,
			"name":      t.Name,
			"photo_100": t.Photo,
		})
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"response": map[string]interface{}{
			"count": len(items),
			"items": items,
		},
	})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request, method string, grant tokenGrant) {
	groupID, err := strconv.ParseInt(r.PostForm.Get("group_id"), 10, 64)
	if err != nil || groupID <= 0 {
		respondWithError(w, http.StatusBadRequest, 100, "one of the parameters specified was missing or invalid: group_id")
		return
	}
	if grant.GroupID != groupID {
		respondWithError(w, http.StatusForbidden, remote.CodeAccessDenied, "access denied: token does not belong to this community")
		return
	}

	s.mu.Lock()
	applied := s.settings[groupID]
	if applied == nil {
		applied = make(map[string]string)
		s.settings[groupID] = applied
	}
	for key, vals := range r.PostForm {
		if key == "access_token" || len(vals) == 0 {
			continue
		}
		applied[method+"."+key] = vals[0]
	}
	s.mu.Unlock()

	respondWithJSON(w, http.StatusOK, map[string]int{"response": 1})
}

func (s *Server) latencyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Latency > 0 {
			t := time.NewTimer(s.opts.Latency)
			select {
			case <-t.C:
			case <-r.Context().Done():
				t.Stop()
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, status, code int, message string) {
	respondWithJSON(w, status, map[string]interface{}{
		"error": remote.APIError{Code: code, Message: message},
	})
}
