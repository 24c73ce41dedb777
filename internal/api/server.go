// Package api exposes the HTTP boundary: login, upload, run control and
// artifact access. It resolves sessions to user identities and hands the
// pipeline nothing but that identity.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reviewflow/internal/activities"
	"reviewflow/internal/config"
	"reviewflow/internal/models"
	"reviewflow/internal/session"
	"reviewflow/internal/storage"
	"reviewflow/internal/util"
	"reviewflow/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

const sessionCookie = "session"

type Server struct {
	cfg      config.Config
	db       *storage.DB
	runRepo  *storage.RunRepo
	sessions *session.Store
	auth     session.AuthFunc
	temporal tclient.Client
}

func NewServer(cfg config.Config) *Server {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		panic(err)
	}
	runRepo := storage.NewRunRepo(db)
	if err := runRepo.EnsureSchema(ctx); err != nil {
		panic(err)
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		panic(err)
	}
	return &Server{
		cfg:      cfg,
		db:       db,
		runRepo:  runRepo,
		sessions: session.NewStore(cfg.SessionTTL),
		auth:     session.StaticAuth(cfg.Users),
		temporal: tc,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/upload", s.withUser(s.handleUpload))
	mux.HandleFunc("/run", s.withUser(s.handleRun))
	mux.HandleFunc("/status", s.withUser(s.handleStatus))
	mux.HandleFunc("/result", s.withUser(s.artifactHandler(activities.ResultFile)))
	mux.HandleFunc("/analysis", s.withUser(s.artifactHandler(activities.AnalysisFile)))
	mux.HandleFunc("/uncertain", s.withUser(s.artifactHandler(activities.UncertainFile)))
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	if !s.auth(req.Username, req.Password) {
		writeErr(w, http.StatusUnauthorized, fmt.Errorf("invalid credentials"))
		return
	}
	token := s.sessions.Create(req.Username)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if token := requestToken(r); token != "" {
		s.sessions.Drop(token)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// withUser rejects requests without a live session and passes the resolved
// user identity to the handler.
func (s *Server) withUser(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := requestToken(r)
		userID, ok := s.sessions.Resolve(token)
		if !ok {
			writeErr(w, http.StatusUnauthorized, fmt.Errorf("not authenticated"))
			return
		}
		next(w, r, userID)
	}
}

func requestToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no file provided: %w", err))
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("only CSV uploads are accepted"))
		return
	}

	inDir := filepath.Join(s.cfg.DataInRoot, userID)
	if err := util.EnsureDir(inDir); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	dst := util.SafeJoin(inDir, header.Filename)
	out, err := os.Create(dst)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("save upload: %w", err))
		return
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("save upload: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "filename": filepath.Base(dst)})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Filename          string `json:"filename,omitempty"`
		UseScoringBackend bool   `json:"use_scoring_backend"`
		HWStart           int    `json:"hw_start,omitempty"`
		HWEnd             int    `json:"hw_end,omitempty"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
			return
		}
	}
	if req.HWStart == 0 {
		req.HWStart = s.cfg.HWStart
	}
	if req.HWEnd == 0 {
		req.HWEnd = s.cfg.HWEnd
	}

	if req.Filename == "" {
		latest, err := util.LatestFile(filepath.Join(s.cfg.DataInRoot, userID), ".csv")
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		if latest == "" {
			writeErr(w, http.StatusBadRequest, util.ErrNoUpload)
			return
		}
	}

	runID := uuid.NewString()
	// One workflow ID per user: Temporal rejects the start while a run for
	// this user is still open, which is exactly the single-run rule.
	wfID := "run-" + userID
	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                                       wfID,
		TaskQueue:                                s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, workflows.ReviewPipelineWorkflow, workflows.ReviewPipelineInput{
		RunID:             runID,
		UserID:            userID,
		Filename:          req.Filename,
		UseScoringBackend: req.UseScoringBackend,
		HWStart:           req.HWStart,
		HWEnd:             req.HWEnd,
	})
	if err != nil {
		writeErr(w, http.StatusConflict, fmt.Errorf("pipeline already running"))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"success":     true,
		"run_id":      runID,
		"workflow_id": we.GetID(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var run models.PipelineRun
	resp, err := s.temporal.QueryWorkflow(r.Context(), "run-"+userID, "", workflows.QueryGetRunStatus)
	if err == nil {
		if err := resp.Get(&run); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, run)
		return
	}

	// No live workflow to query; fall back to the last persisted run, then
	// to an idle default for users who never started one.
	latest, dbErr := s.runRepo.LatestRun(r.Context(), userID)
	if dbErr != nil {
		writeErr(w, http.StatusInternalServerError, dbErr)
		return
	}
	if latest != nil {
		writeJSON(w, http.StatusOK, latest)
		return
	}
	writeJSON(w, http.StatusOK, models.PipelineRun{UserID: userID, Stage: models.StageIdle})
}

// artifactHandler serves one stage artifact from the caller's workspace.
func (s *Server) artifactHandler(filename string) func(http.ResponseWriter, *http.Request, string) {
	return func(w http.ResponseWriter, r *http.Request, userID string) {
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		path := filepath.Join(s.cfg.DataOutRoot, userID, filename)
		b, err := os.ReadFile(path)
		if err != nil {
			writeErr(w, http.StatusNotFound, fmt.Errorf("%s not available, run the pipeline first", filename))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

func (s *Server) Close() {
	if s.temporal != nil {
		s.temporal.Close()
	}
	s.db.Close()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": err.Error(),
		},
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
