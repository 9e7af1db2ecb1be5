package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"curie-dashboard/internal/core"
	"curie-dashboard/internal/telemetry"
	"curie-dashboard/pkg"
)

// RecordSource is anything able to produce a raw patient record; the
// Postgres repository and the upstream HTTP client both satisfy it.
type RecordSource interface {
	FetchRecord(ctx context.Context, patientID string) (*pkg.PatientRecord, error)
}

// Server bundles together the dependencies required by HTTP handlers.
// It implements http.Handler so it can be passed to http.ListenAndServe.
type Server struct {
	Records  RecordSource
	Chat     *core.ChatService
	Sessions *core.SessionStore
	Log      *zap.Logger

	router *mux.Router
}

// NewServer constructs a Server and wires its routes.
func NewServer(records RecordSource, chat *core.ChatService, sessions *core.SessionStore, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		Records:  records,
		Chat:     chat,
		Sessions: sessions,
		Log:      log,
	}
	r := mux.NewRouter()
	r.HandleFunc("/api/patient/{id}", s.handleGetPatient).Methods(http.MethodGet)
	r.HandleFunc("/api/patient/{id}/telemetry", s.handleGetTelemetry).Methods(http.MethodGet)
	r.HandleFunc("/api/chat", s.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions", s.handleCreateSession).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}/messages", s.handleGetMessages).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions/{id}/messages", s.handlePostMessage).Methods(http.MethodPost)
	r.Use(s.loggingMiddleware)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.Log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleGetPatient returns the raw patient record. Fetch failures
// surface as a generic upstream error; internals are never leaked.
func (s *Server) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["id"]
	record, err := s.Records.FetchRecord(r.Context(), patientID)
	if err != nil {
		s.Log.Error("patient record fetch failed", zap.String("patient_id", patientID), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "patient record unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleGetTelemetry returns the defaulted snapshot plus trends. A fetch
// failure still answers 200 with the all-default snapshot, marked
// degraded so the display layer does not present it as live data. The
// emergency flag is derived from the snapshot alone.
func (s *Server) handleGetTelemetry(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["id"]
	record, err := s.Records.FetchRecord(r.Context(), patientID)
	status := pkg.SyncLive
	if err != nil {
		s.Log.Warn("telemetry degraded to defaults", zap.String("patient_id", patientID), zap.Error(err))
		record = nil
		status = pkg.SyncDegraded
	}
	snap := telemetry.Normalize(record)
	writeJSON(w, http.StatusOK, pkg.TelemetryReport{
		Telemetry:   snap,
		Trends:      telemetry.Trends(record),
		SyncStatus:  status,
		IsEmergency: snap.IsDecoViolated,
	})
}

// handleChat implements the stateless chat proxy contract: the
// interactive layer posts its transcript and telemetry, the reply (or
// the fallback on failure) comes back as {content}.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req pkg.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, pkg.ChatResponse{Content: "invalid request body"})
		return
	}
	resp, err := s.Chat.Complete(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type createSessionRequest struct {
	PatientID string `json:"patient_id"`
}

type sessionResponse struct {
	SessionID  string         `json:"session_id"`
	SyncStatus pkg.SyncStatus `json:"sync_status"`
	Messages   []pkg.Message  `json:"messages"`
}

// handleCreateSession starts a chat session for a patient: fetch the
// record, normalize it and seed the greeting. A failed fetch still
// creates a session on the default snapshot, reported as degraded.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PatientID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "patient_id is required"})
		return
	}
	record, err := s.Records.FetchRecord(r.Context(), req.PatientID)
	status := pkg.SyncLive
	if err != nil {
		s.Log.Warn("session created on default telemetry", zap.String("patient_id", req.PatientID), zap.Error(err))
		record = nil
		status = pkg.SyncDegraded
	}
	sess := core.NewSession(req.PatientID, telemetry.Normalize(record), s.Chat.Persona)
	s.Sessions.Save(sess)
	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID:  sess.ID,
		SyncStatus: status,
		Messages:   sess.Transcript(),
	})
}

// handleGetMessages returns the ordered transcript of a session.
func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.Sessions.Get(mux.Vars(r)["id"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, sess.Transcript())
}

type postMessageRequest struct {
	Content string `json:"content"`
}

// handlePostMessage runs one chat turn on a stored session. Empty input
// is silently ignored; a busy session answers 409 without touching the
// transcript.
func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.Sessions.Get(mux.Vars(r)["id"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	reply, err := s.Chat.Send(r.Context(), sess, req.Content)
	switch {
	case errors.Is(err, core.ErrEmptyInput):
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, core.ErrSessionBusy):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a reply is already in progress"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	default:
		writeJSON(w, http.StatusOK, reply)
	}
}
