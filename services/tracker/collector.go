package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"caseclosure/pkg/behavior"
)

const (
	historyWindowSize      = 50
	defaultFingerprintPage = 20
	maxFingerprintPage     = 200
)

type TrackerCollector struct {
	engine  *behavior.Engine
	store   eventStore
	history *historyCache
}

func NewTrackerCollector(engine *behavior.Engine, store eventStore, history *historyCache) *TrackerCollector {
	return &TrackerCollector{engine: engine, store: store, history: history}
}

type ingestRequest struct {
	SessionID   string                    `json:"session_id"`
	EventType   string                    `json:"event_type"`
	Timestamp   time.Time                 `json:"timestamp"`
	Data        map[string]map[string]any `json:"event_data"`
	ContentHash string                    `json:"content_hash"`
}

type ingestResponse struct {
	EventID     string               `json:"event_id"`
	SessionID   string               `json:"session_id"`
	Fingerprint behavior.Fingerprint `json:"fingerprint"`
	MouseScore  float64              `json:"mouse_score"`
	TypingScore float64              `json:"typing_score"`
	Severity    int                  `json:"severity"`
	Profile     SuspicionProfile     `json:"profile"`
	EvaluatedAt time.Time            `json:"evaluated_at"`
}

// IngestEvent accepts one interaction event, runs every evaluator over
// it, persists the event, its fingerprint and the updated session
// profile, and returns the evaluation result.
func (c *TrackerCollector) IngestEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" || req.EventType == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now()
	}

	ev := behavior.InteractionEvent{
		ID:          uuid.New().String(),
		SessionID:   req.SessionID,
		Type:        behavior.EventType(req.EventType),
		Timestamp:   req.Timestamp,
		Data:        req.Data,
		ContentHash: req.ContentHash,
	}

	history := c.loadHistory(r, ev.SessionID)

	start := time.Now()
	fp := c.engine.Fingerprint(ev, history)
	mouse := c.engine.ProfileMouse(ev, history)
	typing := c.engine.AnalyzeTyping(ev)
	recordEvaluation(string(ev.Type), time.Since(start))
	recordVerdicts(mouse, typing)

	rec := FingerprintRecord{
		EventID:     ev.ID,
		SessionID:   ev.SessionID,
		Fingerprint: fp,
		MouseScore:  mouse.Score,
		TypingScore: typing.Score,
		Severity:    max(mouse.Severity, typing.Severity),
		CreatedAt:   time.Now(),
	}

	if err := c.store.SaveEvent(ev); err != nil {
		log.Printf("[tracker] failed to store event: %v", err)
		http.Error(w, "Failed to store event", http.StatusInternalServerError)
		return
	}
	if err := c.store.SaveFingerprint(rec); err != nil {
		log.Printf("[tracker] failed to store fingerprint: %v", err)
		http.Error(w, "Failed to store fingerprint", http.StatusInternalServerError)
		return
	}

	profile, err := c.store.UpsertProfile(profileDelta{
		SessionID: ev.SessionID,
		Score:     mouse.Score + typing.Score,
		Severity:  rec.Severity,
		Flags:     profileFlags(fp, mouse, typing),
		Style:     fp.InteractionStyle,
	})
	if err != nil {
		log.Printf("[tracker] failed to update profile: %v", err)
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}
	profile.deriveAvg()

	if err := c.history.Push(r.Context(), ev); err != nil {
		// cache only, the database remains authoritative
		log.Printf("[tracker] history cache push failed: %v", err)
	}

	resp := ingestResponse{
		EventID:     ev.ID,
		SessionID:   ev.SessionID,
		Fingerprint: fp,
		MouseScore:  mouse.Score,
		TypingScore: typing.Score,
		Severity:    rec.Severity,
		Profile:     profile,
		EvaluatedAt: time.Now(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetFingerprints returns the most recent fingerprints for a session.
func (c *TrackerCollector) GetFingerprints(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id required", http.StatusBadRequest)
		return
	}
	limit := defaultFingerprintPage
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxFingerprintPage {
			limit = n
		}
	}

	recs, err := c.store.RecentFingerprints(sessionID, limit)
	if err != nil {
		log.Printf("[tracker] failed to load fingerprints: %v", err)
		http.Error(w, "Failed to load fingerprints", http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []FingerprintRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":   sessionID,
		"fingerprints": recs,
	})
}

// GetProfile returns the cumulative suspicion profile for a session.
func (c *TrackerCollector) GetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id required", http.StatusBadRequest)
		return
	}

	profile, err := c.store.GetProfile(sessionID)
	if err != nil {
		log.Printf("[tracker] failed to load profile: %v", err)
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}
	if profile == nil {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	profile.deriveAvg()
	writeJSON(w, http.StatusOK, profile)
}

// loadHistory prefers the cache and falls back to the database. Either
// source failing yields an empty window rather than an error.
func (c *TrackerCollector) loadHistory(r *http.Request, sessionID string) behavior.HistoryWindow {
	if window, err := c.history.Window(r.Context(), sessionID); err == nil && window != nil {
		return window
	}
	window, err := c.store.RecentEvents(sessionID, historyWindowSize)
	if err != nil {
		log.Printf("[tracker] failed to load event history: %v", err)
		return nil
	}
	return window
}

func profileFlags(fp behavior.Fingerprint, mouse, typing behavior.Verdict) []string {
	var flags []string
	if mouse.Triggered && fp.MouseProfile != "" {
		flags = append(flags, fp.MouseProfile)
	}
	if typing.Triggered {
		for finding := range fp.TypingProfile {
			flags = append(flags, finding)
		}
	}
	flags = append(flags, fp.UniqueBehaviors...)
	return flags
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[tracker] failed to encode response: %v", err)
	}
}
