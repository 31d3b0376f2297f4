package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"caseclosure/pkg/behavior"
)

// FingerprintRecord is one stored per-event fingerprint together with
// the verdict scores that produced it.
type FingerprintRecord struct {
	EventID     string               `json:"event_id"`
	SessionID   string               `json:"session_id"`
	Fingerprint behavior.Fingerprint `json:"fingerprint"`
	MouseScore  float64              `json:"mouse_score"`
	TypingScore float64              `json:"typing_score"`
	Severity    int                  `json:"severity"`
	CreatedAt   time.Time            `json:"created_at"`
}

// SuspicionProfile is the cumulative per-session risk state maintained
// across ingested events.
type SuspicionProfile struct {
	SessionID    string    `json:"session_id"`
	EventCount   int       `json:"event_count"`
	TotalScore   float64   `json:"total_score"`
	AvgScore     float64   `json:"avg_score"`
	PeakSeverity int       `json:"peak_severity"`
	Flags        []string  `json:"flags"`
	LastStyle    string    `json:"last_style"`
	FirstSeen    time.Time `json:"first_seen"`
	LastSeen     time.Time `json:"last_seen"`
}

// deriveAvg fills the per-event average from the running totals.
func (p *SuspicionProfile) deriveAvg() {
	if p.EventCount > 0 {
		p.AvgScore = p.TotalScore / float64(p.EventCount)
	}
}

// profileDelta is the per-event contribution folded into a profile.
type profileDelta struct {
	SessionID string
	Score     float64
	Severity  int
	Flags     []string
	Style     string
}

// eventStore abstracts persistence so the service can run against
// Postgres or fully in memory (DISABLE_DB=true, used by tests).
type eventStore interface {
	SaveEvent(ev behavior.InteractionEvent) error
	SaveFingerprint(rec FingerprintRecord) error
	RecentFingerprints(sessionID string, limit int) ([]FingerprintRecord, error)
	RecentEvents(sessionID string, limit int) (behavior.HistoryWindow, error)
	UpsertProfile(delta profileDelta) (SuspicionProfile, error)
	GetProfile(sessionID string) (*SuspicionProfile, error)
	Close() error
}

// ---- Postgres store ----

type pgStore struct {
	db *sql.DB
}

func newPGStore(dbURL string) (*pgStore, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &pgStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}

func (s *pgStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS interaction_events (
		id UUID PRIMARY KEY,
		session_id VARCHAR(255) NOT NULL,
		event_type VARCHAR(32) NOT NULL,
		event_data JSONB,
		content_hash VARCHAR(128),
		occurred_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS behavior_fingerprints (
		id SERIAL PRIMARY KEY,
		event_id UUID NOT NULL,
		session_id VARCHAR(255) NOT NULL,
		mouse_profile VARCHAR(64),
		typing_profile JSONB,
		interaction_style VARCHAR(32) NOT NULL,
		stress_indicators JSONB,
		unique_behaviors JSONB,
		mouse_score FLOAT NOT NULL,
		typing_score FLOAT NOT NULL,
		severity INT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS suspicion_profiles (
		session_id VARCHAR(255) PRIMARY KEY,
		event_count INT NOT NULL,
		total_score FLOAT NOT NULL,
		peak_severity INT NOT NULL,
		flags JSONB NOT NULL DEFAULT '{}',
		last_style VARCHAR(32),
		first_seen TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		last_seen TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_interaction_events_session ON interaction_events(session_id, occurred_at DESC);
	CREATE INDEX IF NOT EXISTS idx_behavior_fingerprints_session ON behavior_fingerprints(session_id, created_at DESC);`

	_, err := s.db.Exec(query)
	return err
}

func (s *pgStore) SaveEvent(ev behavior.InteractionEvent) error {
	dataJSON, _ := json.Marshal(ev.Data)
	_, err := s.db.Exec(`
		INSERT INTO interaction_events (id, session_id, event_type, event_data, content_hash, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.ID, ev.SessionID, string(ev.Type), string(dataJSON), ev.ContentHash, ev.Timestamp)
	return err
}

func (s *pgStore) SaveFingerprint(rec FingerprintRecord) error {
	typingJSON, _ := json.Marshal(rec.Fingerprint.TypingProfile)
	stressJSON, _ := json.Marshal(rec.Fingerprint.StressIndicators)
	uniqueJSON, _ := json.Marshal(rec.Fingerprint.UniqueBehaviors)
	_, err := s.db.Exec(`
		INSERT INTO behavior_fingerprints
		(event_id, session_id, mouse_profile, typing_profile, interaction_style,
		 stress_indicators, unique_behaviors, mouse_score, typing_score, severity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.EventID, rec.SessionID, rec.Fingerprint.MouseProfile, string(typingJSON),
		rec.Fingerprint.InteractionStyle, string(stressJSON), string(uniqueJSON),
		rec.MouseScore, rec.TypingScore, rec.Severity)
	return err
}

func (s *pgStore) RecentFingerprints(sessionID string, limit int) ([]FingerprintRecord, error) {
	rows, err := s.db.Query(`
		SELECT event_id, session_id, mouse_profile, typing_profile, interaction_style,
		       stress_indicators, unique_behaviors, mouse_score, typing_score, severity, created_at
		FROM behavior_fingerprints
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FingerprintRecord
	for rows.Next() {
		var rec FingerprintRecord
		var typingJSON, stressJSON, uniqueJSON string
		if err := rows.Scan(&rec.EventID, &rec.SessionID, &rec.Fingerprint.MouseProfile,
			&typingJSON, &rec.Fingerprint.InteractionStyle, &stressJSON, &uniqueJSON,
			&rec.MouseScore, &rec.TypingScore, &rec.Severity, &rec.CreatedAt); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(typingJSON), &rec.Fingerprint.TypingProfile)
		json.Unmarshal([]byte(stressJSON), &rec.Fingerprint.StressIndicators)
		json.Unmarshal([]byte(uniqueJSON), &rec.Fingerprint.UniqueBehaviors)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *pgStore) RecentEvents(sessionID string, limit int) (behavior.HistoryWindow, error) {
	rows, err := s.db.Query(`
		SELECT event_type, occurred_at
		FROM interaction_events
		WHERE session_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var window behavior.HistoryWindow
	for rows.Next() {
		var typ string
		var ts time.Time
		if err := rows.Scan(&typ, &ts); err != nil {
			return nil, err
		}
		window = append(window, behavior.InteractionEvent{
			SessionID: sessionID,
			Type:      behavior.EventType(typ),
			Timestamp: ts,
		})
	}
	return window, rows.Err()
}

func (s *pgStore) UpsertProfile(delta profileDelta) (SuspicionProfile, error) {
	flagSet := make(map[string]bool, len(delta.Flags))
	for _, f := range delta.Flags {
		flagSet[f] = true
	}
	flagsJSON, _ := json.Marshal(flagSet)

	var p SuspicionProfile
	var mergedFlags string
	err := s.db.QueryRow(`
		INSERT INTO suspicion_profiles (session_id, event_count, total_score, peak_severity, flags, last_style)
		VALUES ($1, 1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE SET
			event_count   = suspicion_profiles.event_count + 1,
			total_score   = suspicion_profiles.total_score + EXCLUDED.total_score,
			peak_severity = GREATEST(suspicion_profiles.peak_severity, EXCLUDED.peak_severity),
			flags         = suspicion_profiles.flags || EXCLUDED.flags,
			last_style    = EXCLUDED.last_style,
			last_seen     = NOW()
		RETURNING session_id, event_count, total_score, peak_severity, flags, last_style, first_seen, last_seen`,
		delta.SessionID, delta.Score, delta.Severity, string(flagsJSON), delta.Style).
		Scan(&p.SessionID, &p.EventCount, &p.TotalScore, &p.PeakSeverity, &mergedFlags,
			&p.LastStyle, &p.FirstSeen, &p.LastSeen)
	if err != nil {
		return SuspicionProfile{}, err
	}
	p.Flags = decodeFlagSet(mergedFlags)
	return p, nil
}

func (s *pgStore) GetProfile(sessionID string) (*SuspicionProfile, error) {
	var p SuspicionProfile
	var flagsJSON string
	err := s.db.QueryRow(`
		SELECT session_id, event_count, total_score, peak_severity, flags, last_style, first_seen, last_seen
		FROM suspicion_profiles
		WHERE session_id = $1`, sessionID).
		Scan(&p.SessionID, &p.EventCount, &p.TotalScore, &p.PeakSeverity, &flagsJSON,
			&p.LastStyle, &p.FirstSeen, &p.LastSeen)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Flags = decodeFlagSet(flagsJSON)
	return &p, nil
}

func (s *pgStore) Close() error {
	return s.db.Close()
}

func decodeFlagSet(flagsJSON string) []string {
	set := map[string]bool{}
	json.Unmarshal([]byte(flagsJSON), &set)
	flags := make([]string, 0, len(set))
	for f := range set {
		flags = append(flags, f)
	}
	sort.Strings(flags)
	return flags
}

// ---- In-memory store ----

// memStore backs the service when no database is available. It keeps
// everything in process memory with the same semantics as pgStore.
type memStore struct {
	mu           sync.Mutex
	events       map[string]behavior.HistoryWindow
	fingerprints map[string][]FingerprintRecord
	profiles     map[string]*SuspicionProfile
	flags        map[string]map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		events:       make(map[string]behavior.HistoryWindow),
		fingerprints: make(map[string][]FingerprintRecord),
		profiles:     make(map[string]*SuspicionProfile),
		flags:        make(map[string]map[string]bool),
	}
}

func (s *memStore) SaveEvent(ev behavior.InteractionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// prepend: most recent first
	s.events[ev.SessionID] = append(behavior.HistoryWindow{ev}, s.events[ev.SessionID]...)
	return nil
}

func (s *memStore) SaveFingerprint(rec FingerprintRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingerprints[rec.SessionID] = append([]FingerprintRecord{rec}, s.fingerprints[rec.SessionID]...)
	return nil
}

func (s *memStore) RecentFingerprints(sessionID string, limit int) ([]FingerprintRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.fingerprints[sessionID]
	if len(recs) > limit {
		recs = recs[:limit]
	}
	out := make([]FingerprintRecord, len(recs))
	copy(out, recs)
	return out, nil
}

func (s *memStore) RecentEvents(sessionID string, limit int) (behavior.HistoryWindow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	evs := s.events[sessionID]
	if len(evs) > limit {
		evs = evs[:limit]
	}
	window := make(behavior.HistoryWindow, len(evs))
	copy(window, evs)
	return window, nil
}

func (s *memStore) UpsertProfile(delta profileDelta) (SuspicionProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	p, ok := s.profiles[delta.SessionID]
	if !ok {
		p = &SuspicionProfile{SessionID: delta.SessionID, FirstSeen: now}
		s.profiles[delta.SessionID] = p
		s.flags[delta.SessionID] = make(map[string]bool)
	}
	p.EventCount++
	p.TotalScore += delta.Score
	if delta.Severity > p.PeakSeverity {
		p.PeakSeverity = delta.Severity
	}
	for _, f := range delta.Flags {
		s.flags[delta.SessionID][f] = true
	}
	p.LastStyle = delta.Style
	p.LastSeen = now

	out := *p
	out.Flags = make([]string, 0, len(s.flags[delta.SessionID]))
	for f := range s.flags[delta.SessionID] {
		out.Flags = append(out.Flags, f)
	}
	sort.Strings(out.Flags)
	return out, nil
}

func (s *memStore) GetProfile(sessionID string) (*SuspicionProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[sessionID]
	if !ok {
		return nil, nil
	}
	out := *p
	out.Flags = make([]string, 0, len(s.flags[sessionID]))
	for f := range s.flags[sessionID] {
		out.Flags = append(out.Flags, f)
	}
	sort.Strings(out.Flags)
	return &out, nil
}

func (s *memStore) Close() error {
	return nil
}
