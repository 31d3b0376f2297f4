// Package behavior implements rule-based risk scoring over visitor
// interaction telemetry: per-event signal extraction, heuristic rule
// evaluation (mouse dynamics, keystroke timing) and fingerprint
// aggregation. All evaluators are pure functions of their inputs and are
// safe to call concurrently; inability to evaluate always degrades to a
// neutral verdict, never an error.
package behavior

import (
	"encoding/json"
	"time"
)

// EventType classifies a single visitor interaction.
type EventType string

const (
	EventClick  EventType = "click"
	EventScroll EventType = "scroll"
	EventHover  EventType = "hover"
	EventTyping EventType = "typing"
	EventTouch  EventType = "touch"
)

// Metric group keys inside Event.Data.
const (
	groupMouse     = "mouse_metrics"
	groupKeystroke = "keystroke_dynamics"
	groupTouch     = "touch_metrics"
)

// InteractionEvent is one observed visitor action. Data maps metric-group
// names to raw numeric/boolean measurements as decoded from the client
// payload. Events are immutable once created; evaluators read them only.
type InteractionEvent struct {
	ID          string                    `json:"id,omitempty"`
	SessionID   string                    `json:"session_id,omitempty"`
	Type        EventType                 `json:"event_type"`
	Timestamp   time.Time                 `json:"timestamp"`
	Data        map[string]map[string]any `json:"event_data"`
	ContentHash string                    `json:"content_hash,omitempty"`
}

// HistoryWindow is a bounded, most-recent-first sequence of a visitor's
// prior events. Evaluators never mutate it.
type HistoryWindow []InteractionEvent

// MouseMetrics is the typed view of the mouse_metrics group. Missing
// fields decode to zero values; evaluators treat zero as "no signal".
type MouseMetrics struct {
	MovementSpeed      float64
	HoverDuration      float64
	Precision          float64
	FaceHover          bool
	ClickCount         int
	TrajectoryChanges  int
	SystematicScanning bool
	PausePattern       string

	FaceTraceCount     int
	PhotoHoverDuration float64
	RepetitivePath     bool

	JitterScore      float64
	DirectionChanges int
	OvershootCount   int
	TremorDetected   bool
	ErraticMovement  bool

	CircularPatternCount int
	DoubleClickSpeed     float64
	ScrollReversalCount  int

	// Characteristic measurements passed through into verdict details.
	Velocity            float64
	AccelerationPattern string
	CurvePreference     string
	ClickAccuracy       float64
	HesitationFrequency float64
	ScrollBehavior      string
	DragPattern         string
	Confidence          float64
}

// KeystrokeMetrics is the typed view of the keystroke_dynamics group.
type KeystrokeMetrics struct {
	DwellTimes     []float64
	FlightTimes    []float64
	TypingSpeedWPM float64

	VictimField     bool
	AddressField    bool
	StatementField  bool
	HesitationCount int

	ConsistencyScore float64
	BurstTyping      bool
	StrategicPauses  int

	IncreasedErrors bool
	IrregularRhythm bool
}

// TouchMetrics is the typed view of the touch_metrics group.
type TouchMetrics struct {
	PressureVarianceHigh   bool
	SwipeVelocityIrregular bool
}

// Mouse returns the typed mouse metrics and whether the group is present.
func (e InteractionEvent) Mouse() (MouseMetrics, bool) {
	raw, ok := e.Data[groupMouse]
	if !ok || raw == nil {
		return MouseMetrics{}, false
	}
	return MouseMetrics{
		MovementSpeed:        floatField(raw, "movement_speed"),
		HoverDuration:        floatField(raw, "hover_duration"),
		Precision:            floatField(raw, "precision"),
		FaceHover:            boolField(raw, "face_hover"),
		ClickCount:           intField(raw, "click_count"),
		TrajectoryChanges:    intField(raw, "trajectory_changes"),
		SystematicScanning:   boolField(raw, "systematic_scanning"),
		PausePattern:         stringField(raw, "pause_pattern"),
		FaceTraceCount:       intField(raw, "face_trace_count"),
		PhotoHoverDuration:   floatField(raw, "photo_hover_duration"),
		RepetitivePath:       boolField(raw, "repetitive_path"),
		JitterScore:          floatField(raw, "jitter_score"),
		DirectionChanges:     intField(raw, "direction_changes"),
		OvershootCount:       intField(raw, "overshoot_count"),
		TremorDetected:       boolField(raw, "tremor_detected"),
		ErraticMovement:      boolField(raw, "erratic_movement"),
		CircularPatternCount: intField(raw, "circular_pattern_count"),
		DoubleClickSpeed:     floatField(raw, "double_click_speed"),
		ScrollReversalCount:  intField(raw, "scroll_reversal_count"),
		Velocity:             floatField(raw, "velocity"),
		AccelerationPattern:  stringField(raw, "acceleration_pattern"),
		CurvePreference:      stringField(raw, "curve_preference"),
		ClickAccuracy:        floatField(raw, "click_accuracy"),
		HesitationFrequency:  floatField(raw, "hesitation_frequency"),
		ScrollBehavior:       stringField(raw, "scroll_behavior"),
		DragPattern:          stringField(raw, "drag_pattern"),
		Confidence:           floatField(raw, "confidence"),
	}, true
}

// Keystrokes returns the typed keystroke metrics and whether the group is
// present.
func (e InteractionEvent) Keystrokes() (KeystrokeMetrics, bool) {
	raw, ok := e.Data[groupKeystroke]
	if !ok || raw == nil {
		return KeystrokeMetrics{}, false
	}
	return KeystrokeMetrics{
		DwellTimes:       floatsField(raw, "dwell_times"),
		FlightTimes:      floatsField(raw, "flight_times"),
		TypingSpeedWPM:   floatField(raw, "typing_speed_wpm"),
		VictimField:      boolField(raw, "victim_field"),
		AddressField:     boolField(raw, "address_field"),
		StatementField:   boolField(raw, "statement_field"),
		HesitationCount:  intField(raw, "hesitation_count"),
		ConsistencyScore: floatField(raw, "consistency_score"),
		BurstTyping:      boolField(raw, "burst_typing"),
		StrategicPauses:  intField(raw, "strategic_pauses"),
		IncreasedErrors:  boolField(raw, "increased_errors"),
		IrregularRhythm:  boolField(raw, "irregular_rhythm"),
	}, true
}

// Touch returns the typed touch metrics and whether the group is present.
func (e InteractionEvent) Touch() (TouchMetrics, bool) {
	raw, ok := e.Data[groupTouch]
	if !ok || raw == nil {
		return TouchMetrics{}, false
	}
	return TouchMetrics{
		PressureVarianceHigh:   boolField(raw, "pressure_variance_high"),
		SwipeVelocityIrregular: boolField(raw, "swipe_velocity_irregular"),
	}, true
}

// Field coercion: client payloads are JSON, so numbers usually arrive as
// float64, but replayed or proxied events may carry ints, json.Number or
// mistyped values. Anything that cannot be read as the expected type is
// treated as missing (fail-open).

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func intField(m map[string]any, key string) int {
	return int(floatField(m, key))
}

func boolField(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func floatsField(m map[string]any, key string) []float64 {
	switch v := m[key].(type) {
	case []float64:
		return v
	case []any:
		out := make([]float64, 0, len(v))
		for _, item := range v {
			switch n := item.(type) {
			case float64:
				out = append(out, n)
			case float32:
				out = append(out, float64(n))
			case int:
				out = append(out, float64(n))
			case int64:
				out = append(out, float64(n))
			case json.Number:
				if f, err := n.Float64(); err == nil {
					out = append(out, f)
				}
			}
		}
		return out
	default:
		return nil
	}
}
