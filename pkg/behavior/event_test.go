package behavior

import (
	"encoding/json"
	"testing"
)

func TestMetricGroupPresence(t *testing.T) {
	ev := InteractionEvent{
		Type: EventClick,
		Data: map[string]map[string]any{groupMouse: {"movement_speed": 120.0}},
	}
	if _, ok := ev.Mouse(); !ok {
		t.Error("mouse group should be present")
	}
	if _, ok := ev.Keystrokes(); ok {
		t.Error("keystroke group should be absent")
	}
	if _, ok := ev.Touch(); ok {
		t.Error("touch group should be absent")
	}
	if _, ok := (InteractionEvent{}).Mouse(); ok {
		t.Error("event without data should expose no groups")
	}
}

// Mistyped fields must decode as missing, never fail.
func TestFieldCoercion(t *testing.T) {
	raw := map[string]any{
		"movement_speed":  "fast", // wrong type
		"hover_duration":  int64(4000),
		"precision":       json.Number("0.95"),
		"click_count":     21.0,  // JSON numbers decode as float64
		"face_hover":      "yes", // wrong type
		"tremor_detected": true,
		"pause_pattern":   "note_taking",
		"overshoot_count": nil,
	}
	ev := InteractionEvent{Type: EventClick, Data: map[string]map[string]any{groupMouse: raw}}

	mm, ok := ev.Mouse()
	if !ok {
		t.Fatal("mouse group should be present")
	}
	if mm.MovementSpeed != 0 {
		t.Errorf("mistyped movement_speed = %v, want 0", mm.MovementSpeed)
	}
	if mm.HoverDuration != 4000 {
		t.Errorf("hover_duration = %v, want 4000", mm.HoverDuration)
	}
	if mm.Precision != 0.95 {
		t.Errorf("precision = %v, want 0.95", mm.Precision)
	}
	if mm.ClickCount != 21 {
		t.Errorf("click_count = %v, want 21", mm.ClickCount)
	}
	if mm.FaceHover {
		t.Error("mistyped face_hover must default to false")
	}
	if !mm.TremorDetected {
		t.Error("tremor_detected should decode true")
	}
	if mm.PausePattern != "note_taking" {
		t.Errorf("pause_pattern = %q", mm.PausePattern)
	}
	if mm.OvershootCount != 0 {
		t.Errorf("nil overshoot_count = %v, want 0", mm.OvershootCount)
	}
}

func TestFloatsFieldCoercion(t *testing.T) {
	raw := map[string]any{
		"dwell_times":  []any{30.0, int64(40), json.Number("50"), "junk", nil},
		"flight_times": "not-a-list",
	}
	ev := InteractionEvent{Type: EventTyping, Data: map[string]map[string]any{groupKeystroke: raw}}

	ks, ok := ev.Keystrokes()
	if !ok {
		t.Fatal("keystroke group should be present")
	}
	if len(ks.DwellTimes) != 3 {
		t.Fatalf("dwell_times = %v, want 3 coerced samples", ks.DwellTimes)
	}
	if ks.DwellTimes[0] != 30 || ks.DwellTimes[1] != 40 || ks.DwellTimes[2] != 50 {
		t.Errorf("dwell_times = %v", ks.DwellTimes)
	}
	if ks.FlightTimes != nil {
		t.Errorf("mistyped flight_times = %v, want nil", ks.FlightTimes)
	}
}

// JSON round-trip through the wire shape used by the ingest API.
func TestEventJSONDecode(t *testing.T) {
	payload := `{
		"session_id": "sess-1",
		"event_type": "typing",
		"event_data": {
			"keystroke_dynamics": {
				"dwell_times": [30, 32, 28],
				"typing_speed_wpm": 110,
				"victim_field": true
			}
		}
	}`
	var ev InteractionEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Type != EventTyping {
		t.Errorf("type = %s", ev.Type)
	}
	ks, ok := ev.Keystrokes()
	if !ok {
		t.Fatal("keystroke group should decode")
	}
	if ks.TypingSpeedWPM != 110 || !ks.VictimField {
		t.Errorf("metrics = %+v", ks)
	}
	v := NewDefaultEngine().AnalyzeTyping(ev)
	if v.Details[FindingRapidTyping] != true || v.Details[FindingFamiliarWithVictim] != true {
		t.Errorf("details = %v", v.Details)
	}
}
