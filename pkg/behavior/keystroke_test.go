package behavior

import "testing"

func typingEvent(metrics map[string]any) InteractionEvent {
	return InteractionEvent{
		Type: EventTyping,
		Data: map[string]map[string]any{groupKeystroke: metrics},
	}
}

func TestAnalyzeTyping_WrongEventType(t *testing.T) {
	e := NewDefaultEngine()
	ev := InteractionEvent{
		Type: EventClick,
		Data: map[string]map[string]any{groupKeystroke: {"dwell_times": []any{10.0, 20.0}}},
	}
	v := e.AnalyzeTyping(ev)
	if v.Triggered || v.Score != 0 || len(v.Details) != 0 {
		t.Fatalf("non-typing event must yield neutral verdict, got %+v", v)
	}
}

func TestAnalyzeTyping_NoMetrics(t *testing.T) {
	e := NewDefaultEngine()
	v := e.AnalyzeTyping(InteractionEvent{Type: EventTyping})
	if v.Triggered {
		t.Fatalf("expected neutral verdict, got %+v", v)
	}
}

// Rapid dwell, memorized content and paste detection are independent and
// must all accumulate: 2.0 + 4.0 + 3.0 = 9.0, severity 4.
func TestAnalyzeTyping_AdditiveScoring(t *testing.T) {
	e := NewDefaultEngine()

	v := e.AnalyzeTyping(typingEvent(map[string]any{
		"dwell_times":  []any{30.0, 30.0, 30.0},
		"flight_times": []any{5.0, 5.0, 5.0, 5.0, 5.0, 5.0},
	}))
	if !v.Triggered {
		t.Fatal("expected triggered verdict")
	}
	if v.Score != 9.0 {
		t.Errorf("score = %.1f, want 9.0", v.Score)
	}
	if v.Severity != 4 {
		t.Errorf("severity = %d, want 4", v.Severity)
	}
	for _, finding := range []string{FindingRapidTyping, FindingMemorizedContent, FindingPasteDetected} {
		if v.Details[finding] != true {
			t.Errorf("missing finding %s in %v", finding, v.Details)
		}
	}
}

func TestAnalyzeTyping_Findings(t *testing.T) {
	e := NewDefaultEngine()

	tests := []struct {
		name      string
		metrics   map[string]any
		want      string
		wantScore float64
	}{
		{
			name:      "hesitant_typing",
			metrics:   map[string]any{"dwell_times": []any{250.0, 260.0}},
			want:      FindingHesitantTyping,
			wantScore: 1.5,
		},
		{
			name: "familiar_with_victim",
			metrics: map[string]any{
				"typing_speed_wpm": 120.0,
				"victim_field":     true,
				// keep the narrative check quiet
			},
			want:      FindingFamiliarWithVictim,
			wantScore: 5.0,
		},
		{
			name: "knows_location",
			metrics: map[string]any{
				"address_field":    true,
				"hesitation_count": 0,
				"typing_speed_wpm": 40.0,
			},
			want:      FindingKnowsLocation,
			wantScore: 4.0,
		},
		{
			name: "constructing_narrative",
			metrics: map[string]any{
				"statement_field":  true,
				"typing_speed_wpm": 10.0,
			},
			want:      FindingNarrative,
			wantScore: 3.0,
		},
		{
			name:      "deceptive_pauses",
			metrics:   map[string]any{"strategic_pauses": 5},
			want:      FindingDeceptivePauses,
			wantScore: 4.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := e.AnalyzeTyping(typingEvent(tt.metrics))
			if v.Details[tt.want] != true {
				t.Errorf("missing finding %s in %v", tt.want, v.Details)
			}
			if v.Score != tt.wantScore {
				t.Errorf("score = %.1f, want %.1f", v.Score, tt.wantScore)
			}
		})
	}
}

// Only the first matching rhythm pattern may contribute.
func TestAnalyzeTyping_RhythmFirstMatchWins(t *testing.T) {
	e := NewDefaultEngine()

	v := e.AnalyzeTyping(typingEvent(map[string]any{
		"consistency_score": 0.96,
		"burst_typing":      true,
		"strategic_pauses":  5,
	}))
	if v.Details[FindingRoboticRhythm] != true {
		t.Error("expected robotic_rhythm to fire")
	}
	if _, ok := v.Details[FindingStressBursts]; ok {
		t.Error("stress_bursts must not fire alongside robotic_rhythm")
	}
	if _, ok := v.Details[FindingDeceptivePauses]; ok {
		t.Error("deceptive_pauses must not fire alongside robotic_rhythm")
	}
	if v.Score != 3.0 {
		t.Errorf("score = %.1f, want 3.0", v.Score)
	}
}

func TestAnalyzeTyping_ScoreClamped(t *testing.T) {
	e := NewDefaultEngine()

	// 2.0 + 4.0 + 3.0 + 5.0 + 3.0 = 17.0 raw, must clamp to 10.0.
	v := e.AnalyzeTyping(typingEvent(map[string]any{
		"dwell_times":       []any{30.0, 30.0},
		"flight_times":      []any{5.0, 5.0, 5.0, 5.0, 5.0, 5.0},
		"typing_speed_wpm":  120.0,
		"victim_field":      true,
		"consistency_score": 0.99,
	}))
	if v.Score != 10.0 {
		t.Errorf("score = %.1f, want clamped 10.0", v.Score)
	}
	if v.Severity != 5 {
		t.Errorf("severity = %d, want 5", v.Severity)
	}
}
