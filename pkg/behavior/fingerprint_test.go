package behavior

import (
	"reflect"
	"testing"
)

func historyOf(types ...EventType) HistoryWindow {
	h := make(HistoryWindow, len(types))
	for i, typ := range types {
		h[i] = InteractionEvent{Type: typ}
	}
	return h
}

func repeatTypes(typ EventType, n int) []EventType {
	out := make([]EventType, n)
	for i := range out {
		out[i] = typ
	}
	return out
}

func TestClassifyStyle(t *testing.T) {
	e := NewDefaultEngine()

	tests := []struct {
		name  string
		types []EventType
		want  string
	}{
		{
			name:  "aggressive_clicker",
			types: append(repeatTypes(EventClick, 16), repeatTypes(EventScroll, 4)...),
			want:  StyleAggressiveClicker,
		},
		{
			// scrolls outrank hovers even when both cutoffs are met
			name:  "scanner_over_cautious",
			types: append(repeatTypes(EventScroll, 11), repeatTypes(EventHover, 9)...),
			want:  StyleScanner,
		},
		{
			name:  "cautious_explorer",
			types: append(repeatTypes(EventHover, 9), repeatTypes(EventClick, 5)...),
			want:  StyleCautiousExplorer,
		},
		{
			name:  "passive_observer",
			types: []EventType{EventHover, EventClick, EventScroll, EventHover},
			want:  StylePassiveObserver,
		},
		{
			name:  "balanced",
			types: append(repeatTypes(EventClick, 5), repeatTypes(EventScroll, 5)...),
			want:  StyleBalanced,
		},
		{
			name:  "empty_history",
			types: nil,
			want:  StylePassiveObserver,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.classifyStyle(historyOf(tt.types...))
			if got != tt.want {
				t.Errorf("style = %s, want %s", got, tt.want)
			}
		})
	}
}

// Only the 20 most recent history entries may influence the style.
func TestClassifyStyle_WindowBound(t *testing.T) {
	e := NewDefaultEngine()

	// 20 hovers up front, a pile of clicks beyond the window
	types := append(repeatTypes(EventHover, 20), repeatTypes(EventClick, 30)...)
	if got := e.classifyStyle(historyOf(types...)); got != StyleCautiousExplorer {
		t.Errorf("style = %s, want %s (clicks outside window must not count)", got, StyleCautiousExplorer)
	}
}

func TestCollectStressIndicators_OrderAndContent(t *testing.T) {
	e := NewDefaultEngine()

	ev := InteractionEvent{
		Type: EventTouch,
		Data: map[string]map[string]any{
			groupMouse:     {"tremor_detected": true},
			groupKeystroke: {"increased_errors": true},
			groupTouch:     {"pressure_variance_high": true},
		},
	}
	got := e.collectStressIndicators(ev)
	want := []string{StressHandTremor, StressIncreasedErrors, StressPressureVariance}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("indicators = %v, want %v", got, want)
	}

	if got := e.collectStressIndicators(InteractionEvent{Type: EventClick}); len(got) != 0 {
		t.Errorf("expected no indicators, got %v", got)
	}
}

func TestCollectUniqueBehaviors_MouseFlags(t *testing.T) {
	e := NewDefaultEngine()

	ev := mouseEvent(map[string]any{
		"circular_pattern_count": 4,
		"double_click_speed":     80.0,
		"scroll_reversal_count":  6,
	})
	got := e.collectUniqueBehaviors(ev, nil)
	want := []string{BehaviorCircularPatterns, BehaviorRapidDoubleClicks, BehaviorScrollReversals}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("behaviors = %v, want %v", got, want)
	}

	// absent double_click_speed decodes to 0 and must not flag
	none := e.collectUniqueBehaviors(mouseEvent(map[string]any{}), nil)
	if len(none) != 0 {
		t.Errorf("expected no behaviors for empty metrics, got %v", none)
	}
}

func TestTandemRepeatDetection(t *testing.T) {
	e := NewDefaultEngine()

	// [click scroll click scroll hover ...]: click,scroll repeats immediately
	repeating := historyOf(
		EventClick, EventScroll, EventClick, EventScroll, EventHover,
		EventTouch, EventHover, EventClick, EventScroll, EventHover,
		EventClick,
	)
	got := e.collectUniqueBehaviors(InteractionEvent{Type: EventClick}, repeating)
	if !reflect.DeepEqual(got, []string{BehaviorRepetitivePattern}) {
		t.Errorf("behaviors = %v, want repetitive_interaction_pattern", got)
	}

	// no contiguous sub-sequence immediately repeats
	clean := historyOf(
		EventClick, EventScroll, EventHover, EventClick, EventScroll,
		EventTouch, EventClick, EventHover, EventScroll, EventTouch,
		EventClick,
	)
	if got := e.collectUniqueBehaviors(InteractionEvent{Type: EventClick}, clean); len(got) != 0 {
		t.Errorf("expected no behaviors, got %v", got)
	}

	// the detector only runs once history exceeds 10 entries
	short := historyOf(
		EventClick, EventScroll, EventClick, EventScroll, EventHover,
	)
	if got := e.collectUniqueBehaviors(InteractionEvent{Type: EventClick}, short); len(got) != 0 {
		t.Errorf("expected no behaviors for short history, got %v", got)
	}
}

func TestFingerprint_Composition(t *testing.T) {
	e := NewDefaultEngine()

	ev := InteractionEvent{
		Type: EventTyping,
		Data: map[string]map[string]any{
			groupMouse: {
				"movement_speed":   600.0,
				"click_count":      25,
				"face_trace_count": 4,
			},
			groupKeystroke: {
				"dwell_times": []any{30.0, 30.0},
			},
		},
	}
	history := historyOf(repeatTypes(EventClick, 16)...)

	fp := e.Fingerprint(ev, history)
	if fp.MouseProfile != ProfileStalkerPattern {
		t.Errorf("mouse profile = %s, want %s", fp.MouseProfile, ProfileStalkerPattern)
	}
	if fp.TypingProfile == nil || fp.TypingProfile[FindingRapidTyping] != true {
		t.Errorf("typing profile = %v, want rapid_typing finding", fp.TypingProfile)
	}
	if fp.InteractionStyle != StyleAggressiveClicker {
		t.Errorf("style = %s, want %s", fp.InteractionStyle, StyleAggressiveClicker)
	}
}

func TestFingerprint_NoSignal(t *testing.T) {
	e := NewDefaultEngine()

	fp := e.Fingerprint(InteractionEvent{Type: EventScroll}, nil)
	if fp.MouseProfile != "" || fp.TypingProfile != nil {
		t.Errorf("expected empty profiles, got %+v", fp)
	}
	if fp.InteractionStyle != StylePassiveObserver {
		t.Errorf("style = %s, want %s", fp.InteractionStyle, StylePassiveObserver)
	}
	if len(fp.StressIndicators) != 0 || len(fp.UniqueBehaviors) != 0 {
		t.Errorf("expected empty indicator lists, got %+v", fp)
	}
}

func TestFingerprint_Stateless(t *testing.T) {
	e := NewDefaultEngine()

	ev := mouseEvent(map[string]any{"face_trace_count": 4})
	history := historyOf(repeatTypes(EventScroll, 12)...)
	first := e.Fingerprint(ev, history)
	second := e.Fingerprint(ev, history)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregator is not stateless: %+v vs %+v", first, second)
	}
}
