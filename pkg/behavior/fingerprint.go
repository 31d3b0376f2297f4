package behavior

// Interaction style labels assigned by the aggregator.
const (
	StyleAggressiveClicker = "aggressive_clicker"
	StyleScanner           = "scanner"
	StyleCautiousExplorer  = "cautious_explorer"
	StylePassiveObserver   = "passive_observer"
	StyleBalanced          = "balanced"
)

// Stress indicator labels, emitted in the fixed check order defined by
// collectStressIndicators.
const (
	StressHandTremor        = "hand_tremor"
	StressErraticMovement   = "erratic_movement"
	StressIncreasedErrors   = "increased_error_rate"
	StressIrregularRhythm   = "irregular_typing_rhythm"
	StressPressureVariance  = "touch_pressure_variance"
	StressSwipeIrregularity = "irregular_swipe_velocity"
)

// Unique behavior labels.
const (
	BehaviorCircularPatterns  = "circular_mouse_patterns"
	BehaviorRapidDoubleClicks = "rapid_double_clicking"
	BehaviorScrollReversals   = "frequent_scroll_reversals"
	BehaviorRepetitivePattern = "repetitive_interaction_pattern"
)

// Fingerprint composes the rule verdicts for one event into a behavioral
// fingerprint. The mouse profiler runs only when mouse metrics are
// present and the keystroke analyzer only for typing events. The
// aggregator keeps no state across calls; it must be handed the full
// history window each time.
func (e *Engine) Fingerprint(ev InteractionEvent, history HistoryWindow) Fingerprint {
	fp := Fingerprint{
		InteractionStyle: e.classifyStyle(history),
		StressIndicators: e.collectStressIndicators(ev),
		UniqueBehaviors:  e.collectUniqueBehaviors(ev, history),
	}

	if _, ok := ev.Mouse(); ok {
		if v := e.ProfileMouse(ev, history); v.Triggered {
			fp.MouseProfile, _ = v.Details["profile_type"].(string)
		}
	}
	if ev.Type == EventTyping {
		if v := e.AnalyzeTyping(ev); v.Triggered {
			fp.TypingProfile = v.Details
		}
	}
	return fp
}

// classifyStyle buckets the visitor by the mix of their most recent
// events. The precedence order is part of the contract: clicks dominate
// scrolls dominate hovers.
func (e *Engine) classifyStyle(history HistoryWindow) string {
	window := history
	if len(window) > e.cfg.StyleWindow {
		window = window[:e.cfg.StyleWindow]
	}

	var clicks, scrolls, hovers int
	for _, ev := range window {
		switch ev.Type {
		case EventClick:
			clicks++
		case EventScroll:
			scrolls++
		case EventHover:
			hovers++
		}
	}

	switch {
	case clicks > e.cfg.AggressiveClicks:
		return StyleAggressiveClicker
	case scrolls > e.cfg.ScannerScrolls:
		return StyleScanner
	case hovers > e.cfg.CautiousHovers:
		return StyleCautiousExplorer
	case clicks < e.cfg.PassiveMaxEvents && scrolls < e.cfg.PassiveMaxEvents:
		return StylePassiveObserver
	default:
		return StyleBalanced
	}
}

// collectStressIndicators scans the mouse, typing and touch groups for
// fixed boolean stress flags. The output order is stable.
func (e *Engine) collectStressIndicators(ev InteractionEvent) []string {
	indicators := []string{}
	if mm, ok := ev.Mouse(); ok {
		if mm.TremorDetected {
			indicators = append(indicators, StressHandTremor)
		}
		if mm.ErraticMovement {
			indicators = append(indicators, StressErraticMovement)
		}
	}
	if ks, ok := ev.Keystrokes(); ok {
		if ks.IncreasedErrors {
			indicators = append(indicators, StressIncreasedErrors)
		}
		if ks.IrregularRhythm {
			indicators = append(indicators, StressIrregularRhythm)
		}
	}
	if tm, ok := ev.Touch(); ok {
		if tm.PressureVarianceHigh {
			indicators = append(indicators, StressPressureVariance)
		}
		if tm.SwipeVelocityIrregular {
			indicators = append(indicators, StressSwipeIrregularity)
		}
	}
	return indicators
}

// collectUniqueBehaviors flags idiosyncratic mouse habits plus immediate
// repetition in the visitor's recent event-type sequence.
func (e *Engine) collectUniqueBehaviors(ev InteractionEvent, history HistoryWindow) []string {
	behaviors := []string{}
	if mm, ok := ev.Mouse(); ok {
		if mm.CircularPatternCount > e.cfg.CircularPatternMin {
			behaviors = append(behaviors, BehaviorCircularPatterns)
		}
		// Zero means the field was absent, not an instantaneous double
		// click, so it must not flag.
		if mm.DoubleClickSpeed > 0 && mm.DoubleClickSpeed < e.cfg.DoubleClickMaxMs {
			behaviors = append(behaviors, BehaviorRapidDoubleClicks)
		}
		if mm.ScrollReversalCount > e.cfg.ScrollReversalMin {
			behaviors = append(behaviors, BehaviorScrollReversals)
		}
	}

	if len(history) > e.cfg.RepeatHistoryMin {
		window := history
		if len(window) > e.cfg.RepeatWindow {
			window = window[:e.cfg.RepeatWindow]
		}
		types := make([]EventType, len(window))
		for i, h := range window {
			types[i] = h.Type
		}
		if hasTandemRepeat(types, e.cfg.RepeatMinPatternLen) {
			behaviors = append(behaviors, BehaviorRepetitivePattern)
		}
	}
	return behaviors
}

// hasTandemRepeat reports whether any contiguous sub-sequence of length
// >= minLen immediately repeats itself, scanning every offset and every
// pattern length up to half the window.
func hasTandemRepeat(seq []EventType, minLen int) bool {
	if minLen < 1 {
		minLen = 1
	}
	for length := minLen; length <= len(seq)/2; length++ {
		for offset := 0; offset+2*length <= len(seq); offset++ {
			match := true
			for i := 0; i < length; i++ {
				if seq[offset+i] != seq[offset+length+i] {
					match = false
					break
				}
			}
			if match {
				return true
			}
		}
	}
	return false
}
