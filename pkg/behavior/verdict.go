package behavior

// Verdict is the result of one rule evaluator. A non-triggered verdict
// always carries a zero score and empty details.
type Verdict struct {
	Triggered bool           `json:"triggered"`
	Score     float64        `json:"score"`
	Severity  int            `json:"severity"`
	Details   map[string]any `json:"details"`
}

// Fingerprint is the per-event aggregation of the rule verdicts, handed
// to the risk-profile accumulator. MouseProfile is empty and
// TypingProfile nil when the corresponding evaluator did not run or did
// not trigger.
type Fingerprint struct {
	MouseProfile     string         `json:"mouse_profile,omitempty"`
	TypingProfile    map[string]any `json:"typing_profile,omitempty"`
	InteractionStyle string         `json:"interaction_style"`
	StressIndicators []string       `json:"stress_indicators"`
	UniqueBehaviors  []string       `json:"unique_behaviors"`
}

// neutralVerdict is returned whenever an evaluator has no signal to work
// with: missing metric group, wrong event type, or no rule fired.
func neutralVerdict() Verdict {
	return Verdict{Details: map[string]any{}}
}

// verdict clamps the score into [0, cfg.MaxScore] and derives the
// severity bucket as floor(score/2) capped at cfg.MaxSeverity.
func (e *Engine) verdict(score float64, details map[string]any) Verdict {
	if score <= 0 {
		return neutralVerdict()
	}
	if score > e.cfg.MaxScore {
		score = e.cfg.MaxScore
	}
	severity := int(score / 2)
	if severity > e.cfg.MaxSeverity {
		severity = e.cfg.MaxSeverity
	}
	if details == nil {
		details = map[string]any{}
	}
	return Verdict{Triggered: true, Score: score, Severity: severity, Details: details}
}
