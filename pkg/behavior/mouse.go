package behavior

// Mouse personality profiles assigned by ProfileMouse.
const (
	ProfileCalculatedObserver       = "calculated_observer"
	ProfileImpulsiveChecker         = "impulsive_checker"
	ProfileProfessionalInvestigator = "professional_investigator"
	ProfileStalkerPattern           = "stalker_pattern"
	ProfileNervousUser              = "nervous_user"
)

// ProfileMouse classifies the visitor's mouse-movement archetype for one
// event. The evaluation order is a deliberate part of the contract:
// archetype checks are first-match, the stalker override then replaces
// both the profile and the score outright, and the nervous modifier is
// applied last and is additive. Events without mouse metrics yield the
// neutral verdict.
func (e *Engine) ProfileMouse(ev InteractionEvent, history HistoryWindow) Verdict {
	mm, ok := ev.Mouse()
	if !ok {
		return neutralVerdict()
	}
	cfg := e.cfg

	profile := ""
	score := 0.0

	switch {
	case mm.MovementSpeed < cfg.ObserverMaxSpeed &&
		mm.HoverDuration > cfg.ObserverMinHover && mm.Precision > cfg.ObserverMinPrecision:
		profile = ProfileCalculatedObserver
		score = cfg.ObserverScore
		if mm.FaceHover {
			score += cfg.FaceHoverBonus
		}
	case mm.MovementSpeed > cfg.ImpulsiveMinSpeed && mm.ClickCount > cfg.ImpulsiveMinClicks &&
		mm.TrajectoryChanges > cfg.ImpulsiveMinTrajChanges:
		profile = ProfileImpulsiveChecker
		score = cfg.ImpulsiveScore
	case mm.SystematicScanning && mm.PausePattern == "note_taking":
		profile = ProfileProfessionalInvestigator
		score = cfg.InvestigatorScore
	}

	// Stalker heuristic supersedes the archetype: the score is replaced,
	// not accumulated.
	if mm.FaceTraceCount > cfg.StalkerMinFaceTraces ||
		mm.PhotoHoverDuration > cfg.StalkerMinPhotoHover ||
		mm.RepetitivePath {
		profile = ProfileStalkerPattern
		score = cfg.StalkerScore
	}

	if e.nervousSignals(mm) >= cfg.NervousMinSignals {
		if profile == "" {
			profile = ProfileNervousUser
		} else {
			profile += "_nervous"
		}
		score += cfg.NervousBonus
	}

	if profile == "" {
		return neutralVerdict()
	}

	return e.verdict(score, map[string]any{
		"profile_type": profile,
		"confidence":   mm.Confidence,
		"characteristics": map[string]any{
			"velocity":             mm.Velocity,
			"acceleration_pattern": mm.AccelerationPattern,
			"curve_preference":     mm.CurvePreference,
			"click_accuracy":       mm.ClickAccuracy,
			"hesitation_frequency": mm.HesitationFrequency,
			"scroll_behavior":      mm.ScrollBehavior,
			"drag_pattern":         mm.DragPattern,
		},
	})
}

func (e *Engine) nervousSignals(mm MouseMetrics) int {
	n := 0
	if mm.JitterScore > e.cfg.NervousMinJitter {
		n++
	}
	if mm.DirectionChanges > e.cfg.NervousMinDirChanges {
		n++
	}
	if mm.OvershootCount > e.cfg.NervousMinOvershoots {
		n++
	}
	if mm.TremorDetected {
		n++
	}
	return n
}
