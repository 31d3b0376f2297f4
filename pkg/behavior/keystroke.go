package behavior

// Finding labels emitted by AnalyzeTyping.
const (
	FindingRapidTyping        = "rapid_typing"
	FindingHesitantTyping     = "hesitant_typing"
	FindingMemorizedContent   = "memorized_content"
	FindingPasteDetected      = "paste_detected"
	FindingFamiliarWithVictim = "familiar_with_victim"
	FindingKnowsLocation      = "knows_location"
	FindingNarrative          = "constructing_narrative"
	FindingRoboticRhythm      = "robotic_rhythm"
	FindingStressBursts       = "stress_bursts"
	FindingDeceptivePauses    = "deceptive_pauses"
)

// AnalyzeTyping scores typing-pattern suspicion for one event. Checks are
// additive and independent except the rhythm analysis, where only the
// first matching pattern contributes. Non-typing events and events
// without keystroke metrics yield the neutral verdict.
func (e *Engine) AnalyzeTyping(ev InteractionEvent) Verdict {
	if ev.Type != EventTyping {
		return neutralVerdict()
	}
	ks, ok := ev.Keystrokes()
	if !ok {
		return neutralVerdict()
	}
	cfg := e.cfg

	score := 0.0
	findings := map[string]any{}

	// Dwell-time analysis.
	if len(ks.DwellTimes) > 0 {
		avg := mean(ks.DwellTimes)
		if avg < cfg.RapidDwellMs {
			score += cfg.RapidTypingScore
			findings[FindingRapidTyping] = true
		} else if avg > cfg.HesitantDwellMs {
			score += cfg.HesitantScore
			findings[FindingHesitantTyping] = true
		}
	}

	// Flight-time analysis. Low variance and paste detection are
	// independent signals; both may fire on the same sample.
	if len(ks.FlightTimes) >= cfg.FlightMinSamples &&
		popVariance(ks.FlightTimes) < cfg.FlightVarianceMax {
		score += cfg.MemorizedScore
		findings[FindingMemorizedContent] = true
	}
	if countBelow(ks.FlightTimes, cfg.PasteFlightMs) > cfg.PasteMinCount {
		score += cfg.PasteScore
		findings[FindingPasteDetected] = true
	}

	// Contextual field checks.
	if ks.VictimField && ks.TypingSpeedWPM > cfg.FamiliarMinWPM {
		score += cfg.FamiliarScore
		findings[FindingFamiliarWithVictim] = true
	}
	if ks.AddressField && ks.HesitationCount == 0 {
		score += cfg.KnowsLocationScore
		findings[FindingKnowsLocation] = true
	}
	if ks.StatementField && ks.TypingSpeedWPM < cfg.NarrativeMaxWPM {
		score += cfg.NarrativeScore
		findings[FindingNarrative] = true
	}

	// Rhythm analysis: first match wins.
	switch {
	case ks.ConsistencyScore > cfg.RoboticConsistency:
		score += cfg.RoboticScore
		findings[FindingRoboticRhythm] = true
	case ks.BurstTyping:
		score += cfg.StressBurstScore
		findings[FindingStressBursts] = true
	case ks.StrategicPauses > cfg.StrategicPauseMin:
		score += cfg.DeceptivePauseScore
		findings[FindingDeceptivePauses] = true
	}

	if score == 0 {
		return neutralVerdict()
	}
	return e.verdict(score, findings)
}
