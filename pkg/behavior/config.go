package behavior

// Thresholds holds every tunable the rule evaluators compare against,
// including the per-rule score weights. Values are set once at engine
// construction; the engine never mutates them, so a single Thresholds
// value can back any number of concurrent evaluations.
type Thresholds struct {
	// Mouse archetypes.
	ObserverMaxSpeed     float64 // px/s below which movement reads as deliberate
	ObserverMinHover     float64 // ms
	ObserverMinPrecision float64
	ObserverScore        float64
	FaceHoverBonus       float64

	ImpulsiveMinSpeed       float64 // px/s
	ImpulsiveMinClicks      int
	ImpulsiveMinTrajChanges int
	ImpulsiveScore          float64

	InvestigatorScore float64 // kept low, overlaps legitimate research use

	// Stalker override. Fires independently of the archetypes and
	// replaces their score outright.
	StalkerMinFaceTraces int
	StalkerMinPhotoHover float64 // ms
	StalkerScore         float64

	// Nervous modifier: additive on top of whatever profile is set.
	NervousMinJitter     float64
	NervousMinDirChanges int
	NervousMinOvershoots int
	NervousMinSignals    int
	NervousBonus         float64

	// Keystroke dynamics.
	RapidDwellMs        float64
	RapidTypingScore    float64
	HesitantDwellMs     float64
	HesitantScore       float64
	FlightVarianceMax   float64 // ms^2, population variance
	FlightMinSamples    int
	MemorizedScore      float64
	PasteFlightMs       float64
	PasteMinCount       int
	PasteScore          float64
	FamiliarMinWPM      float64
	FamiliarScore       float64
	KnowsLocationScore  float64
	NarrativeMaxWPM     float64
	NarrativeScore      float64
	RoboticConsistency  float64
	RoboticScore        float64
	StressBurstScore    float64
	StrategicPauseMin   int
	DeceptivePauseScore float64

	// Interaction style classification window and cutoffs.
	StyleWindow      int
	AggressiveClicks int
	ScannerScrolls   int
	CautiousHovers   int
	PassiveMaxEvents int

	// Unique behaviors.
	CircularPatternMin  int
	DoubleClickMaxMs    float64
	ScrollReversalMin   int
	RepeatHistoryMin    int
	RepeatWindow        int
	RepeatMinPatternLen int

	// Verdict bounds.
	MaxScore    float64
	MaxSeverity int
}

// DefaultThresholds returns the compiled-in tuning used in production.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ObserverMaxSpeed:     100,
		ObserverMinHover:     3000,
		ObserverMinPrecision: 0.9,
		ObserverScore:        6.0,
		FaceHoverBonus:       2.0,

		ImpulsiveMinSpeed:       500,
		ImpulsiveMinClicks:      20,
		ImpulsiveMinTrajChanges: 30,
		ImpulsiveScore:          5.0,

		InvestigatorScore: 2.0,

		StalkerMinFaceTraces: 3,
		StalkerMinPhotoHover: 20000,
		StalkerScore:         8.0,

		NervousMinJitter:     0.7,
		NervousMinDirChanges: 50,
		NervousMinOvershoots: 5,
		NervousMinSignals:    2,
		NervousBonus:         2.0,

		RapidDwellMs:        50,
		RapidTypingScore:    2.0,
		HesitantDwellMs:     200,
		HesitantScore:       1.5,
		FlightVarianceMax:   100,
		FlightMinSamples:    5,
		MemorizedScore:      4.0,
		PasteFlightMs:       10,
		PasteMinCount:       5,
		PasteScore:          3.0,
		FamiliarMinWPM:      100,
		FamiliarScore:       5.0,
		KnowsLocationScore:  4.0,
		NarrativeMaxWPM:     20,
		NarrativeScore:      3.0,
		RoboticConsistency:  0.95,
		RoboticScore:        3.0,
		StressBurstScore:    2.0,
		StrategicPauseMin:   3,
		DeceptivePauseScore: 4.0,

		StyleWindow:      20,
		AggressiveClicks: 15,
		ScannerScrolls:   10,
		CautiousHovers:   8,
		PassiveMaxEvents: 3,

		CircularPatternMin:  3,
		DoubleClickMaxMs:    100,
		ScrollReversalMin:   5,
		RepeatHistoryMin:    10,
		RepeatWindow:        10,
		RepeatMinPatternLen: 2,

		MaxScore:    10.0,
		MaxSeverity: 5,
	}
}

// Engine evaluates interaction events against a fixed Thresholds value.
// The zero Engine is not usable; construct with NewEngine.
type Engine struct {
	cfg Thresholds
}

// NewEngine returns an engine bound to the given thresholds.
func NewEngine(cfg Thresholds) *Engine {
	return &Engine{cfg: cfg}
}

// NewDefaultEngine returns an engine with DefaultThresholds.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultThresholds())
}

// Thresholds returns a copy of the engine's configuration.
func (e *Engine) Thresholds() Thresholds {
	return e.cfg
}
