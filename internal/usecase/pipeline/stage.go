package pipeline

// Stage is one state of the map-guarantee state machine. Transitions are
// driven solely by per-stage success or failure; Success and Exhausted are
// terminal.
type Stage int

const (
	StageNotStarted Stage = iota
	StagePromote
	StageSynthesize
	StageMapAgent
	StageSeedSearch
	StageSuccess
	StageExhausted
)

var stageNames = map[Stage]string{
	StageNotStarted: "not_started",
	StagePromote:    "promote",
	StageSynthesize: "synthesize",
	StageMapAgent:   "map_agent",
	StageSeedSearch: "seed_search",
	StageSuccess:    "success",
	StageExhausted:  "exhausted",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the machine halts in this state.
func (s Stage) Terminal() bool {
	return s == StageSuccess || s == StageExhausted
}

// next returns the state following s given whether the attempt at s
// produced a usable collection.
func next(s Stage, ok bool) Stage {
	if ok {
		return StageSuccess
	}
	switch s {
	case StageNotStarted:
		return StagePromote
	case StagePromote:
		return StageSynthesize
	case StageSynthesize:
		return StageMapAgent
	case StageMapAgent:
		return StageSeedSearch
	default:
		return StageExhausted
	}
}
