package model

// Stage identifies one step of the search status strip shown in the UI.
// The strip is a projection of the single orchestrator call's lifecycle,
// not independently scheduled work.
type Stage string

const (
	StageInterpret Stage = "interpret_query"
	StageDiscover  Stage = "discover_businesses"
	StageEnrich    Stage = "enrich_contacts"
	StageCompile   Stage = "compile_results"
)

// Stages lists the strip's steps in display order.
func Stages() []Stage {
	return []Stage{StageInterpret, StageDiscover, StageEnrich, StageCompile}
}

// StageStatus is the display state of a single stage.
type StageStatus string

const (
	StageIdle      StageStatus = "idle"
	StageRunning   StageStatus = "running"
	StageCompleted StageStatus = "completed"
	StageError     StageStatus = "error"
)

// StageState pairs a stage with its current status for API responses.
type StageState struct {
	Stage  Stage       `json:"stage"`
	Status StageStatus `json:"status"`
}

// SearchStatus represents the lifecycle of a stored search run.
type SearchStatus string

const (
	SearchStatusRunning  SearchStatus = "running"
	SearchStatusComplete SearchStatus = "complete"
	SearchStatusFailed   SearchStatus = "failed"
)
