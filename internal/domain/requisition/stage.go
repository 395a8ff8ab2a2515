package requisition

import "fmt"

// Stage represents one of the six sequential workflow stages a requisition
// passes through. The order of stageOrder is the single source of truth for
// stage sequencing; Next, Index and CanAccessStage all derive from it.
type Stage string

const (
	StageResident    Stage = "resident"
	StageProcurement Stage = "procurement"
	StageTreasury    Stage = "treasury"
	StageCEO         Stage = "ceo"
	StagePayment     Stage = "payment"
	StageStorekeeper Stage = "storekeeper"
)

var stageOrder = [...]Stage{
	StageResident,
	StageProcurement,
	StageTreasury,
	StageCEO,
	StagePayment,
	StageStorekeeper,
}

// Stages returns all workflow stages in order
func Stages() []Stage {
	return stageOrder[:]
}

// IsValid checks if the stage is a valid Stage
func (s Stage) IsValid() bool {
	for _, st := range stageOrder {
		if st == s {
			return true
		}
	}
	return false
}

// String returns the string representation of Stage
func (s Stage) String() string {
	return string(s)
}

// Index returns the position of the stage in the workflow order, -1 if invalid
func (s Stage) Index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the following stage, or false if this is the last stage
func (s Stage) Next() (Stage, bool) {
	idx := s.Index()
	if idx < 0 || idx >= len(stageOrder)-1 {
		return "", false
	}
	return stageOrder[idx+1], true
}

// ParseStage parses a string into a Stage
func ParseStage(s string) (Stage, error) {
	stage := Stage(s)
	if !stage.IsValid() {
		return "", fmt.Errorf("invalid stage: %q", s)
	}
	return stage, nil
}

// Status represents the workflow status of a requisition
type Status string

const (
	StatusDraft     Status = "draft"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// PendingStatus returns the pending status for a stage (e.g. "pending-treasury")
func PendingStatus(stage Stage) Status {
	return Status("pending-" + string(stage))
}

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusCompleted, StatusRejected:
		return true
	}
	for _, st := range stageOrder {
		if s == PendingStatus(st) {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the status is completed or rejected
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}
