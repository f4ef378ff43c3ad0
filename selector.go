package k8s

import "github.com/coryodaniel/k8s-sub001/internal/core"

// Selector and its requirement operators are thin aliases over
// internal/core, per spec §4.11.
type (
	Selector    = core.Selector
	Requirement = core.Requirement
	SelectorOp  = core.SelectorOp
)

const (
	OpEquals       = core.OpEquals
	OpNotEquals    = core.OpNotEquals
	OpIn           = core.OpIn
	OpNotIn        = core.OpNotIn
	OpExists       = core.OpExists
	OpDoesNotExist = core.OpDoesNotExist
)

// NewSelector returns an empty Selector; chain With* builders to add
// requirements.
func NewSelector() Selector { return core.NewSelector() }

// ParseSelector parses a labelSelector/fieldSelector wire string into a
// Selector.
func ParseSelector(s string) (Selector, error) { return core.ParseSelector(s) }
