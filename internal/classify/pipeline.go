package classify

import (
	"context"
	"strings"

	"github.com/mark3labs/flyt"
)

// Stage names one completion call of the pipeline.
type Stage string

const (
	StageFilter    Stage = "filter"
	StageSentiment Stage = "sentiment"
)

// State is the position of a request in the pipeline:
//
//	Filtering -> Classifying -> Done
//	Filtering -> Rejected
//	Filtering | Classifying -> Failed
type State int

const (
	StateFiltering State = iota
	StateClassifying
	StateDone
	StateRejected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateFiltering:
		return "filtering"
	case StateClassifying:
		return "classifying"
	case StateDone:
		return "done"
	case StateRejected:
		return "rejected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// stage returns the stage that runs while in s.
func (s State) stage() Stage {
	if s == StateFiltering {
		return StageFilter
	}
	return StageSentiment
}

// Shared store keys and flow actions.
const (
	keyText   = "text"
	keyState  = "state"
	keyAnswer = "filter_answer"
	keyLabel  = "label"

	actionRelevant flyt.Action = "relevant"
	actionRejected flyt.Action = "rejected"
)

// stageError tags a completion failure with the stage that produced it,
// surviving the wrapping flyt applies to node errors.
type stageError struct {
	stage Stage
	err   error
}

func (e *stageError) Error() string { return e.err.Error() }

func (e *stageError) Unwrap() error { return e.err }

// stageNode runs one completion call. Prep records the running state and
// Exec returns the normalized answer. The BaseNode default of a single
// attempt means a failed call is never retried.
type stageNode struct {
	*flyt.BaseNode
	name    Stage
	running State
	prompt  func(string) string
	params  Params
	c       *Classifier
}

func (n *stageNode) Prep(_ context.Context, shared *flyt.SharedStore) (any, error) {
	shared.Set(keyState, n.running)
	text, _ := shared.Get(keyText)
	return text, nil
}

func (n *stageNode) Exec(ctx context.Context, prepResult any) (any, error) {
	text, _ := prepResult.(string)
	answer, err := n.c.complete(ctx, n.name, n.prompt(text), n.params)
	if err != nil {
		return nil, &stageError{stage: n.name, err: err}
	}
	return normalize(answer), nil
}

type filterNode struct{ stageNode }

func (n *filterNode) Post(_ context.Context, shared *flyt.SharedStore, _, execResult any) (flyt.Action, error) {
	answer, _ := execResult.(string)
	shared.Set(keyAnswer, answer)
	if answer != "yes" {
		shared.Set(keyState, StateRejected)
		return actionRejected, nil
	}
	return actionRelevant, nil
}

type sentimentNode struct{ stageNode }

func (n *sentimentNode) Post(_ context.Context, shared *flyt.SharedStore, _, execResult any) (flyt.Action, error) {
	label, _ := execResult.(string)
	shared.Set(keyLabel, label)
	shared.Set(keyState, StateDone)
	return flyt.DefaultAction, nil
}

// newFlow wires filter -relevant-> sentiment. A rejected filter answer has
// no transition, which ends the flow. Nodes hold no per-run state but flyt
// forbids sharing them between concurrent runs, so each call builds its own.
func (c *Classifier) newFlow() *flyt.Flow {
	filter, sentiment := c.newNodes()
	flow := flyt.NewFlow(filter)
	flow.Connect(filter, actionRelevant, sentiment)
	return flow
}

func (c *Classifier) newNodes() (*filterNode, *sentimentNode) {
	filter := &filterNode{stageNode{
		BaseNode: flyt.NewBaseNode(),
		name:     StageFilter,
		running:  StateFiltering,
		prompt:   filterPromptFor,
		params:   c.cfg.Filter,
		c:        c,
	}}
	sentiment := &sentimentNode{stageNode{
		BaseNode: flyt.NewBaseNode(),
		name:     StageSentiment,
		running:  StateClassifying,
		prompt:   sentimentPromptFor,
		params:   c.cfg.Sentiment,
		c:        c,
	}}
	return filter, sentiment
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func stateOf(shared *flyt.SharedStore) State {
	if v, ok := shared.Get(keyState); ok {
		if s, ok := v.(State); ok {
			return s
		}
	}
	return StateFiltering
}

func stringOf(shared *flyt.SharedStore, key string) string {
	if v, ok := shared.Get(key); ok {
		s, _ := v.(string)
		return s
	}
	return ""
}
