// Package pipeline is a small sequential stage engine used by the
// orchestration frameworks. A framework compiles its strategy into an
// ordered list of named stages over a shared state; most builtin
// frameworks compile to a single generation stage.
package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/universal-a2a/gateway/internal/domain"
)

// State flows through the stages of one execution. Stages mutate it in
// place: the prompt extraction stage fills Prompt, the generation stage
// fills Text.
type State struct {
	Messages []domain.Message
	Prompt   string
	Text     string
}

// Stage is one named step of a pipeline.
type Stage interface {
	Name() string
	Run(ctx context.Context, st *State) error
}

// StageFunc adapts a function to the Stage interface.
type StageFunc struct {
	StageName string
	Fn        func(ctx context.Context, st *State) error
}

func (s StageFunc) Name() string { return s.StageName }

func (s StageFunc) Run(ctx context.Context, st *State) error { return s.Fn(ctx, st) }

// StageConfig declares one stage and its position.
type StageConfig struct {
	Order int
	Stage Stage
}

// Engine executes stages sequentially in order.
type Engine struct {
	stages []Stage
}

// NewEngine builds an engine from stage configurations, sorted by Order.
// It fails on nil stages so frameworks can degrade at construction time
// instead of discovering the hole mid-request.
func NewEngine(configs ...StageConfig) (*Engine, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("pipeline needs at least one stage")
	}
	for _, c := range configs {
		if c.Stage == nil {
			return nil, fmt.Errorf("pipeline stage at order %d is nil", c.Order)
		}
	}

	sorted := make([]StageConfig, len(configs))
	copy(sorted, configs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	e := &Engine{stages: make([]Stage, len(sorted))}
	for i, c := range sorted {
		e.stages[i] = c.Stage
	}
	return e, nil
}

// Run executes all stages in order against the state. The first stage
// error stops the run, wrapped with the stage name.
func (e *Engine) Run(ctx context.Context, st *State) error {
	for _, stage := range e.stages {
		if err := stage.Run(ctx, st); err != nil {
			return fmt.Errorf("pipeline stage %s: %w", stage.Name(), err)
		}
	}
	return nil
}

// Len reports the number of stages.
func (e *Engine) Len() int { return len(e.stages) }
