package pipeline

import (
	"fmt"

	"github.com/aitomatic/orchestra/internal/sig"
)

// Stage is one step of a pipeline: a single target, or a parallel group
// whose targets all receive the same upstream value.
type Stage struct {
	// Targets holds one callable for a sequential stage, several for a
	// parallel group.
	Targets []*sig.Callable
}

// Parallel reports whether the stage is a fan-out group.
func (s Stage) Parallel() bool {
	return len(s.Targets) > 1
}

// Seq creates a sequential stage with a single target.
func Seq(c *sig.Callable) Stage {
	return Stage{Targets: []*sig.Callable{c}}
}

// Par creates a parallel group. Branches are data-independent: each
// receives the same upstream value and the stage's output is the ordered
// list of branch results.
func Par(targets ...*sig.Callable) Stage {
	return Stage{Targets: targets}
}

// Pipeline is an ordered composition of stages, the `|` operator made
// explicit: each stage's output is the next stage's upstream value.
type Pipeline struct {
	Name   string
	Stages []Stage
}

// New creates a pipeline from stages in composition order.
func New(name string, stages ...Stage) *Pipeline {
	return &Pipeline{Name: name, Stages: stages}
}

// Validate checks that every stage has at least one target and every
// target an invoker.
func (p *Pipeline) Validate() error {
	if len(p.Stages) == 0 {
		return fmt.Errorf("pipeline %s: no stages", p.Name)
	}
	for i, stage := range p.Stages {
		if len(stage.Targets) == 0 {
			return fmt.Errorf("pipeline %s: stage %d has no targets", p.Name, i)
		}
		for _, target := range stage.Targets {
			if target == nil {
				return fmt.Errorf("pipeline %s: stage %d has a nil target", p.Name, i)
			}
			if target.Fn == nil && target.Positional == nil {
				return fmt.Errorf("pipeline %s: stage %d target %s has no invoker", p.Name, i, target.Identity())
			}
		}
	}
	return nil
}
