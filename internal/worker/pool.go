package worker

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Task is one input together with its outcome.
type Task[T any, R any] struct {
	Input  T
	Result R
	Err    error
}

// ProcessFunc handles a single input.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool runs a ProcessFunc over many inputs with bounded concurrency.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool creates a pool running at most workers inputs at once.
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	return &Pool[T, R]{workers: max(workers, 1), process: fn}
}

// Execute processes every input and returns the tasks in input order. A
// failing input does not stop the others. Once ctx is cancelled no new
// inputs are started; their tasks carry ctx.Err().
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) []Task[T, R] {
	tasks := make([]Task[T, R], len(inputs))
	var g errgroup.Group
	g.SetLimit(p.workers)

	for i, in := range inputs {
		tasks[i].Input = in
		if err := ctx.Err(); err != nil {
			tasks[i].Err = err
			continue
		}
		g.Go(func() error {
			res, err := p.process(ctx, in)
			tasks[i].Result, tasks[i].Err = res, err
			if err != nil {
				log.Error().Err(err).Int("index", i).Msg("Task failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	return tasks
}

// Failed returns the tasks that ended with an error.
func Failed[T any, R any](tasks []Task[T, R]) []Task[T, R] {
	var out []Task[T, R]
	for _, t := range tasks {
		if t.Err != nil {
			out = append(out, t)
		}
	}
	return out
}
