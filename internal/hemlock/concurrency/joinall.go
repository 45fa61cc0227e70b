package concurrency

import (
	"golang.org/x/sync/errgroup"

	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// JoinAll joins every task in tasks concurrently (a host-level helper built
// atop the core join primitive; no Hemlock built-in exposes it) and returns
// their results in input order, or the first exception encountered.
func JoinAll(tasks []value.Value) ([]value.Value, error) {
	results := make([]value.Value, len(tasks))
	var g errgroup.Group
	for i, tv := range tasks {
		i, tv := i, tv
		g.Go(func() error {
			t := AsTask(tv)
			if t == nil {
				return diagnostics.New(diagnostics.CategoryArity, "join_all argument %d is not a task", i)
			}
			r, err := t.Join()
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
