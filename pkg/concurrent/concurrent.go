// Package concurrent fans work out over goroutines with golang.org/x/sync
// errgroup.
package concurrent

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/graspvr/pkg/sequence"
)

// ForEach runs action for each element of the iterator, with at most limit
// goroutines at a time; a limit below one means no bound. The context passed
// to action is cancelled once any action fails, and the first error is
// returned.
func ForEach[T any](ctx context.Context, i *sequence.Iterator[T], limit int, action func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	next, stop := i.Pull()
	defer stop()

	for {
		value, valid := next()
		if !valid {
			break
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return action(gctx, value)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Map applies mapFn to each element in parallel and returns the results in
// input order. It stops at the first error like ForEach.
func Map[T any, R any](ctx context.Context, i *sequence.Iterator[T], limit int, mapFn func(context.Context, T) (R, error)) ([]R, error) {
	in := i.Collect()
	out := make([]R, len(in))

	indexes := make([]int, len(in))
	for n := range indexes {
		indexes[n] = n
	}

	err := ForEach(ctx, sequence.From(indexes), limit, func(ctx context.Context, n int) error {
		r, err := mapFn(ctx, in[n])
		if err != nil {
			return err
		}
		out[n] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// All runs every action to completion, bounded by limit, and joins all their
// errors. Nothing is cancelled when one fails.
func All[T any](i *sequence.Iterator[T], limit int, action func(T) error) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	if limit > 0 {
		g.SetLimit(limit)
	}

	next, stop := i.Pull()
	defer stop()

	for {
		value, valid := next()
		if !valid {
			break
		}
		g.Go(func() error {
			if err := action(value); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	return errors.Join(errs...)
}
