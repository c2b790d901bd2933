package l10n

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const (
	// pickMissing marks a resource no source could provide
	pickMissing = -1
	// pickSkipped marks a resource never attempted after a short-circuit
	pickSkipped = -2
)

// solution assigns each resource (by position) the index of the source that
// provides it, or one of the pick markers.
type solution struct {
	picks []int
	// stoppedAt is the resource that triggered the short-circuit, -1 when none
	stoppedAt int
}

func (s solution) complete() bool {
	for _, pick := range s.picks {
		if pick < 0 {
			return false
		}
	}
	return true
}

// probeFunc reports whether source src can provide resource res
type probeFunc func(ctx context.Context, res, src int) bool

// stopFunc reports whether a missing resource aborts the remaining work
type stopFunc func(res int) bool

func newSolution(width int) solution {
	picks := make([]int, width)
	for i := range picks {
		picks[i] = pickSkipped
	}
	return solution{picks: picks, stoppedAt: -1}
}

// solveSerial walks resources in order and, for each one, sources in priority
// order; the first source whose probe succeeds wins.
func solveSerial(ctx context.Context, width, depth int, probe probeFunc, stop stopFunc) solution {
	sol := newSolution(width)
	for res := 0; res < width; res++ {
		sol.picks[res] = firstSource(ctx, res, depth, probe)
		if sol.picks[res] == pickMissing && stop != nil && stop(res) {
			sol.stoppedAt = res
			break
		}
	}
	return sol
}

// solveParallel issues every resource concurrently (sources within one resource
// stay serial) and joins them all before applying the same short-circuit rule
// as solveSerial, so both produce identical solutions for identical probes.
func solveParallel(ctx context.Context, width, depth, limit int, probe probeFunc, stop stopFunc) solution {
	picks := make([]int, width)

	group, groupCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}
	for res := 0; res < width; res++ {
		group.Go(func() error {
			picks[res] = firstSource(groupCtx, res, depth, probe)
			return nil
		})
	}
	_ = group.Wait()

	sol := newSolution(width)
	for res := 0; res < width; res++ {
		sol.picks[res] = picks[res]
		if picks[res] == pickMissing && stop != nil && stop(res) {
			sol.stoppedAt = res
			break
		}
	}
	return sol
}

func firstSource(ctx context.Context, res, depth int, probe probeFunc) int {
	for src := 0; src < depth; src++ {
		if ctx.Err() != nil {
			return pickMissing
		}
		if probe(ctx, res, src) {
			return src
		}
	}
	return pickMissing
}
