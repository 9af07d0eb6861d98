package activity

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/robert-malhotra/go-strava-client/pkg/filter"
)

// Apply returns the activities matching f, in their original order.
// Records are evaluated in parallel. If any record fails to evaluate, the
// error is returned and nothing matches; a nil filter matches everything.
func Apply(ctx context.Context, list []Activity, f *filter.Filter) ([]Activity, error) {
	if f == nil {
		return list, nil
	}

	matched := make([]bool, len(list))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range list {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ok, err := f.Match(Vars(list[i]))
			if err != nil {
				return err
			}
			matched[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Activity, 0, len(list))
	for i, ok := range matched {
		if ok {
			out = append(out, list[i])
		}
	}
	return out, nil
}
