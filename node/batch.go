package node

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// VerifyBatch verifies each file independently with at most workers in flight.
// Reports come back in the order of files. The first assembly error cancels
// the remaining work; rejections do not.
func VerifyBatch(ctx context.Context, v *Verifier, files []*TxFile, workers int) ([]Report, error) {
	if workers <= 0 {
		workers = 1
	}
	reports := make([]Report, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			rep, err := v.Verify(gctx, f)
			if err != nil {
				return fmt.Errorf("tx %d (%s): %w", i, f.Name, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
