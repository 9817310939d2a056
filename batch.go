package fmindex

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// BuildBatch indexes independent texts concurrently, running at most
// parallelism builds at once (no limit if parallelism < 1). configure, if
// not nil, sets the options of every builder. The first failure cancels the
// builds that have not started yet; results keep the order of texts.
func BuildBatch(ctx context.Context, texts []string, parallelism int, configure func(*Builder) *Builder) ([]*Index, error) {
	indexes := make([]*Index, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, text := range texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b := NewBuilder(text)
			if configure != nil {
				b = configure(b)
			}
			idx, err := b.Build()
			if err != nil {
				return fmt.Errorf("text %d: %w", i, err)
			}
			indexes[i] = idx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return indexes, nil
}
