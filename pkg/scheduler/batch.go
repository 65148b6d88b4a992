package scheduler

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/arnavshah/agenda-api-go/pkg/models"
)

// ValidateBatch validates many candidates against one snapshot concurrently.
// Results keep the input order. The first malformed candidate aborts the batch.
func (v *Validator) ValidateBatch(ctx context.Context, candidates []models.Candidate, vc models.ValidationContext, limit int) ([]models.ValidationResult, error) {
	if err := vc.Validate(); err != nil {
		return nil, err
	}

	results := make([]models.ValidationResult, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return fmt.Errorf("candidate %d: %w", i, err)
			}
			results[i] = v.finish(c, v.evaluate(c, vc))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
