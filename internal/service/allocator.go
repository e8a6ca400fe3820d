package service

import (
	"context"
	"fmt"

	"github.com/mkrogh/catalog-service/internal/repository"
)

// allocateItemID returns the smallest free business id at or above count+1.
// Deletions can leave the count pointing at a taken id, so the candidate is
// probed forward until an unused value is found. The result is a hint only:
// the unique index on item_id is the real guard, and Create re-runs the
// allocation when an insert loses that race.
func allocateItemID(ctx context.Context, repo repository.ItemRepository) (int, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}

	candidate := int(count) + 1
	for {
		taken, err := repo.ExistsByItemID(ctx, candidate)
		if err != nil {
			return 0, fmt.Errorf("probing item id %d: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate++
	}
}
