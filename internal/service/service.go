// Package service orchestrates fetch, check and mutate for rooms and reviews.
//
// Every mutating operation follows the same order: the caller must carry an
// identity, the target is loaded (a missing target is ErrNotFound, reported
// before any ownership decision), the policy guard runs, and only then is
// storage written.
package service

import (
	"context"

	"github.com/joestump/room-reviews/internal/log"
	"github.com/joestump/room-reviews/internal/metrics"
	"github.com/joestump/room-reviews/internal/policy"
	"github.com/joestump/room-reviews/internal/store"
)

// sanitize strips server-owned keys and rejects keys no backend can store.
func sanitize(attrs store.Attributes) (store.Attributes, error) {
	clean := attrs.Without(store.ServerKeys...)
	if err := store.ValidateAttributes(clean); err != nil {
		return nil, err
	}
	return clean, nil
}

// denied records a guard rejection and passes err through.
func denied(ctx context.Context, caller policy.Caller, resourceID string, err error) error {
	guard := policy.Guard(err)
	metrics.AuthzDenialsTotal.WithLabelValues(guard).Inc()
	log.Info(ctx, "authorization denied",
		log.String("guard", guard),
		log.String("caller_id", caller.ID),
		log.String("resource_id", resourceID),
	)
	return err
}
