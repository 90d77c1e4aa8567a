package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/mylist-service/internal/apperror"
	"github.com/tazhibayda/mylist-service/internal/domain"
	"github.com/tazhibayda/mylist-service/internal/metrics"
)

// DefaultToggleAttempts bounds the read-decide-write loop of Toggle.
const DefaultToggleAttempts = 3

type ToggleResult struct {
	Profile *domain.Profile
	Added   bool // false means the item was removed
}

// ListToggler adds an item to a profile's list when it is absent and
// removes it when present. Calling Toggle twice with the same item
// restores the original state; it is not idempotent under repetition.
//
// Each write is conditional on the membership state that was read, so a
// concurrent toggle makes the write match nothing instead of duplicating or
// losing an item. Such a write is retried from a fresh read, up to attempts
// times, before failing with a NoEffect mutation error.
type ListToggler struct {
	store    ProfileStore
	attempts int
	log      *zap.Logger
}

func NewListToggler(store ProfileStore, attempts int, logger *zap.Logger) *ListToggler {
	if attempts <= 0 {
		attempts = DefaultToggleAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListToggler{store: store, attempts: attempts, log: logger.Named("mylist")}
}

func (t *ListToggler) Toggle(ctx context.Context, userID, profileID primitive.ObjectID, c domain.Category, item domain.Item) (*ToggleResult, error) {
	if !c.Valid() {
		return nil, apperror.ValidationFailed("category", "valid category is required (movies, series, games)")
	}
	if item == nil || item.ID() == "" {
		return nil, apperror.ValidationFailed("item", "item must include a valid _id")
	}

	for attempt := 1; attempt <= t.attempts; attempt++ {
		p, err := t.profile(ctx, userID, profileID)
		if err != nil {
			return nil, err
		}

		remove := p.MyList.Contains(c, item.Key())
		var modified bool
		if remove {
			modified, err = t.store.PullListItem(ctx, userID, profileID, c, item.Key())
		} else {
			modified, err = t.store.PushListItem(ctx, userID, profileID, c, item)
		}
		if err != nil {
			return nil, fmt.Errorf("update list: %w", err)
		}

		if modified {
			op := "add"
			if remove {
				op = "remove"
			}
			metrics.ListToggles.WithLabelValues(string(c), op).Inc()

			updated, err := t.profile(ctx, userID, profileID)
			if err != nil {
				return nil, err
			}
			return &ToggleResult{Profile: updated, Added: !remove}, nil
		}

		metrics.ToggleRetries.Inc()
		t.log.Warn("toggle write matched nothing",
			zap.String("user_id", userID.Hex()),
			zap.String("profile_id", profileID.Hex()),
			zap.String("category", string(c)),
			zap.Int("attempt", attempt))
	}

	metrics.ListToggles.WithLabelValues(string(c), "no_effect").Inc()
	return nil, apperror.NoEffect()
}

func (t *ListToggler) profile(ctx context.Context, userID, profileID primitive.ObjectID) (*domain.Profile, error) {
	u, err := t.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	if u == nil {
		return nil, apperror.NotFound("user")
	}
	p := u.Profile(profileID)
	if p == nil {
		return nil, apperror.NotFound("profile")
	}
	return p, nil
}
