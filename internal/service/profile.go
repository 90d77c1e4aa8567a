package service

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/mylist-service/internal/apperror"
	"github.com/tazhibayda/mylist-service/internal/domain"
	"github.com/tazhibayda/mylist-service/internal/metrics"
)

const maxProfileNameLen = 40

type ProfileInput struct {
	Name   string
	Avatar string
}

type ProfileService struct {
	store ProfileStore
	limit int
	log   *zap.Logger
}

// NewProfileService returns a service enforcing limit profiles per user;
// limit <= 0 means domain.MaxProfiles.
func NewProfileService(store ProfileStore, limit int, logger *zap.Logger) *ProfileService {
	if limit <= 0 {
		limit = domain.MaxProfiles
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{store: store, limit: limit, log: logger.Named("profiles")}
}

// ListProfiles never fails for a user without profiles; it returns an empty slice.
func (s *ProfileService) ListProfiles(ctx context.Context, userID primitive.ObjectID) ([]domain.Profile, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Profiles == nil {
		return []domain.Profile{}, nil
	}
	return u.Profiles, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, userID, profileID primitive.ObjectID) (*domain.Profile, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(u.Profiles) == 0 {
		return nil, apperror.NotFound("profile")
	}
	p := u.Profile(profileID)
	if p == nil {
		return nil, apperror.NotFound("profile")
	}
	return p, nil
}

// CreateProfile appends a new profile with an empty list. The cap is enforced
// by the store's conditional push, so concurrent creates cannot exceed it.
func (s *ProfileService) CreateProfile(ctx context.Context, userID primitive.ObjectID, in ProfileInput) (*domain.Profile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if len(name) > maxProfileNameLen {
		return nil, apperror.ValidationFailed("name", fmt.Sprintf("name must be at most %d characters", maxProfileNameLen))
	}

	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(u.Profiles) >= s.limit {
		metrics.ProfileCapacityRejections.Inc()
		return nil, apperror.Capacity(s.limit)
	}

	p := domain.NewProfile(name, strings.TrimSpace(in.Avatar))
	matched, err := s.store.PushProfile(ctx, userID, p, s.limit)
	if err != nil {
		return nil, fmt.Errorf("push profile: %w", err)
	}
	if !matched {
		// Lost a race: either the user disappeared or another create filled the last slot.
		if _, err := s.user(ctx, userID); err != nil {
			return nil, err
		}
		metrics.ProfileCapacityRejections.Inc()
		return nil, apperror.Capacity(s.limit)
	}
	s.log.Debug("profile created", zap.String("user_id", userID.Hex()), zap.String("profile_id", p.ID.Hex()))
	return &p, nil
}

// DeleteProfile removes a profile in one atomic update and returns the
// user as stored afterwards.
func (s *ProfileService) DeleteProfile(ctx context.Context, userID, profileID primitive.ObjectID) (*domain.User, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	u, err := s.store.PullProfile(ctx, userID, profileID)
	if err != nil {
		return nil, fmt.Errorf("pull profile: %w", err)
	}
	if u == nil {
		return nil, apperror.NotFound("profile")
	}
	return u, nil
}

func (s *ProfileService) user(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	if u == nil {
		return nil, apperror.NotFound("user")
	}
	return u, nil
}
