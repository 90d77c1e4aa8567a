package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/mylist-service/internal/domain"
)

// UserStore is the slice of the document store the auth flows need.
// Finders return (nil, nil) when nothing matches.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// CreateUser inserts u and sets u.ID. Returns domain.ErrEmailTaken on a duplicate email.
	CreateUser(ctx context.Context, u *domain.User) error
}

// ProfileStore exposes the atomic single-document updates on a user's
// embedded profiles.
type ProfileStore interface {
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// PushProfile appends p only while the user owns fewer than limit
	// profiles. matched is false when the user is missing or full.
	PushProfile(ctx context.Context, userID primitive.ObjectID, p domain.Profile, limit int) (matched bool, err error)
	// PullProfile removes a profile and returns the updated user without its
	// password. Returns (nil, nil) when no profile with that id exists.
	PullProfile(ctx context.Context, userID, profileID primitive.ObjectID) (*domain.User, error)
	// PushListItem adds item to a category only while no item with the same id is there.
	PushListItem(ctx context.Context, userID, profileID primitive.ObjectID, c domain.Category, item domain.Item) (modified bool, err error)
	// PullListItem removes the item keyed by key only while it is present.
	PullListItem(ctx context.Context, userID, profileID primitive.ObjectID, c domain.Category, key any) (modified bool, err error)
}
