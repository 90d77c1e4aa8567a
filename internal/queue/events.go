package queue

import "go.mongodb.org/mongo-driver/bson/primitive"

// Routing keys on the events exchange.
const (
	KeyUserRegistered = "user.registered"
	KeyUserLoggedIn   = "user.loggedin"
	KeyProfileCreated = "profile.created"
	KeyProfileDeleted = "profile.deleted"
	KeyListToggled    = "mylist.toggled"
)

type UserRegistered struct {
	UserID   primitive.ObjectID `json:"user_id"`
	Email    string             `json:"email"`
	Provider string             `json:"provider"`
}

type UserLoggedIn struct {
	UserID primitive.ObjectID `json:"user_id"`
	Method string             `json:"method"` // "password" | "google"
}

type ProfileCreated struct {
	UserID    primitive.ObjectID `json:"user_id"`
	ProfileID primitive.ObjectID `json:"profile_id"`
	Name      string             `json:"name"`
}

type ProfileDeleted struct {
	UserID    primitive.ObjectID `json:"user_id"`
	ProfileID primitive.ObjectID `json:"profile_id"`
}

type ListToggled struct {
	UserID    primitive.ObjectID `json:"user_id"`
	ProfileID primitive.ObjectID `json:"profile_id"`
	Category  string             `json:"category"`
	ItemID    string             `json:"item_id"`
	Added     bool               `json:"added"`
}
