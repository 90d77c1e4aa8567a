package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
)

// User is a document of the users collection. Profiles are embedded.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"      json:"id"`
	Email        string             `bson:"email"              json:"email"`
	PasswordHash string             `bson:"password,omitempty" json:"-"`
	FirstName    string             `bson:"firstName"          json:"firstName"`
	LastName     string             `bson:"lastName"           json:"lastName"`
	Avatar       string             `bson:"avatar,omitempty"   json:"avatar,omitempty"`
	Role         Role               `bson:"role"               json:"role"`
	Provider     Provider           `bson:"provider"           json:"provider"`
	Profiles     []Profile          `bson:"profiles"           json:"profiles"`
	CreatedAt    time.Time          `bson:"created_at"         json:"created_at"`
}

// Profile returns the embedded profile with the given id, or nil.
func (u *User) Profile(id primitive.ObjectID) *Profile {
	for i := range u.Profiles {
		if u.Profiles[i].ID == id {
			return &u.Profiles[i]
		}
	}
	return nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
