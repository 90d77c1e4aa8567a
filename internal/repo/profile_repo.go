package repo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/mylist-service/internal/domain"
)

// PushProfile appends p only while profiles[limit-1] does not exist, i.e. the
// user owns fewer than limit profiles. Check and write are one document update.
func (s *Store) PushProfile(ctx context.Context, userID primitive.ObjectID, p domain.Profile, limit int) (bool, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.profile.push", tracer.Tag("user_id", userID.Hex()))
	defer sp.Finish()

	filter := bson.M{
		"_id": userID,
		fmt.Sprintf("profiles.%d", limit-1): bson.M{"$exists": false},
	}
	res, err := s.colUsers.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"profiles": p}})
	if err != nil {
		sp.SetTag("error", err)
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// PullProfile removes the profile and returns the updated user with the
// password projected out; (nil, nil) when the user has no such profile.
func (s *Store) PullProfile(ctx context.Context, userID, profileID primitive.ObjectID) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.profile.pull",
		tracer.Tag("user_id", userID.Hex()),
		tracer.Tag("profile_id", profileID.Hex()),
	)
	defer sp.Finish()

	res := s.colUsers.FindOneAndUpdate(ctx,
		bson.M{"_id": userID, "profiles._id": profileID},
		bson.M{"$pull": bson.M{"profiles": bson.M{"_id": profileID}}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"password": 0}),
	)
	var u domain.User
	if err := res.Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		sp.SetTag("error", err)
		return nil, err
	}
	return &u, nil
}

// PushListItem pushes item into the category only if the matched profile
// does not already hold an item with the same _id.
func (s *Store) PushListItem(ctx context.Context, userID, profileID primitive.ObjectID, c domain.Category, item domain.Item) (bool, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.mylist.push", tracer.Tag("category", string(c)))
	defer sp.Finish()

	filter := listFilter(userID, profileID, c, bson.M{"$ne": item.Key()})
	res, err := s.colUsers.UpdateOne(ctx, filter, bson.M{"$push": bson.M{listPath(c): item}})
	if err != nil {
		sp.SetTag("error", err)
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// PullListItem pulls the item keyed by key only if the matched profile holds it.
func (s *Store) PullListItem(ctx context.Context, userID, profileID primitive.ObjectID, c domain.Category, key any) (bool, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.mylist.pull", tracer.Tag("category", string(c)))
	defer sp.Finish()

	filter := listFilter(userID, profileID, c, key)
	res, err := s.colUsers.UpdateOne(ctx, filter,
		bson.M{"$pull": bson.M{listPath(c): bson.M{domain.ItemIDKey: key}}})
	if err != nil {
		sp.SetTag("error", err)
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// listFilter scopes an update to one profile via $elemMatch so that the
// positional operator in listPath targets that profile.
func listFilter(userID, profileID primitive.ObjectID, c domain.Category, itemCond any) bson.M {
	return bson.M{
		"_id": userID,
		"profiles": bson.M{"$elemMatch": bson.M{
			"_id": profileID,
			"myList." + string(c) + "." + domain.ItemIDKey: itemCond,
		}},
	}
}

func listPath(c domain.Category) string {
	return "profiles.$.myList." + string(c)
}
