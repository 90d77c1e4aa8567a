package domain

import (
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxProfiles is the default number of profiles a single user may own.
const MaxProfiles = 4

type Category string

const (
	CategoryMovies Category = "movies"
	CategorySeries Category = "series"
	CategoryGames  Category = "games"
)

var Categories = []Category{CategoryMovies, CategorySeries, CategoryGames}

func (c Category) Valid() bool {
	switch c {
	case CategoryMovies, CategorySeries, CategoryGames:
		return true
	}
	return false
}

// Item is an opaque catalog entry keyed by its "_id" field. Metadata is
// stored as supplied by the caller.
type Item map[string]any

// ItemIDKey is the field that identifies an item inside a category.
const ItemIDKey = "_id"

// Key returns the raw identifier value, as it is stored.
func (it Item) Key() any { return it[ItemIDKey] }

// ID returns the identifier in string form; "" when absent.
func (it Item) ID() string {
	v, ok := it[ItemIDKey]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

type MyList struct {
	Movies []Item `bson:"movies" json:"movies"`
	Series []Item `bson:"series" json:"series"`
	Games  []Item `bson:"games"  json:"games"`
}

func NewMyList() MyList {
	return MyList{Movies: []Item{}, Series: []Item{}, Games: []Item{}}
}

// Items returns the items of a category. ok is false for unknown categories.
func (m MyList) Items(c Category) (items []Item, ok bool) {
	switch c {
	case CategoryMovies:
		return m.Movies, true
	case CategorySeries:
		return m.Series, true
	case CategoryGames:
		return m.Games, true
	}
	return nil, false
}

// Contains reports whether an item keyed by key is in the category.
// Keys match as MongoDB matches them: numbers by value whatever their Go
// type, everything else only with the same type and value, so 1 and "1"
// are different items.
func (m MyList) Contains(c Category, key any) bool {
	items, _ := m.Items(c)
	for _, it := range items {
		if SameKey(it.Key(), key) {
			return true
		}
	}
	return false
}

// SameKey reports whether two raw item identifiers address the same item.
func SameKey(a, b any) bool {
	fa, aNum := number(a)
	fb, bNum := number(b)
	if aNum || bNum {
		return aNum && bNum && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

type Profile struct {
	ID     primitive.ObjectID `bson:"_id"    json:"_id"`
	Name   string             `bson:"name"   json:"name"`
	Avatar string             `bson:"avatar" json:"avatar"`
	MyList MyList             `bson:"myList" json:"myList"`
}

func NewProfile(name, avatar string) Profile {
	return Profile{
		ID:     primitive.NewObjectID(),
		Name:   name,
		Avatar: avatar,
		MyList: NewMyList(),
	}
}
