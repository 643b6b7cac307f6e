// Package store is the document store adapter. Handlers talk to Collection
// only; MongoStore backs it in production and MemoryStore in tests and local runs.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
)

// Document is an opaque record keyed by "_id".
type Document = bson.M

var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

type SortField struct {
	Field string
	Desc  bool
}

type FindOptions struct {
	Sort    []SortField
	Skip    int64
	Limit   int64    // 0 = no limit
	Exclude []string // fields dropped from returned documents
}

// Update is a partial merge: Set always applies, SetOnInsert only when an
// upsert creates the document.
type Update struct {
	Set         bson.M
	SetOnInsert bson.M
}

type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
	UpsertedCount int64 `json:"upsertedCount"`
	UpsertedID    any   `json:"upsertedId"`
}

type Collection interface {
	Find(ctx context.Context, filter bson.M, opts FindOptions) ([]Document, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	FindOne(ctx context.Context, filter bson.M, exclude ...string) (Document, error)
	InsertOne(ctx context.Context, doc Document) (any, error)
	UpdateOne(ctx context.Context, filter bson.M, upd Update, upsert bool) (UpdateResult, error)
	UpdateMany(ctx context.Context, filter bson.M, set bson.M) (UpdateResult, error)
	DeleteOne(ctx context.Context, filter bson.M) (int64, error)
}

type Store interface {
	Collection(name string) Collection
	EnsureUniqueIndex(ctx context.Context, collection, field string) error
	Close(ctx context.Context) error
}

// FindMany returns one page of documents matching filter together with the
// number of documents matching base, which callers use for page counts.
func FindMany(ctx context.Context, c Collection, filter, base bson.M, opts FindOptions) ([]Document, int64, error) {
	items, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := c.Count(ctx, base)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []Document{}
	}
	return items, total, nil
}
