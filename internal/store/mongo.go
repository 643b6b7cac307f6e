package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo dials uri, pings the primary and binds the named database.
func ConnectMongo(ctx context.Context, uri, database string, timeout time.Duration) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{c: s.db.Collection(name)}
}

func (s *MongoStore) EnsureUniqueIndex(ctx context.Context, collection, field string) error {
	_, err := s.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return errors.Wrapf(err, "unique index %s.%s", collection, field)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return errors.Wrap(s.client.Disconnect(ctx), "disconnect mongo")
}

type mongoCollection struct{ c *mongo.Collection }

func projection(exclude []string) bson.M {
	if len(exclude) == 0 {
		return nil
	}
	p := bson.M{}
	for _, f := range exclude {
		p[f] = 0
	}
	return p
}

func classify(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return errors.WithMessage(ErrDuplicateKey, err.Error())
	default:
		return errors.Wrap(err, op)
	}
}

func (m *mongoCollection) Find(ctx context.Context, filter bson.M, opts FindOptions) ([]Document, error) {
	fo := options.Find()
	if len(opts.Sort) > 0 {
		sort := bson.D{}
		for _, s := range opts.Sort {
			dir := 1
			if s.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: s.Field, Value: dir})
		}
		fo.SetSort(sort)
	}
	if opts.Skip > 0 {
		fo.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}
	if p := projection(opts.Exclude); p != nil {
		fo.SetProjection(p)
	}

	cur, err := m.c.Find(ctx, filter, fo)
	if err != nil {
		return nil, classify(err, "find "+m.c.Name())
	}
	defer cur.Close(ctx)

	var out []Document
	if err := cur.All(ctx, &out); err != nil {
		return nil, classify(err, "decode "+m.c.Name())
	}
	return out, nil
}

func (m *mongoCollection) Count(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	n, err := m.c.CountDocuments(ctx, filter)
	return n, classify(err, "count "+m.c.Name())
}

func (m *mongoCollection) FindOne(ctx context.Context, filter bson.M, exclude ...string) (Document, error) {
	fo := options.FindOne()
	if p := projection(exclude); p != nil {
		fo.SetProjection(p)
	}
	var doc Document
	if err := m.c.FindOne(ctx, filter, fo).Decode(&doc); err != nil {
		return nil, classify(err, "find one "+m.c.Name())
	}
	return doc, nil
}

func (m *mongoCollection) InsertOne(ctx context.Context, doc Document) (any, error) {
	res, err := m.c.InsertOne(ctx, doc)
	if err != nil {
		return nil, classify(err, "insert "+m.c.Name())
	}
	return res.InsertedID, nil
}

func updateDoc(upd Update) bson.M {
	u := bson.M{}
	if len(upd.Set) > 0 {
		u["$set"] = upd.Set
	}
	if len(upd.SetOnInsert) > 0 {
		u["$setOnInsert"] = upd.SetOnInsert
	}
	return u
}

func toResult(r *mongo.UpdateResult) UpdateResult {
	return UpdateResult{
		MatchedCount:  r.MatchedCount,
		ModifiedCount: r.ModifiedCount,
		UpsertedCount: r.UpsertedCount,
		UpsertedID:    r.UpsertedID,
	}
}

func (m *mongoCollection) UpdateOne(ctx context.Context, filter bson.M, upd Update, upsert bool) (UpdateResult, error) {
	res, err := m.c.UpdateOne(ctx, filter, updateDoc(upd), options.Update().SetUpsert(upsert))
	if err != nil {
		return UpdateResult{}, classify(err, "update "+m.c.Name())
	}
	return toResult(res), nil
}

func (m *mongoCollection) UpdateMany(ctx context.Context, filter bson.M, set bson.M) (UpdateResult, error) {
	res, err := m.c.UpdateMany(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return UpdateResult{}, classify(err, "update many "+m.c.Name())
	}
	return toResult(res), nil
}

func (m *mongoCollection) DeleteOne(ctx context.Context, filter bson.M) (int64, error) {
	res, err := m.c.DeleteOne(ctx, filter)
	if err != nil {
		return 0, classify(err, "delete "+m.c.Name())
	}
	return res.DeletedCount, nil
}
