package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seed(t *testing.T, c Collection, n int) []primitive.ObjectID {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := make([]primitive.ObjectID, 0, n)
	for i := 0; i < n; i++ {
		id := primitive.NewObjectID()
		_, err := c.InsertOne(context.Background(), Document{
			"_id":       id,
			"n":         i,
			"createdAt": base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestFindManyPagesPartitionSortedResult(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("orders")
	seed(t, c, 23)

	sortDesc := []SortField{{Field: "createdAt", Desc: true}}
	all, total, err := FindMany(ctx, c, bson.M{}, bson.M{}, FindOptions{Sort: sortDesc})
	require.NoError(t, err)
	require.EqualValues(t, 23, total)
	require.Len(t, all, 23)

	var paged []Document
	const limit = 5
	for page := int64(0); ; page++ {
		items, total, err := FindMany(ctx, c, bson.M{}, bson.M{}, FindOptions{
			Sort: sortDesc, Skip: page * limit, Limit: limit,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 23, total)
		assert.LessOrEqual(t, len(items), limit)
		if len(items) == 0 {
			break
		}
		paged = append(paged, items...)
	}
	assert.Equal(t, all, paged)
	for i := 1; i < len(paged); i++ {
		assert.Greater(t, paged[i-1]["n"], paged[i]["n"])
	}
}

func TestFindManyCountsBaseFilter(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("orders")
	for _, s := range []string{"a", "a", "b"} {
		_, err := c.InsertOne(ctx, Document{"sellerId": s, "status": "pending"})
		require.NoError(t, err)
	}
	_, err := c.InsertOne(ctx, Document{"sellerId": "a", "status": "shipped"})
	require.NoError(t, err)

	base := bson.M{"sellerId": "a"}
	filter := bson.M{"$and": bson.A{base, bson.M{"status": "shipped"}}}
	items, total, err := FindMany(ctx, c, filter, base, FindOptions{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.EqualValues(t, 3, total)
}

func TestUniqueIndexRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.EnsureUniqueIndex(ctx, "staff", "email"))
	c := s.Collection("staff")

	_, err := c.InsertOne(ctx, Document{"email": "a@example.com"})
	require.NoError(t, err)
	_, err = c.InsertOne(ctx, Document{"email": "a@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	id, err := c.InsertOne(ctx, Document{"email": "b@example.com"})
	require.NoError(t, err)
	_, err = c.UpdateOne(ctx, bson.M{"_id": id}, Update{Set: bson.M{"email": "a@example.com"}}, false)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	n, err := c.Count(ctx, bson.M{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestUniqueIndexTreatsMissingAsNull(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.EnsureUniqueIndex(ctx, "staff", "email"))
	c := s.Collection("staff")

	_, err := c.InsertOne(ctx, Document{"name": "first"})
	require.NoError(t, err)
	_, err = c.InsertOne(ctx, Document{"name": "second"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	_, err = c.InsertOne(ctx, Document{"name": "third", "email": nil})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = c.InsertOne(ctx, Document{"email": "a@example.com"})
	assert.NoError(t, err)
}

func TestUpdateOneIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("seller")
	id, err := c.InsertOne(ctx, Document{"status": "pending", "fullName": "Ann"})
	require.NoError(t, err)

	upd := Update{Set: bson.M{"status": "active"}}
	first, err := c.UpdateOne(ctx, bson.M{"_id": id}, upd, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.MatchedCount)
	assert.EqualValues(t, 1, first.ModifiedCount)
	after1, err := c.FindOne(ctx, bson.M{"_id": id})
	require.NoError(t, err)

	second, err := c.UpdateOne(ctx, bson.M{"_id": id}, upd, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, second.MatchedCount)
	assert.EqualValues(t, 0, second.ModifiedCount)
	after2, err := c.FindOne(ctx, bson.M{"_id": id})
	require.NoError(t, err)

	assert.Equal(t, after1, after2)
	assert.Equal(t, "Ann", after2["fullName"])
}

func TestUpdateOneUpsertCreatesDocument(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("seller")
	id := primitive.NewObjectID()

	res, err := c.UpdateOne(ctx, bson.M{"_id": id}, Update{
		Set:         bson.M{"status": "active"},
		SetOnInsert: bson.M{"createdAt": "now"},
	}, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.UpsertedCount)
	assert.Equal(t, id, res.UpsertedID)

	doc, err := c.FindOne(ctx, bson.M{"_id": id})
	require.NoError(t, err)
	assert.Equal(t, "active", doc["status"])
	assert.Equal(t, "now", doc["createdAt"])

	res, err = c.UpdateOne(ctx, bson.M{"_id": primitive.NewObjectID()}, Update{Set: bson.M{"a": 1}}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.MatchedCount)
	assert.EqualValues(t, 0, res.UpsertedCount)
}

func TestDeleteOneAndFindOneMissing(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("staff")
	ids := seed(t, c, 2)

	n, err := c.DeleteOne(ctx, bson.M{"_id": ids[0]})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = c.DeleteOne(ctx, bson.M{"_id": ids[0]})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	_, err = c.FindOne(ctx, bson.M{"_id": ids[0]})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilterOperators(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("review")
	docs := []Document{
		{"reviewMessage": "Great Product", "productInfo": bson.M{"productId": "p1"}, "rating": int64(5)},
		{"reviewMessage": "meh", "productInfo": map[string]any{"productId": "p2"}, "rating": 2.0},
		{"reviewMessage": "great value", "rating": int64(4), "hidden": true},
	}
	for _, d := range docs {
		_, err := c.InsertOne(ctx, d)
		require.NoError(t, err)
	}

	cases := map[string]struct {
		filter bson.M
		want   int64
	}{
		"regex case-insensitive": {bson.M{"reviewMessage": bson.M{"$regex": "great", "$options": "i"}}, 2},
		"dotted path":            {bson.M{"productInfo.productId": "p2"}, 1},
		"numeric across types":   {bson.M{"rating": 2}, 1},
		"exists":                 {bson.M{"productInfo": bson.M{"$exists": true}}, 2},
		"not exists":             {bson.M{"hidden": bson.M{"$exists": false}}, 2},
		"ne":                     {bson.M{"rating": bson.M{"$ne": int64(5)}}, 2},
		"in":                     {bson.M{"productInfo.productId": bson.M{"$in": bson.A{"p1", "p3"}}}, 1},
		"or":                     {bson.M{"$or": []bson.M{{"rating": 5}, {"hidden": true}}}, 2},
		"and":                    {bson.M{"$and": bson.A{bson.M{"rating": bson.M{"$ne": 2}}, bson.M{"hidden": true}}}, 1},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			n, err := c.Count(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, n)
		})
	}
}

func TestUpdateManyAndProjection(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("banner")
	for _, typ := range []string{"image", "video", "video"} {
		_, err := c.InsertOne(ctx, Document{"type": typ, "default": true, "secret": "x"})
		require.NoError(t, err)
	}

	res, err := c.UpdateMany(ctx, bson.M{"type": "video", "default": true}, bson.M{"default": false})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.MatchedCount)
	assert.EqualValues(t, 2, res.ModifiedCount)

	items, err := c.Find(ctx, bson.M{"default": true}, FindOptions{Exclude: []string{"secret"}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "image", items[0]["type"])
	assert.NotContains(t, items[0], "secret")
}

func TestReturnedDocumentsAreCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("category")
	id, err := c.InsertOne(ctx, Document{"category": "shoes"})
	require.NoError(t, err)

	doc, err := c.FindOne(ctx, bson.M{"_id": id})
	require.NoError(t, err)
	doc["category"] = "hats"

	again, err := c.FindOne(ctx, bson.M{"_id": id})
	require.NoError(t, err)
	assert.Equal(t, "shoes", again["category"])
}
