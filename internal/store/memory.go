package store

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps collections in process. Every call copies documents in and
// out so callers never share maps with the store.
type MemoryStore struct {
	mu    sync.Mutex
	colls map[string]*memCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{colls: map[string]*memCollection{}}
}

func (s *MemoryStore) coll(name string) *memCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.colls[name]
	if !ok {
		c = &memCollection{name: name}
		s.colls[name] = c
	}
	return c
}

func (s *MemoryStore) Collection(name string) Collection { return s.coll(name) }

func (s *MemoryStore) EnsureUniqueIndex(_ context.Context, collection, field string) error {
	c := s.coll(collection)
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.unique {
		if f == field {
			return nil
		}
	}
	c.unique = append(c.unique, field)
	return nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

type memCollection struct {
	name   string
	mu     sync.RWMutex
	docs   []Document
	unique []string
}

func (c *memCollection) Find(_ context.Context, filter bson.M, opts FindOptions) ([]Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var hits []Document
	for _, d := range c.docs {
		if matches(d, filter) {
			hits = append(hits, d)
		}
	}
	if len(opts.Sort) > 0 {
		sort.SliceStable(hits, func(i, j int) bool {
			for _, s := range opts.Sort {
				a, aok := lookup(hits[i], s.Field)
				b, bok := lookup(hits[j], s.Field)
				r := compare(a, aok, b, bok)
				if s.Desc {
					r = -r
				}
				if r != 0 {
					return r < 0
				}
			}
			return false
		})
	}

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(hits)) {
			hits = nil
		} else {
			hits = hits[opts.Skip:]
		}
	}
	if opts.Limit > 0 && int64(len(hits)) > opts.Limit {
		hits = hits[:opts.Limit]
	}

	out := make([]Document, 0, len(hits))
	for _, d := range hits {
		out = append(out, project(d, opts.Exclude))
	}
	return out, nil
}

func (c *memCollection) Count(_ context.Context, filter bson.M) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int64
	for _, d := range c.docs {
		if matches(d, filter) {
			n++
		}
	}
	return n, nil
}

func (c *memCollection) FindOne(_ context.Context, filter bson.M, exclude ...string) (Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.docs {
		if matches(d, filter) {
			return project(d, exclude), nil
		}
	}
	return nil, ErrNotFound
}

func (c *memCollection) InsertOne(_ context.Context, doc Document) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := cloneDoc(doc)
	if _, ok := d["_id"]; !ok {
		d["_id"] = primitive.NewObjectID()
	}
	if c.indexOf(bson.M{"_id": d["_id"]}) >= 0 {
		return nil, ErrDuplicateKey
	}
	if err := c.checkUnique(d, -1); err != nil {
		return nil, err
	}
	c.docs = append(c.docs, d)
	return d["_id"], nil
}

func (c *memCollection) UpdateOne(_ context.Context, filter bson.M, upd Update, upsert bool) (UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(filter)
	if i < 0 {
		if !upsert {
			return UpdateResult{}, nil
		}
		d := seedFromFilter(filter)
		applySet(d, upd.Set)
		applySet(d, upd.SetOnInsert)
		if _, ok := d["_id"]; !ok {
			d["_id"] = primitive.NewObjectID()
		}
		if err := c.checkUnique(d, -1); err != nil {
			return UpdateResult{}, err
		}
		c.docs = append(c.docs, d)
		return UpdateResult{UpsertedCount: 1, UpsertedID: d["_id"]}, nil
	}

	next := cloneDoc(c.docs[i])
	applySet(next, upd.Set)
	if err := c.checkUnique(next, i); err != nil {
		return UpdateResult{}, err
	}
	res := UpdateResult{MatchedCount: 1}
	if !reflect.DeepEqual(next, c.docs[i]) {
		res.ModifiedCount = 1
		c.docs[i] = next
	}
	return res, nil
}

func (c *memCollection) UpdateMany(_ context.Context, filter bson.M, set bson.M) (UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var res UpdateResult
	for i, d := range c.docs {
		if !matches(d, filter) {
			continue
		}
		res.MatchedCount++
		next := cloneDoc(d)
		applySet(next, set)
		if err := c.checkUnique(next, i); err != nil {
			return res, err
		}
		if !reflect.DeepEqual(next, d) {
			c.docs[i] = next
			res.ModifiedCount++
		}
	}
	return res, nil
}

func (c *memCollection) DeleteOne(_ context.Context, filter bson.M) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(filter)
	if i < 0 {
		return 0, nil
	}
	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	return 1, nil
}

func (c *memCollection) indexOf(filter bson.M) int {
	for i, d := range c.docs {
		if matches(d, filter) {
			return i
		}
	}
	return -1
}

// checkUnique rejects d when another document (other than position self)
// already holds the same value for a uniquely indexed field. A missing field
// indexes as null, so two documents without it collide.
func (c *memCollection) checkUnique(d Document, self int) error {
	for _, f := range c.unique {
		v, _ := lookup(d, f)
		for i, other := range c.docs {
			if i == self {
				continue
			}
			if ov, _ := lookup(other, f); equal(ov, v) {
				return ErrDuplicateKey
			}
		}
	}
	return nil
}

// seedFromFilter copies the plain equality conditions of an upsert filter into
// the new document, as MongoDB does.
func seedFromFilter(filter bson.M) Document {
	d := Document{}
	for k, v := range filter {
		if strings.HasPrefix(k, "$") {
			continue
		}
		if m, ok := asMap(v); ok && isOperatorDoc(m) {
			continue
		}
		setPath(d, k, cloneValue(v))
	}
	return d
}

func applySet(d Document, set bson.M) {
	for k, v := range set {
		setPath(d, k, cloneValue(v))
	}
}

func setPath(d map[string]any, path string, v any) {
	parts := strings.Split(path, ".")
	cur := d
	for _, p := range parts[:len(parts)-1] {
		next, ok := asMap(cur[p])
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}

func project(d Document, exclude []string) Document {
	out := cloneDoc(d)
	for _, f := range exclude {
		delete(out, f)
	}
	return out
}

func cloneDoc(d map[string]any) Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		return cloneDoc(t)
	case map[string]any:
		return map[string]any(cloneDoc(t))
	case bson.A:
		out := make(bson.A, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	}
	return v
}
