// Package query turns list parameters (search, status, page, limit) into a
// store filter, sort and page window.
package query

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"marketplace-admin/internal/store"
)

const (
	DefaultLimit int64 = 10
	MaxLimit     int64 = 100
)

var ErrInvalidPagination = errors.New("page and limit must be non-negative integers")

// Params is bound straight from the query string. Numbers stay strings so a
// bad value turns into ErrInvalidPagination instead of a binding error.
type Params struct {
	Search string `form:"search"`
	Status string `form:"status"`
	Page   string `form:"page"`
	Limit  string `form:"limit"`
}

// Spec describes how one entity kind is searched.
type Spec struct {
	TextFields    []string // case-insensitive substring match
	NumericFields []string // integer equality, or "$exists" when the term is not a number
	StatusField   string   // defaults to "status"
	SortField     string   // defaults to "createdAt", always descending
	DefaultLimit  int64
	MaxLimit      int64
}

type Query struct {
	Base   bson.M // scope only; used for the total count
	Filter bson.M // scope + search + status
	Opts   store.FindOptions
	Page   int64
	Limit  int64
}

func parseNonNegative(name, raw string, def int64) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, errors.Wrapf(ErrInvalidPagination, "%s=%q", name, raw)
	}
	return n, nil
}

// SearchClause returns nil for an empty term.
func (s Spec) SearchClause(term string) bson.M {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	var ors []bson.M
	pattern := regexp.QuoteMeta(term)
	for _, f := range s.TextFields {
		ors = append(ors, bson.M{f: bson.M{"$regex": pattern, "$options": "i"}})
	}
	for _, f := range s.NumericFields {
		if n, err := strconv.ParseInt(term, 10, 64); err == nil {
			ors = append(ors, bson.M{f: n})
		} else {
			ors = append(ors, bson.M{f: bson.M{"$exists": true}})
		}
	}
	switch len(ors) {
	case 0:
		return nil
	case 1:
		return ors[0]
	}
	return bson.M{"$or": ors}
}

func and(clauses ...bson.M) bson.M {
	var parts bson.A
	for _, c := range clauses {
		if len(c) > 0 {
			parts = append(parts, c)
		}
	}
	switch len(parts) {
	case 0:
		return bson.M{}
	case 1:
		return parts[0].(bson.M)
	}
	return bson.M{"$and": parts}
}

// Build combines base with the search and status filters and resolves the
// page window. skip = page * limit.
func Build(spec Spec, base bson.M, p Params) (Query, error) {
	defLimit, maxLimit := spec.DefaultLimit, spec.MaxLimit
	if defLimit <= 0 {
		defLimit = DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}

	page, err := parseNonNegative("page", p.Page, 0)
	if err != nil {
		return Query{}, err
	}
	limit, err := parseNonNegative("limit", p.Limit, defLimit)
	if err != nil {
		return Query{}, err
	}
	if limit == 0 {
		limit = defLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if page > math.MaxInt64/limit {
		return Query{}, errors.Wrapf(ErrInvalidPagination, "page=%q is out of range", p.Page)
	}

	statusField := spec.StatusField
	if statusField == "" {
		statusField = "status"
	}
	var status bson.M
	if s := strings.TrimSpace(p.Status); s != "" {
		status = bson.M{statusField: s}
	}

	sortField := spec.SortField
	if sortField == "" {
		sortField = "createdAt"
	}

	if base == nil {
		base = bson.M{}
	}
	return Query{
		Base:   base,
		Filter: and(base, spec.SearchClause(p.Search), status),
		Opts: store.FindOptions{
			Sort:  []store.SortField{{Field: sortField, Desc: true}},
			Skip:  page * limit,
			Limit: limit,
		},
		Page:  page,
		Limit: limit,
	}, nil
}
