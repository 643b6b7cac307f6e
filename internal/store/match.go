package store

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The in-memory filter evaluator understands the subset of the MongoDB query
// language produced by the query builder and the handlers:
// equality, dotted paths, $and, $or, $eq, $ne, $in, $exists, $regex/$options.

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case map[string]any:
		return m, true
	}
	return nil, false
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case bson.A:
		return l, true
	case []any:
		return l, true
	case []bson.M:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, true
	case []string:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, true
	}
	return nil, false
}

func lookup(doc map[string]any, path string) (any, bool) {
	cur := any(doc)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func matches(doc map[string]any, filter map[string]any) bool {
	for key, cond := range filter {
		switch key {
		case "$and", "$or":
			subs, ok := asList(cond)
			if !ok {
				return false
			}
			if key == "$and" && !all(doc, subs) {
				return false
			}
			if key == "$or" && !anyOf(doc, subs) {
				return false
			}
		default:
			val, present := lookup(doc, key)
			if !fieldMatches(val, present, cond) {
				return false
			}
		}
	}
	return true
}

func all(doc map[string]any, subs []any) bool {
	for _, s := range subs {
		m, ok := asMap(s)
		if !ok || !matches(doc, m) {
			return false
		}
	}
	return true
}

func anyOf(doc map[string]any, subs []any) bool {
	for _, s := range subs {
		if m, ok := asMap(s); ok && matches(doc, m) {
			return true
		}
	}
	return false
}

func isOperatorDoc(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

func fieldMatches(val any, present bool, cond any) bool {
	ops, ok := asMap(cond)
	if !ok || !isOperatorDoc(ops) {
		return present && equal(val, cond)
	}
	for op, arg := range ops {
		switch op {
		case "$eq":
			if !present || !equal(val, arg) {
				return false
			}
		case "$ne":
			if present && equal(val, arg) {
				return false
			}
		case "$in":
			list, ok := asList(arg)
			if !ok || !present || !containsEqual(list, val) {
				return false
			}
		case "$exists":
			want, _ := arg.(bool)
			if present != want {
				return false
			}
		case "$regex":
			s, ok := val.(string)
			if !present || !ok {
				return false
			}
			re, err := compileRegex(arg, ops["$options"])
			if err != nil || !re.MatchString(s) {
				return false
			}
		case "$options":
			// consumed by $regex
		default:
			return false
		}
	}
	return true
}

func compileRegex(pattern, options any) (*regexp.Regexp, error) {
	var p, o string
	switch r := pattern.(type) {
	case string:
		p = r
	case primitive.Regex:
		p, o = r.Pattern, r.Options
	}
	if s, ok := options.(string); ok {
		o += s
	}
	if strings.Contains(o, "i") {
		p = "(?i)" + p
	}
	return regexp.Compile(p)
}

func containsEqual(list []any, v any) bool {
	for _, item := range list {
		if equal(v, item) {
			return true
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	}
	return time.Time{}, false
}

func equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if ta, ok := toTime(a); ok {
		tb, ok := toTime(b)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}

// compare orders missing values first, then numbers, strings and times by
// their natural order. Values of unrelated kinds compare equal.
func compare(a any, aok bool, b any, bok bool) int {
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return cmp3(fa < fb, fa > fb)
		}
	}
	if ta, ok := toTime(a); ok {
		if tb, ok := toTime(b); ok {
			return cmp3(ta.Before(tb), ta.After(tb))
		}
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.Compare(sa, sb)
		}
	}
	return 0
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}
