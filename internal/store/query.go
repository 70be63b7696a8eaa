package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Op is a query filter operator.
type Op string

const (
	OpEqual Op = "=="
	OpIn    Op = "in"
)

// MaxInValues is the cap on disjunction size for OpIn filters. Queries with
// larger value lists are rejected; callers truncate.
const MaxInValues = 10

type filter struct {
	field string
	op    Op
	value any
}

// Query describes a filtered, ordered, bounded read of one collection.
// The zero value matches every document in arrival (key) order.
type Query struct {
	filters []filter
	orderBy string
	desc    bool
	limit   int
}

func NewQuery() Query { return Query{} }

// Where adds a filter. OpEqual compares against a single value; OpIn matches
// any of a []string value list (at most MaxInValues entries).
func (q Query) Where(field string, op Op, value any) Query {
	q.filters = append(q.filters, filter{field: field, op: op, value: value})
	return q
}

// OrderBy sorts results by a document field. The sort is stable.
func (q Query) OrderBy(field string, desc bool) Query {
	q.orderBy = field
	q.desc = desc
	return q
}

// Limit bounds the result set after filtering and ordering.
func (q Query) Limit(n int) Query {
	q.limit = n
	return q
}

// Document is one query result: the document id plus its raw JSON.
type Document struct {
	ID string

	raw    []byte
	fields map[string]any
}

// Decode unmarshals the document into out.
func (d Document) Decode(out any) error {
	return json.Unmarshal(d.raw, out)
}

// Field returns a decoded top-level field value, or nil when absent.
func (d Document) Field(name string) any {
	return d.fields[name]
}

// Query runs q against the collection and returns matching documents.
func (c *Collection) Query(ctx context.Context, q Query) ([]Document, error) {
	for _, f := range q.filters {
		if f.op == OpIn {
			vals, ok := f.value.([]string)
			if !ok {
				return nil, fmt.Errorf("in filter on %q: value must be []string", f.field)
			}
			if len(vals) > MaxInValues {
				return nil, fmt.Errorf("in filter on %q: %d values exceeds limit of %d", f.field, len(vals), MaxInValues)
			}
		}
	}

	var docs []Document
	prefix := []byte(c.name + "/")

	err := c.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read %s: %w", item.Key(), err)
			}

			var fields map[string]any
			if err := json.Unmarshal(raw, &fields); err != nil {
				return fmt.Errorf("decode %s: %w", item.Key(), err)
			}

			if !matches(fields, q.filters) {
				continue
			}

			id := strings.TrimPrefix(string(item.Key()), string(prefix))
			docs = append(docs, Document{ID: id, raw: raw, fields: fields})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if q.orderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			cmp := compareValues(docs[i].fields[q.orderBy], docs[j].fields[q.orderBy])
			if q.desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	if q.limit > 0 && len(docs) > q.limit {
		docs = docs[:q.limit]
	}
	return docs, nil
}

func matches(fields map[string]any, filters []filter) bool {
	for _, f := range filters {
		got := fields[f.field]
		switch f.op {
		case OpEqual:
			if compareValues(got, f.value) != 0 {
				return false
			}
		case OpIn:
			vals, _ := f.value.([]string)
			found := false
			for _, v := range vals {
				if compareValues(got, v) == 0 {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareValues orders two decoded JSON values. Timestamps marshal as RFC 3339
// strings and are compared as instants so variable-width fractional seconds
// cannot reorder them.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 1
		}
		if at, err := time.Parse(time.RFC3339Nano, av); err == nil {
			if bt, err := time.Parse(time.RFC3339Nano, bv); err == nil {
				return at.Compare(bt)
			}
		}
		return strings.Compare(av, bv)
	case float64:
		bv, ok := toFloat(b)
		if !ok {
			return 1
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case bool:
		bv, ok := b.(bool)
		if !ok || av == bv {
			if !ok {
				return 1
			}
			return 0
		}
		if av {
			return 1
		}
		return -1
	case nil:
		if b == nil {
			return 0
		}
		return -1
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
