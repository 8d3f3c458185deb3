package docstore

import (
	"fmt"
	"sort"
	"strings"
)

// Op is a filter operator.
type Op string

const (
	OpEqual         Op = "=="
	OpArrayContains Op = "array-contains"
)

// Direction is a sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Filter restricts a query to documents whose field satisfies Op against Value.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Order sorts a query by one field.
type Order struct {
	Field string
	Dir   Direction
}

// Query describes a collection (or collection group) query.
type Query struct {
	Collection string
	// Group matches every collection whose last path segment equals Collection.
	Group   bool
	Filters []Filter
	Orders  []Order
	Limit   int
}

// Collection queries a single collection path.
func Collection(path string) Query {
	return Query{Collection: path}
}

// CollectionGroup queries every collection with the given name.
func CollectionGroup(name string) Query {
	return Query{Collection: name, Group: true}
}

// Where adds a filter.
func (q Query) Where(field string, op Op, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: op, Value: canonical(value)})
	return q
}

// OrderBy adds a sort key. Documents missing the field are excluded from the result.
func (q Query) OrderBy(field string, dir Direction) Query {
	q.Orders = append(append([]Order(nil), q.Orders...), Order{Field: field, Dir: dir})
	return q
}

// LimitTo caps the number of returned documents. Zero means unlimited.
func (q Query) LimitTo(n int) Query {
	q.Limit = n
	return q
}

// Key identifies the query; two queries with the same key return the same documents.
func (q Query) Key() string {
	var b strings.Builder
	if q.Group {
		b.WriteString("group:")
	}
	b.WriteString(q.Collection)
	for _, f := range q.Filters {
		fmt.Fprintf(&b, "|%s %s %v", f.Field, f.Op, f.Value)
	}
	for _, o := range q.Orders {
		fmt.Fprintf(&b, "|order %s %d", o.Field, o.Dir)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, "|limit %d", q.Limit)
	}
	return b.String()
}

func (q Query) validate() error {
	if q.Group {
		if q.Collection == "" || strings.Contains(q.Collection, "/") {
			return fmt.Errorf("%w: collection group %q", ErrInvalidPath, q.Collection)
		}
		return nil
	}
	return checkCollectionPath(q.Collection)
}

// matchesCollection reports whether a document in collection belongs to q's source.
func (q Query) matchesCollection(collection string) bool {
	if q.Group {
		return collectionName(collection) == q.Collection
	}
	return collection == q.Collection
}

func (q Query) matches(data map[string]any) bool {
	for _, f := range q.Filters {
		v, ok := lookup(data, f.Field)
		switch f.Op {
		case OpEqual:
			if !ok || !valuesEqual(v, f.Value) {
				return false
			}
		case OpArrayContains:
			arr, isArr := v.([]any)
			if !ok || !isArr || indexOf(arr, f.Value) < 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// apply filters, sorts and limits docs, which must all belong to q's source.
func (q Query) apply(docs []Document) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if !q.matches(d.Data) {
			continue
		}
		if !hasOrderFields(d.Data, q.Orders) {
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range q.Orders {
			a, _ := lookup(out[i].Data, o.Field)
			b, _ := lookup(out[j].Data, o.Field)
			c := compareValues(a, b)
			if c == 0 {
				continue
			}
			if o.Dir == Desc {
				return c > 0
			}
			return c < 0
		}
		return out[i].Path < out[j].Path
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func hasOrderFields(data map[string]any, orders []Order) bool {
	for _, o := range orders {
		if v, ok := lookup(data, o.Field); !ok || v == nil {
			return false
		}
	}
	return true
}
