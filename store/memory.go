package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store used by the test suite. Documents round-trip
// through bson so field names and value types match what the Mongo
// implementation would persist.
type Memory struct {
	mu     sync.Mutex
	tables map[string][]bson.M
	unique map[string]string // table -> unique field
}

func NewMemory() *Memory {
	return &Memory{
		tables: make(map[string][]bson.M),
		unique: map[string]string{
			TablePending: "email",
			TableUsers:   "email",
		},
	}
}

func normalize(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// normalizeValue runs a single value through the same bson round-trip as
// stored documents so filter comparisons see identical representations.
func normalizeValue(v any) any {
	m, err := normalize(bson.M{"v": v})
	if err != nil {
		return v
	}
	return m["v"]
}

func matches(doc bson.M, filter Filter) bool {
	for k, want := range filter {
		if !reflect.DeepEqual(doc[k], normalizeValue(want)) {
			return false
		}
	}
	return true
}

func less(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		return av < bv
	case int32:
		bv, _ := b.(int32)
		return av < bv
	case int64:
		bv, _ := b.(int64)
		return av < bv
	case float64:
		bv, _ := b.(float64)
		return av < bv
	case primitive.DateTime:
		bv, _ := b.(primitive.DateTime)
		return av < bv
	default:
		return fmt.Sprint(a) < fmt.Sprint(b)
	}
}

func (s *Memory) Select(ctx context.Context, table string, filter Filter, order *Order, out any) error {
	s.mu.Lock()
	var rows []bson.M
	for _, doc := range s.tables[table] {
		if matches(doc, filter) {
			rows = append(rows, doc)
		}
	}
	s.mu.Unlock()

	if order != nil {
		sort.SliceStable(rows, func(i, j int) bool {
			if order.Desc {
				return less(rows[j][order.Field], rows[i][order.Field])
			}
			return less(rows[i][order.Field], rows[j][order.Field])
		})
	}

	slicev := reflect.ValueOf(out)
	if slicev.Kind() != reflect.Ptr || slicev.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("store: Select out must be a pointer to a slice, got %T", out)
	}
	elemType := slicev.Elem().Type().Elem()
	result := reflect.MakeSlice(slicev.Elem().Type(), 0, len(rows))
	for _, doc := range rows {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return err
		}
		elem := reflect.New(elemType)
		if err := bson.Unmarshal(raw, elem.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, elem.Elem())
	}
	slicev.Elem().Set(result)
	return nil
}

func (s *Memory) SelectOne(ctx context.Context, table string, filter Filter, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.tables[table] {
		if matches(doc, filter) {
			raw, err := bson.Marshal(doc)
			if err != nil {
				return err
			}
			return bson.Unmarshal(raw, out)
		}
	}
	return ErrNotFound
}

func (s *Memory) Insert(ctx context.Context, table string, docs ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		m, err := normalize(doc)
		if err != nil {
			return err
		}
		if field, ok := s.unique[table]; ok {
			for _, existing := range s.tables[table] {
				if reflect.DeepEqual(existing[field], m[field]) {
					return ErrConflict
				}
			}
		}
		s.tables[table] = append(s.tables[table], m)
	}
	return nil
}

func (s *Memory) Update(ctx context.Context, table string, filter Filter, patch Patch) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched int64
	for _, doc := range s.tables[table] {
		if matches(doc, filter) {
			for k, v := range patch {
				doc[k] = normalizeValue(v)
			}
			matched++
		}
	}
	return matched, nil
}

func (s *Memory) Delete(ctx context.Context, table string, filter Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []bson.M
	var removed int64
	for _, doc := range s.tables[table] {
		if matches(doc, filter) {
			removed++
			continue
		}
		kept = append(kept, doc)
	}
	s.tables[table] = kept
	return removed, nil
}

// Count reports how many rows in table match filter. Test helper.
func (s *Memory) Count(table string, filter Filter) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, doc := range s.tables[table] {
		if matches(doc, filter) {
			n++
		}
	}
	return n
}
