package location

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// DefaultFile is the working-directory relative save file.
const DefaultFile = "locations.json"

// Indent matches the indentation of files written by earlier versions of the tool.
const Indent = "    "

// Store is the ordered, in-memory collection of location records.
// Insertion order is display order and file order.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string
	ids     IDAllocator
	logger  *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIDAllocator replaces the default sequential allocator.
func WithIDAllocator(a IDAllocator) StoreOption {
	return func(s *Store) {
		s.ids = a
	}
}

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		records: make(map[string]*Record),
		ids:     &SequentialIDs{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create appends a record with default fields and returns its id.
func (s *Store) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.ids.Next(func(candidate string) bool {
		_, exists := s.records[candidate]
		return exists
	})
	rec := NewRecord(id)
	s.records[id] = &rec
	s.order = append(s.order, id)

	s.logger.Debug("Location created", "id", id, "count", len(s.order))
	return id
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.records[id]
	if !exists {
		return Record{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return *rec, nil
}

// Has reports whether id is present.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.records[id]
	return exists
}

// Update applies mutate to the stored record. The record id cannot be changed.
func (s *Store) Update(id string, mutate func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.records[id]
	if !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	mutate(rec)
	rec.ID = id
	return nil
}

// Delete removes a record. Connections in other records that point at it are
// left untouched. It reports whether anything was removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; !exists {
		return false
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.logger.Debug("Location deleted", "id", id, "count", len(s.order))
	return true
}

// IDs returns every id in insertion order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// NeighborOptions returns the values a direction selector may take: the
// empty string followed by every id in insertion order.
func (s *Store) NeighborOptions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	options := make([]string, 0, len(s.order)+1)
	options = append(options, "")
	return append(options, s.order...)
}

// DanglingRef is a connection that names an id which is not in the store.
type DanglingRef struct {
	From      string
	Direction Direction
	To        string
}

func (d DanglingRef) String() string {
	return fmt.Sprintf("%s.%s -> %s", d.From, d.Direction.Key(), d.To)
}

// Dangling lists connections whose target does not exist, in store order.
func (s *Store) Dangling() []DanglingRef {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var refs []DanglingRef
	for _, id := range s.order {
		rec := s.records[id]
		for _, d := range Directions {
			target := rec.Connections.Get(d)
			if target == "" {
				continue
			}
			if _, exists := s.records[target]; !exists {
				refs = append(refs, DanglingRef{From: id, Direction: d, To: target})
			}
		}
	}
	return refs
}

// Load replaces the whole store with the JSON object in data, keeping the
// key order of the document. On any error the store is left as it was.
func (s *Store) Load(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, ErrEmptyData)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: %w: malformed JSON", ErrPersistenceUnavailable, ErrInvalidData)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return fmt.Errorf("%w: %w: top level is not an object", ErrPersistenceUnavailable, ErrInvalidData)
	}

	records := make(map[string]*Record)
	var order []string
	var decodeErr error
	root.ForEach(func(key, value gjson.Result) bool {
		id := key.String()
		if !value.IsObject() {
			decodeErr = fmt.Errorf("location %q is not an object", id)
			return false
		}
		rec := Record{ID: id}
		if err := json.Unmarshal(stringifyScalars(value), &rec); err != nil {
			decodeErr = fmt.Errorf("failed to decode location %q: %w", id, err)
			return false
		}
		rec.ID = id
		if _, seen := records[id]; !seen {
			order = append(order, id)
		}
		records[id] = &rec
		return true
	})
	if decodeErr != nil {
		return fmt.Errorf("%w: %w: %w", ErrPersistenceUnavailable, ErrInvalidData, decodeErr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.order = order
	s.ids.Observe(order)

	s.logger.Debug("Locations loaded", "count", len(order))
	return nil
}

// stringifyScalars rewrites number and boolean members of a record object,
// including those inside "connections", as JSON strings. Hand-edited files
// often carry "monsterChance": 25 or "n": 3.
func stringifyScalars(obj gjson.Result) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	obj.ForEach(func(key, value gjson.Result) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(key.Raw)
		buf.WriteByte(':')
		switch {
		case key.String() == "connections" && value.IsObject():
			buf.Write(stringifyScalars(value))
		case value.Type == gjson.Number || value.Type == gjson.True || value.Type == gjson.False:
			quoted, _ := json.Marshal(value.String())
			buf.Write(quoted)
		default:
			buf.WriteString(value.Raw)
		}
		return true
	})
	buf.WriteByte('}')
	return buf.Bytes()
}

// Serialize renders the store as an indented JSON object keyed by id, in
// insertion order.
func (s *Store) Serialize() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal location id %q: %w", id, err)
		}
		value, err := json.Marshal(s.records[id])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal location %q: %w", id, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')

	return pretty.PrettyOptions(buf.Bytes(), &pretty.Options{
		Width:    80,
		Indent:   Indent,
		SortKeys: false,
	}), nil
}
