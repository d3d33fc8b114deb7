package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryIndex keeps documents in process. It understands the subset of the
// query DSL that BuildQuery produces and backs local development when no
// Elasticsearch cluster is configured.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs map[string]map[string]map[string]interface{}
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{docs: map[string]map[string]map[string]interface{}{}}
}

func (m *MemoryIndex) EnsureIndex(_ context.Context, index string, _ map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[index]; !ok {
		m.docs[index] = map[string]map[string]interface{}{}
	}
	return nil
}

func (m *MemoryIndex) Upsert(_ context.Context, index, id string, doc interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[index]; !ok {
		m.docs[index] = map[string]map[string]interface{}{}
	}
	m.docs[index][id] = fields
	return nil
}

func (m *MemoryIndex) Delete(_ context.Context, index, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs[index], id)
	return nil
}

// Get returns a stored document, mainly for tests and debugging.
func (m *MemoryIndex) Get(index, id string) (map[string]interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[index][id]
	return doc, ok
}

func (m *MemoryIndex) Count(index string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs[index])
}

func (m *MemoryIndex) Search(_ context.Context, index string, query map[string]interface{}) (*Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clauses := mustClauses(query)
	type match struct {
		id  string
		doc map[string]interface{}
	}
	var matches []match
	for id, doc := range m.docs[index] {
		if matchesAll(doc, clauses) {
			matches = append(matches, match{id: id, doc: doc})
		}
	}

	column, direction := sortOf(query)
	sort.SliceStable(matches, func(i, j int) bool {
		less := compareValues(matches[i].doc[column], matches[j].doc[column])
		if less == 0 {
			less = strings.Compare(matches[i].id, matches[j].id)
		}
		if direction == "asc" {
			return less < 0
		}
		return less > 0
	})

	result := &Result{Total: int64(len(matches))}
	from, size := intOf(query["from"]), intOf(query["size"])
	if size == 0 {
		size = 10
	}
	for i := from; i < len(matches) && i < from+size; i++ {
		raw, err := json.Marshal(matches[i].doc)
		if err != nil {
			return nil, err
		}
		result.Hits = append(result.Hits, Hit{ID: matches[i].id, Source: raw})
	}
	return result, nil
}

func mustClauses(query map[string]interface{}) []interface{} {
	q, _ := query["query"].(map[string]interface{})
	b, _ := q["bool"].(map[string]interface{})
	must, _ := b["must"].([]interface{})
	return must
}

func matchesAll(doc map[string]interface{}, clauses []interface{}) bool {
	for _, c := range clauses {
		clause, _ := c.(map[string]interface{})
		for kind, body := range clause {
			if !matchesClause(doc, kind, body) {
				return false
			}
		}
	}
	return true
}

func matchesClause(doc map[string]interface{}, kind string, body interface{}) bool {
	args, _ := body.(map[string]interface{})
	switch kind {
	case "constant_score":
		// only used for the draft filter
		return doc["draft_id"] == nil
	case "match_phrase":
		for field, value := range args {
			if !containsFold(doc[field], fmt.Sprint(value)) {
				return false
			}
		}
		return true
	case "multi_match":
		text := fmt.Sprint(args["query"])
		fields, _ := args["fields"].([]string)
		for _, field := range fields {
			if containsFold(doc[field], text) {
				return true
			}
		}
		return false
	}
	return true
}

func containsFold(value interface{}, needle string) bool {
	if value == nil {
		return false
	}
	return strings.Contains(strings.ToLower(fmt.Sprint(value)), strings.ToLower(needle))
}

func sortOf(query map[string]interface{}) (string, string) {
	sorts, _ := query["sort"].([]interface{})
	for _, s := range sorts {
		if m, ok := s.(map[string]interface{}); ok {
			for column, direction := range m {
				return column, fmt.Sprint(direction)
			}
		}
	}
	return "updated_at", "desc"
}

func compareValues(a, b interface{}) int {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	if at, bt, ok := timesOf(a, b); ok {
		return at.Compare(bt)
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// timesOf parses both values as RFC 3339 timestamps. Marshalled times drop
// trailing zeros from the fraction, so they do not sort as strings.
func timesOf(a, b interface{}) (time.Time, time.Time, bool) {
	as, aok := a.(string)
	bs, bok := b.(string)
	if !aok || !bok {
		return time.Time{}, time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339Nano, as)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	bt, err := time.Parse(time.RFC3339Nano, bs)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return at, bt, true
}

func intOf(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
