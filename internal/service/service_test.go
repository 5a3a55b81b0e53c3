package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"tournament-gateway/internal/api"
	"tournament-gateway/internal/apperr"
	"tournament-gateway/internal/cache"
	"tournament-gateway/internal/config"
	"tournament-gateway/internal/store"

	"github.com/rs/zerolog"
)

// memStore is an in-memory store.Store used to exercise services without
// SQLite. Filters are matched against the record's JSON form, mirroring the
// real adapter's json_extract semantics.
type memStore[T any] struct {
	mu            sync.Mutex
	items         map[string]T
	order         []string
	findManyCalls int
	createErr     error
}

func newMemStore[T any]() *memStore[T] {
	return &memStore[T]{items: make(map[string]T)}
}

func matches[T any](record T, filter store.Filter) bool {
	b, _ := json.Marshal(record)
	var doc map[string]any
	_ = json.Unmarshal(b, &doc)

	for k, v := range filter {
		got := fmt.Sprint(doc[k])
		switch vv := v.(type) {
		case []string:
			if !slices.Contains(vv, got) {
				return false
			}
		default:
			if got != fmt.Sprint(v) {
				return false
			}
		}
	}
	return true
}

func (m *memStore[T]) FindMany(_ context.Context, filter store.Filter) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findManyCalls++

	var out []T
	for _, id := range m.order {
		if record, ok := m.items[id]; ok && matches(record, filter) {
			out = append(out, record)
		}
	}
	return out, nil
}

func (m *memStore[T]) FindOne(ctx context.Context, filter store.Filter) (*T, error) {
	records, err := m.FindMany(ctx, filter)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return &records[0], nil
}

func (m *memStore[T]) FindByID(_ context.Context, id string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (m *memStore[T]) Create(_ context.Context, id string, record T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return nil, m.createErr
	}
	m.items[id] = record
	m.order = append(m.order, id)
	return &record, nil
}

func (m *memStore[T]) Update(_ context.Context, id string, record T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return nil, apperr.New(apperr.NotFound, "Resource not found")
	}
	m.items[id] = record
	return &record, nil
}

func (m *memStore[T]) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	return true, nil
}

func (m *memStore[T]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// fakeRiot stands in for the upstream client and the webhook poster.
type fakeRiot struct {
	mu sync.Mutex

	providerID    string
	providerErr   error
	providerCalls int

	tournamentID string

	codes    []string
	codesErr error

	result     map[string]any
	resultErr  error
	fetchCalls int

	posts   []string
	postErr map[string]error
}

func (f *fakeRiot) CreateProvider(context.Context, string, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.providerCalls++
	return f.providerID, f.providerErr
}

func (f *fakeRiot) CreateTournament(context.Context, string, string) (string, error) {
	return f.tournamentID, nil
}

func (f *fakeRiot) CreateCodes(context.Context, string, api.CodeParameters, int) ([]string, error) {
	return f.codes, f.codesErr
}

func (f *fakeRiot) FetchMatchResult(context.Context, string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	return f.result, f.resultErr
}

func (f *fakeRiot) PostWebhook(_ context.Context, url string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, url)
	if err, ok := f.postErr[url]; ok {
		return err
	}
	return nil
}

func (f *fakeRiot) postedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.posts)
}

func newTestCache() *cache.Cache {
	return cache.New(time.Minute, zerolog.Nop())
}

func testConfig(validate bool) *config.Config {
	return &config.Config{ValidateWebhooks: validate, CacheTTL: time.Minute}
}
