package chunk

import (
	"context"

	"github.com/meridianwatch/geodex/internal/db"
)

// mockStore implements the repository's store interface in memory.
type mockStore struct {
	hashes map[string]map[string]string

	createCalls int
	createErr   error
	exists      bool
	existsErr   error
	dropErr     error
	lastDef     *db.IndexDefinition

	knnResult *db.SearchResult
	knnErr    error
	lastKNN   *db.KNNQuery

	keysResult []string
	keysErr    error
	lastQuery  string

	countResult int
	countErr    error
}

func newMockStore() *mockStore {
	return &mockStore{hashes: make(map[string]map[string]string)}
}

func (m *mockStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	for _, item := range items {
		m.hashes[item.Key] = item.Fields
	}
	return nil
}

func (m *mockStore) DelMulti(_ context.Context, keys []string) (int, error) {
	n := 0
	for _, key := range keys {
		if _, ok := m.hashes[key]; ok {
			delete(m.hashes, key)
			n++
		}
	}
	return n, nil
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.createCalls++
	m.lastDef = def
	return m.createErr
}

func (m *mockStore) IndexExists(_ context.Context, _ string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockStore) DropIndex(_ context.Context, _ string) error { return m.dropErr }

func (m *mockStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.lastKNN = q
	if m.knnErr != nil {
		return nil, m.knnErr
	}
	if m.knnResult == nil {
		return &db.SearchResult{}, nil
	}
	return m.knnResult, nil
}

func (m *mockStore) SearchKeys(_ context.Context, _, query string, _ int) ([]string, error) {
	m.lastQuery = query
	return m.keysResult, m.keysErr
}

func (m *mockStore) SearchCount(_ context.Context, _, _ string) (int, error) {
	return m.countResult, m.countErr
}
