package server

import (
	"context"
	"sort"
	"sync"

	"bookstore/internal/storage/books"
	"bookstore/internal/types"
)

// memRepo mimics the postgres repository: unique isbn, title ordering, merge on update.
type memRepo struct {
	mu    sync.Mutex
	rows  map[string]types.Book
	calls int
	err   error
}

func newMemRepo(bks ...*types.Book) *memRepo {
	m := &memRepo{rows: make(map[string]types.Book)}
	for _, b := range bks {
		m.rows[b.Isbn] = *b
	}
	return m
}

func (m *memRepo) storageCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *memRepo) begin() error {
	m.mu.Lock()
	m.calls++
	return m.err
}

func (m *memRepo) List(_ context.Context) ([]*types.Book, error) {
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}

	ret := make([]*types.Book, 0, len(m.rows))
	for _, b := range m.rows {
		b := b
		ret = append(ret, &b)
	}

	sort.Slice(ret, func(i, j int) bool {
		if ret[i].Title != ret[j].Title {
			return ret[i].Title < ret[j].Title
		}
		return ret[i].Isbn < ret[j].Isbn
	})

	return ret, nil
}

func (m *memRepo) GetByIsbn(_ context.Context, isbn string) (*types.Book, error) {
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}

	b, ok := m.rows[isbn]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *memRepo) Create(_ context.Context, book *types.Book) (*types.Book, error) {
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}

	if _, ok := m.rows[book.Isbn]; ok {
		return nil, books.ErrDuplicateIsbn
	}

	m.rows[book.Isbn] = *book
	b := *book
	return &b, nil
}

func (m *memRepo) Update(_ context.Context, isbn string, fields books.Fields) (*types.Book, error) {
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}

	b, ok := m.rows[isbn]
	if !ok {
		return nil, nil
	}

	for _, col := range books.MutableColumns {
		val, ok := fields[col]
		if !ok {
			continue
		}

		switch col {
		case "amazon_url":
			b.AmazonUrl = val.(string)
		case "author":
			b.Author = val.(string)
		case "language":
			b.Language = val.(string)
		case "pages":
			b.Pages = val.(int)
		case "publisher":
			b.Publisher = val.(string)
		case "title":
			b.Title = val.(string)
		case "year":
			b.Year = val.(int)
		}
	}

	m.rows[isbn] = b
	return &b, nil
}

func (m *memRepo) Delete(_ context.Context, isbn string) (bool, error) {
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return false, err
	}

	if _, ok := m.rows[isbn]; !ok {
		return false, nil
	}

	delete(m.rows, isbn)
	return true, nil
}
