package categories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/JaimeStill/docroute/pkg/repository"
)

// Store persists categories. Name matching for Update and Delete is
// case-insensitive. Implementations report ErrNotFound for unknown names and
// may report ErrConflict for name collisions they detect themselves.
type Store interface {
	List(ctx context.Context) ([]Category, error)
	Insert(ctx context.Context, c Category) error
	Update(ctx context.Context, original string, c Category) error
	Delete(ctx context.Context, name string) error
}

type memoryStore struct {
	mu    sync.RWMutex
	items []Category
}

// NewMemoryStore returns a Store held in process memory.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (m *memoryStore) List(_ context.Context) ([]Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Category, len(m.items))
	for i, c := range m.items {
		out[i] = c.clone()
	}
	return out, nil
}

func (m *memoryStore) Insert(_ context.Context, c Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if indexOf(m.items, c.Name) >= 0 {
		return ErrConflict
	}
	m.items = append(m.items, c.clone())
	return nil
}

func (m *memoryStore) Update(_ context.Context, original string, c Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := indexOf(m.items, original)
	if i < 0 {
		return ErrNotFound
	}
	if j := indexOf(m.items, c.Name); j >= 0 && j != i {
		return ErrConflict
	}
	m.items[i] = c.clone()
	return nil
}

func (m *memoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := indexOf(m.items, name)
	if i < 0 {
		return ErrNotFound
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return nil
}

type postgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a Store backed by the categories table.
func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

const listQuery = `
	SELECT name, keywords, receiver_email
	FROM categories
	ORDER BY position`

func (p *postgresStore) List(ctx context.Context) ([]Category, error) {
	items, err := repository.QueryMany(ctx, p.db, listQuery, nil, scanCategory)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	return items, nil
}

func (p *postgresStore) Insert(ctx context.Context, c Category) error {
	keywords, err := json.Marshal(c.Keywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}

	q := `
		INSERT INTO categories(name, keywords, receiver_email)
		VALUES ($1, $2, $3)
		RETURNING name, keywords, receiver_email`

	_, err = repository.WithTx(ctx, p.db, func(tx *sql.Tx) (Category, error) {
		return repository.QueryOne(ctx, tx, q, []any{c.Name, string(keywords), c.ReceiverEmail}, scanCategory)
	})
	return repository.MapError(err, ErrNotFound, ErrConflict)
}

func (p *postgresStore) Update(ctx context.Context, original string, c Category) error {
	keywords, err := json.Marshal(c.Keywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}

	err = repository.ExecExpectOne(
		ctx, p.db,
		`UPDATE categories
		SET name = $1, keywords = $2, receiver_email = $3, updated_at = NOW()
		WHERE lower(name) = lower($4)`,
		c.Name, string(keywords), c.ReceiverEmail, original,
	)
	return repository.MapError(err, ErrNotFound, ErrConflict)
}

func (p *postgresStore) Delete(ctx context.Context, name string) error {
	err := repository.ExecExpectOne(
		ctx, p.db,
		"DELETE FROM categories WHERE lower(name) = lower($1)",
		name,
	)
	return repository.MapError(err, ErrNotFound, ErrConflict)
}

func scanCategory(s repository.Scanner) (Category, error) {
	var (
		c        Category
		keywords []byte
	)
	if err := s.Scan(&c.Name, &keywords, &c.ReceiverEmail); err != nil {
		return c, err
	}
	if err := json.Unmarshal(keywords, &c.Keywords); err != nil {
		return c, fmt.Errorf("decode keywords for %s: %w", c.Name, err)
	}
	return c, nil
}
