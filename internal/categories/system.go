package categories

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// System defines the public contract for the category registry.
type System interface {
	Handler() *Handler

	List(ctx context.Context) ([]Category, error)
	Add(ctx context.Context, in Input) (Category, error)
	Edit(ctx context.Context, originalName string, in Input) (Category, error)
	Delete(ctx context.Context, name string) error
	Snapshot(ctx context.Context) (Snapshot, error)
}

type registry struct {
	mu     sync.Mutex
	store  Store
	logger *slog.Logger
}

// New creates a registry over store. All mutations are serialized so that
// uniqueness checks observe every previously completed write.
func New(store Store, logger *slog.Logger) System {
	return &registry{
		store:  store,
		logger: logger.With("system", "categories"),
	}
}

func (r *registry) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *registry) List(ctx context.Context) ([]Category, error) {
	return r.store.List(ctx)
}

func (r *registry) Snapshot(ctx context.Context) (Snapshot, error) {
	items, err := r.store.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot categories: %w", err)
	}
	return NewSnapshot(items), nil
}

func (r *registry) Add(ctx context.Context, in Input) (Category, error) {
	c, err := in.normalize()
	if err != nil {
		return Category{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.store.List(ctx)
	if err != nil {
		return Category{}, err
	}
	if indexOf(existing, c.Name) >= 0 {
		return Category{}, fmt.Errorf("%w: %s", ErrConflict, c.Name)
	}

	if err := r.store.Insert(ctx, c); err != nil {
		return Category{}, err
	}

	r.logger.Info("category added", "name", c.Name, "keywords", len(c.Keywords))
	return c, nil
}

func (r *registry) Edit(ctx context.Context, originalName string, in Input) (Category, error) {
	c, err := in.normalize()
	if err != nil {
		return Category{}, err
	}
	originalName = strings.TrimSpace(originalName)

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.store.List(ctx)
	if err != nil {
		return Category{}, err
	}

	target := indexOf(existing, originalName)
	if target < 0 {
		return Category{}, fmt.Errorf("%w: %s", ErrNotFound, originalName)
	}
	if i := indexOf(existing, c.Name); i >= 0 && i != target {
		return Category{}, fmt.Errorf("%w: %s", ErrConflict, c.Name)
	}

	if err := r.store.Update(ctx, originalName, c); err != nil {
		return Category{}, err
	}

	r.logger.Info("category edited", "original", originalName, "name", c.Name)
	return c, nil
}

func (r *registry) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, OtherName) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Delete(ctx, name); err != nil {
		return err
	}

	r.logger.Info("category deleted", "name", name)
	return nil
}

func indexOf(items []Category, name string) int {
	for i, c := range items {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}
