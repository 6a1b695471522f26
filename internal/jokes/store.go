// Package jokes stores the catalog served by the local joke API.
package jokes

import (
	"context"
	_ "embed"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/koios/jokeview/pkg/models"
)

// ErrNotFound is returned when no joke matches
var ErrNotFound = errors.New("joke not found")

//go:embed catalog.yaml
var defaultCatalog []byte

// DefaultCatalog returns the catalog bundled with the binary
func DefaultCatalog() (*models.Catalog, error) {
	return models.ParseCatalog(defaultCatalog)
}

// LoadCatalog loads the catalog at path, or the bundled one when path is empty
func LoadCatalog(path string) (*models.Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	return models.LoadCatalog(path)
}

// Store is a source of jokes
type Store interface {
	Random(ctx context.Context) (models.Joke, error)
	Get(ctx context.Context, id int) (models.Joke, error)
	List(ctx context.Context) ([]models.Joke, error)
}

// MemoryStore serves a catalog held in memory
type MemoryStore struct {
	registry *models.JokeRegistry
	ids      []int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMemoryStore creates a store over the catalog
func NewMemoryStore(c *models.Catalog) *MemoryStore {
	reg := models.NewJokeRegistry(c)
	s := &MemoryStore{
		registry: reg,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, j := range reg.GetJokesList() {
		s.ids = append(s.ids, j.ID)
	}
	return s
}

// Random returns any joke
func (s *MemoryStore) Random(ctx context.Context) (models.Joke, error) {
	if len(s.ids) == 0 {
		return models.Joke{}, ErrNotFound
	}
	s.mu.Lock()
	id := s.ids[s.rng.IntN(len(s.ids))]
	s.mu.Unlock()
	return s.Get(ctx, id)
}

// Get returns the joke with id
func (s *MemoryStore) Get(_ context.Context, id int) (models.Joke, error) {
	j, ok := s.registry.GetJoke(id)
	if !ok {
		return models.Joke{}, ErrNotFound
	}
	return j, nil
}

// List returns every joke ordered by id
func (s *MemoryStore) List(_ context.Context) ([]models.Joke, error) {
	return s.registry.GetJokesList(), nil
}
