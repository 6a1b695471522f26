package jokes

import (
	"context"
	"errors"
	"testing"

	"github.com/koios/jokeview/pkg/models"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	if len(c.Jokes) == 0 {
		t.Fatal("bundled catalog is empty")
	}
}

func TestLoadCatalog_EmptyPathUsesDefault(t *testing.T) {
	c, err := LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	def, _ := DefaultCatalog()
	if len(c.Jokes) != len(def.Jokes) {
		t.Errorf("got %d jokes, want %d", len(c.Jokes), len(def.Jokes))
	}
}

func TestMemoryStore(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	store := NewMemoryStore(c)
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		j, err := store.Get(ctx, 1)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if j.ID != 1 || j.Setup == "" {
			t.Errorf("Get(1) = %+v", j)
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		if _, err := store.Get(ctx, 9999); !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		list, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != len(c.Jokes) {
			t.Fatalf("got %d jokes, want %d", len(list), len(c.Jokes))
		}
		for i := 1; i < len(list); i++ {
			if list[i-1].ID >= list[i].ID {
				t.Errorf("List not ordered by id at %d", i)
			}
		}
	})

	t.Run("Random", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			j, err := store.Random(ctx)
			if err != nil {
				t.Fatalf("Random: %v", err)
			}
			if _, err := store.Get(ctx, j.ID); err != nil {
				t.Errorf("Random returned unknown joke %+v", j)
			}
		}
	})
}

func TestMemoryStore_Empty(t *testing.T) {
	store := NewMemoryStore(&models.Catalog{})
	if _, err := store.Random(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
