package models

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Joke is the record served by the local joke API, in the public API's shape
type Joke struct {
	Type      string `yaml:"type" json:"type"`
	Setup     string `yaml:"setup" json:"setup"`
	Punchline string `yaml:"punchline" json:"punchline"`
	ID        int    `yaml:"id" json:"id"`
}

// Catalog represents the jokes.yaml structure
type Catalog struct {
	Jokes []Joke `yaml:"jokes"`
}

// LoadCatalog loads a joke catalog file from the given path
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses and validates catalog YAML
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	seen := make(map[int]bool, len(catalog.Jokes))
	for i, j := range catalog.Jokes {
		if j.ID <= 0 {
			return nil, fmt.Errorf("joke %d: id must be positive", i)
		}
		if seen[j.ID] {
			return nil, fmt.Errorf("joke %d: duplicate id %d", i, j.ID)
		}
		if j.Setup == "" || j.Punchline == "" {
			return nil, fmt.Errorf("joke %d: setup and punchline are required", j.ID)
		}
		if j.Type == "" {
			catalog.Jokes[i].Type = "general"
		}
		seen[j.ID] = true
	}

	return &catalog, nil
}

// JokeRegistry indexes a catalog by id
type JokeRegistry struct {
	jokes map[int]Joke
}

// NewJokeRegistry creates a registry from the catalog
func NewJokeRegistry(c *Catalog) *JokeRegistry {
	r := &JokeRegistry{jokes: make(map[int]Joke)}
	if c != nil {
		for _, j := range c.Jokes {
			r.jokes[j.ID] = j
		}
	}
	return r
}

// GetJoke returns a joke by id
func (r *JokeRegistry) GetJoke(id int) (Joke, bool) {
	j, ok := r.jokes[id]
	return j, ok
}

// GetJokesList returns every joke ordered by id
func (r *JokeRegistry) GetJokesList() []Joke {
	jokes := make([]Joke, 0, len(r.jokes))
	for _, j := range r.jokes {
		jokes = append(jokes, j)
	}
	sort.Slice(jokes, func(a, b int) bool { return jokes[a].ID < jokes[b].ID })
	return jokes
}

// Len returns the number of jokes
func (r *JokeRegistry) Len() int { return len(r.jokes) }
