package models

import (
	"os"
	"path/filepath"
	"testing"
)

const testCatalog = `jokes:
  - id: 2
    type: programming
    setup: "Why do programmers prefer dark mode?"
    punchline: "Because light attracts bugs."
  - id: 1
    setup: "Why?"
    punchline: "Because."
`

func TestLoadCatalog_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jokes.yaml")
	if err := os.WriteFile(path, []byte(testCatalog), 0644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Jokes) != 2 {
		t.Fatalf("got %d jokes, want 2", len(c.Jokes))
	}
	if c.Jokes[1].Type != "general" {
		t.Errorf("default Type = %q, want general", c.Jokes[1].Type)
	}
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing catalog")
	}
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", ": : bad yaml [[["},
		{"zero id", "jokes:\n  - id: 0\n    setup: a\n    punchline: b\n"},
		{"duplicate id", "jokes:\n  - id: 1\n    setup: a\n    punchline: b\n  - id: 1\n    setup: c\n    punchline: d\n"},
		{"missing punchline", "jokes:\n  - id: 1\n    setup: a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCatalog([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// --- JokeRegistry ---

func TestJokeRegistry(t *testing.T) {
	c, err := ParseCatalog([]byte(testCatalog))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}

	reg := NewJokeRegistry(c)
	if reg.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", reg.Len())
	}

	j, ok := reg.GetJoke(2)
	if !ok || j.Type != "programming" {
		t.Errorf("GetJoke(2) = %+v, %v", j, ok)
	}
	if _, ok := reg.GetJoke(99); ok {
		t.Error("expected 99 to be missing")
	}

	list := reg.GetJokesList()
	if list[0].ID != 1 || list[1].ID != 2 {
		t.Errorf("GetJokesList not sorted by id: %+v", list)
	}
}
