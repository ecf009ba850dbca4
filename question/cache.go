package question

import (
	"log"
	"slices"
	"sync"

	"github.com/shadil-rayyan/Math-Mantra-sub000/models"
)

// Cache memoizes resolved questions per (language, mode, difficulty).
// Entries live until Clear; a Get observes either nothing or a complete list.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key][]models.Question
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{entries: make(map[Key][]models.Question)}
}

// Get returns the cached questions. Callers must not modify the returned slice.
func (c *Cache) Get(lang, mode, difficulty string) ([]models.Question, bool) {
	key := NewKey(lang, mode, difficulty)

	c.mu.RLock()
	questions, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		log.Printf("Cache miss for key: %s", key)
	}
	return questions, ok
}

// Put stores a copy of questions, replacing any previous entry for the key
func (c *Cache) Put(lang, mode, difficulty string, questions []models.Question) {
	key := NewKey(lang, mode, difficulty)
	stored := slices.Clone(questions)

	c.mu.Lock()
	c.entries[key] = stored
	c.mu.Unlock()
}

// Len returns the number of cached keys
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[Key][]models.Question)
	c.mu.Unlock()
}
