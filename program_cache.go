package formiq

import "sync"

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type memoryProgramCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewProgramCache returns an unbounded in-memory ProgramCache that is safe
// to share between evaluators.
func NewProgramCache() ProgramCache {
	return &memoryProgramCache{programs: map[string]any{}}
}

func (c *memoryProgramCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	program, ok := c.programs[key]
	return program, ok
}

func (c *memoryProgramCache) Set(key string, value any) {
	c.mu.Lock()
	c.programs[key] = value
	c.mu.Unlock()
}
