// Package parallel provides small concurrency helpers shared by the
// coordinator.
package parallel

import "sync"

// ErrorCollector records errors reported concurrently by indexed workers and
// keeps the one with the lowest index, whatever the arrival order. The zero
// value is ready to use.
type ErrorCollector struct {
	mu    sync.Mutex
	err   error
	index int
	count int
}

// SetError records err for the worker at index. Nil errors are ignored.
func (c *ErrorCollector) SetError(index int, err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	if c.err == nil || index < c.index {
		c.err = err
		c.index = index
	}
}

// Err returns the recorded error with the lowest index, or nil.
func (c *ErrorCollector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Index returns the index of the error returned by Err, or -1 if none.
func (c *ErrorCollector) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		return -1
	}
	return c.index
}

// Count returns how many non-nil errors were recorded.
func (c *ErrorCollector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
