package rules

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrUnknownYear   = errors.New("no rules for tax year")
	ErrYearDefined   = errors.New("rules for tax year already defined")
	ErrMalformedYear = errors.New("malformed rule set")
)

// Catalog maps tax years to their rule sets.
type Catalog struct {
	mu    sync.RWMutex
	years map[int]*YearRules
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{years: make(map[int]*YearRules)}
}

// Builtin returns a catalog holding the tables compiled into this package.
func Builtin() *Catalog {
	c := NewCatalog()
	c.years[2024] = &YearRules{Year: 2024, Federal: Federal2024(), States: States2024()}
	c.years[2025] = &YearRules{Year: 2025, Federal: Federal2025(), States: States2025()}
	return c
}

// Get returns the rule set for a year. The result must be treated as read-only.
func (c *Catalog) Get(year int) (*YearRules, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	yr, ok := c.years[year]
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrUnknownYear, year)
	}
	return yr, nil
}

// Add registers a new year. Existing years are immutable and cannot be replaced.
func (c *Catalog) Add(yr *YearRules) error {
	if yr == nil || yr.Year == 0 {
		return fmt.Errorf("%w: year is required", ErrMalformedYear)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.years[yr.Year]; exists {
		return fmt.Errorf("%w: %d", ErrYearDefined, yr.Year)
	}
	c.years[yr.Year] = yr
	return nil
}

// Years lists the registered years in ascending order.
func (c *Catalog) Years() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]int, 0, len(c.years))
	for y := range c.years {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// Latest returns the most recent registered year, or 0 for an empty catalog.
func (c *Catalog) Latest() int {
	years := c.Years()
	if len(years) == 0 {
		return 0
	}
	return years[len(years)-1]
}
