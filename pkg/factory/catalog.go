package factory

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/arthur-debert/keyfactory/pkg/errors"
)

type tableKey struct {
	value reflect.Type
	key   reflect.Type
}

// Catalog holds one Registry per (value type, key type) pair. Tables are
// created on first use and live as long as the catalog. For is safe for
// concurrent use; the tables themselves follow the Registry contract.
type Catalog struct {
	mu     sync.RWMutex
	tables map[tableKey]any
}

// NewCatalog creates an empty catalog. Tests use it to get an isolated
// set of tables; production code normally uses Default.
func NewCatalog() *Catalog {
	return &Catalog{tables: make(map[tableKey]any)}
}

var defaultCatalog = NewCatalog()

// Default returns the process-wide catalog that generated init() units
// register into.
func Default() *Catalog {
	return defaultCatalog
}

// For returns the catalog's table for the (V, K) pair, creating it if needed.
func For[V any, K comparable](c *Catalog) *Registry[V, K] {
	tk := tableKey{value: reflect.TypeFor[V](), key: reflect.TypeFor[K]()}

	c.mu.RLock()
	table, ok := c.tables[tk]
	c.mu.RUnlock()
	if ok {
		return table.(*Registry[V, K])
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if table, ok := c.tables[tk]; ok {
		return table.(*Registry[V, K])
	}
	created := New[V, K]()
	c.tables[tk] = created
	return created
}

// Len returns the number of tables created so far.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

// Install registers each binding into the catalog. It stops at the first
// failure; bindings installed before it stay installed.
func (c *Catalog) Install(bindings ...Binding) error {
	for _, b := range bindings {
		if b.install == nil {
			return errors.Newf(errors.ErrInvalidInput, "binding %s was not built with Bind", b)
		}
		if err := b.install(c); err != nil {
			return fmt.Errorf("installing %s: %w", b, err)
		}
	}
	return nil
}
