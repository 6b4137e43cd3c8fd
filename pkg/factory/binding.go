package factory

import (
	"fmt"
	"reflect"
)

// Binding is one registration produced for a concrete type: the key it is
// bound to and the creator that builds it.
type Binding struct {
	Concrete reflect.Type
	Base     reflect.Type
	KeyType  reflect.Type
	Key      any

	install func(*Catalog) error
}

// Bind builds the binding for concrete under key in the (V, K) table.
func Bind[V any, K comparable](concrete reflect.Type, key K, fn Creator[V]) Binding {
	return Binding{
		Concrete: concrete,
		Base:     reflect.TypeFor[V](),
		KeyType:  reflect.TypeFor[K](),
		Key:      key,
		install: func(c *Catalog) error {
			return For[V, K](c).Register(key, fn)
		},
	}
}

// Install registers the binding into c.
func (b Binding) Install(c *Catalog) error {
	return c.Install(b)
}

// Metadata returns the marker metadata of the bound concrete type.
func (b Binding) Metadata() ([]Metadata, bool) {
	return MetadataOf(b.Concrete)
}

func (b Binding) String() string {
	concrete := "<unknown>"
	if b.Concrete != nil {
		concrete = b.Concrete.String()
	}
	return fmt.Sprintf("%s as %s[%s]", concrete, typeString(b.Base), formatKey(b.Key))
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

var declared []Binding

// Declare records b as a declared binding and installs it into the Default
// catalog. It is the call generated init() units make; a duplicate key
// panics because it can only come from two types claiming the same key.
func Declare(b Binding) {
	if err := b.Install(defaultCatalog); err != nil {
		panic(fmt.Sprintf("factory: %v", err))
	}
	declared = append(declared, b)
}

// Declared returns every binding passed to Declare so far, in declaration
// order. Install them into a fresh catalog to get an isolated copy of the
// process-wide tables.
func Declared() []Binding {
	out := make([]Binding, len(declared))
	copy(out, declared)
	return out
}
