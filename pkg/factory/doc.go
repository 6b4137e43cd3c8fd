// Package factory provides keyed object construction: a table of creation
// functions per (value type, key type) pair, filled once during
// initialization and queried many times afterwards.
//
// Bindings are usually not written by hand. A concrete type declares the
// abstract type and key it should be bound to with a marker field:
//
//	type CreateHandler struct {
//	    _ factory.Registration[Handler, Kind] `factory:"KindCreate"`
//	}
//
// and the keyfactory generator emits an init() unit for it:
//
//	func init() {
//	    factory.Declare(factory.Bind[Handler, Kind](reflect.TypeFor[CreateHandler](), KindCreate, func() Handler { return &CreateHandler{} }))
//	}
//
// Application code then asks the catalog for an instance:
//
//	h, err := factory.For[Handler, Kind](factory.Default()).Create(KindCreate)
//
// Registration is not synchronized. All Register calls must complete
// before concurrent Create/TryCreate traffic starts, which package init()
// ordering guarantees for generated units.
package factory
