// Package discovery turns marker fields on struct types into registration
// units.
//
// The pass walks every type declaration of a set of type-checked
// packages. A struct whose field list contains something spelled
// Registration[...] is a candidate; the field must then resolve to the
// Registration type of the configured marker package, so an unrelated type
// of the same name never produces a binding.
//
// Each marker is validated: the base type and key type must resolve, the
// key tag must be present and not nil, and the key text must be a valid
// key of the key type. Rejected markers become Diagnostics and are left
// out of the result; the pass itself still succeeds unless the policy is
// PolicyError.
//
// Every accepted candidate yields exactly one Unit, the content of one
// generated file holding an init() that declares the candidate's
// bindings.
package discovery
