// Package core implements keyfactory's command flows on top of the
// loader, discovery and codegen packages.
//
// Generate loads the configured packages, discovers marked types, writes
// one initialization file per accepted type and prunes generated files
// whose type no longer carries a marker. Check runs the same steps
// without writing and fails when anything would change or a marker was
// rejected. List stops after discovery.
package core
