// Package taxonomy provides the type-hierarchy capability the SRL compiler
// classifies type tags against.
//
// The compiler never owns a taxonomy: it is handed a Hierarchy and asks
// is-a questions ("does type/Latitude descend from type/Field?"). Registry
// is a simple edge-list implementation, and Default returns a built-in
// hierarchy sufficient for the stock rule documents and for tests.
package taxonomy
