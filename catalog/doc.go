// Package catalog loads the location catalog from its tabular source and
// derives the two views the rest of the system consumes: the formatted
// record list served by the API, and the deterministic (document, metadata,
// id) triples fed to the semantic index.
//
// The catalog is small and fixed for the process lifetime. It is read once;
// both derived views are cached under single-initialization barriers, so a
// Store is safe for concurrent use by request handlers.
package catalog
