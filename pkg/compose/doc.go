// Package compose turns a tree of configuration documents into a single
// effective ESLint configuration.
//
// A Loader finds documents by reference across one or more Sources. A Resolver
// expands extends lists depth-first and reduces the expanded documents with
// Merge. Overrides are applied last, above every document.
package compose
