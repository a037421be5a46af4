// Package types defines the core data types for the hybrid semantic knowledge graph.
//
// This package contains the fundamental types used throughout hskg:
//   - Node: a typed concept in the graph with properties, labels and an optional embedding
//   - Relation: a typed, directed link between two nodes, referenced by id
//   - PropertyValue: the closed set of values a property may hold
//   - HeterogeneousItem: one acquired unit of UX feedback or design reference material
//
// # Node Types
//
// Nodes carry one of a fixed set of types (ENTITY, CONCEPT, DOCUMENT, USER,
// PRODUCT, REVIEW, FEATURE, CATEGORY, INTENT, TOPIC, CUSTOM). The type tag is
// also seeded into the node's label set.
//
// # Edge Kinds
//
// Graphs produced by the builder layer two kinds of edges on the same pair of
// nodes, distinguished by the "kind" property:
//   - symbolic: both endpoints share a category; the category is kept under "label"
//   - similarity: cosine similarity over embeddings reached the threshold; kept under "weight"
//
// # Errors
//
// Failures are reported with sentinel errors (ErrShapeMismatch, ErrNotFound,
// ErrDanglingEndpoint, ErrUnsupportedStorageType) that callers match with errors.Is.
package types
