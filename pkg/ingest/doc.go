// Package ingest is the acquisition layer that turns raw research material
// into heterogeneous items ready for embedding and graph construction.
//
// Feedback comes from CSV exports (one free-text column), design references
// from plain-text files chunked with a sliding window, and pre-built item
// batches from YAML or JSON files. Concepts are pulled out of each text with
// a keyword lexicon that assigns the UX categories (product, setting, state,
// user) and the design categories (goal, fix, item).
package ingest
