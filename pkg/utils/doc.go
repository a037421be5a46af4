// Package utils provides vector math and concurrency helpers shared by the
// builder, the embedders and the reports.
//
//   - Cosine similarity, pairwise and cross similarity matrices (vector.go)
//   - Top-K selection by score (vector.go)
//   - A generic worker pool and batching (concurrent.go)
//   - Panic recovery for goroutines (recovery.go)
package utils
