// Package report computes read-only metrics over built and stored graphs:
// edge-kind breakdowns, density, how many edges bridge UX feedback to design
// references, retrieval recall@k between the two sources, and ablations of
// the two edge layers. Built graphs can be exported to parquet for offline
// analysis.
package report
