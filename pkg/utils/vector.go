package utils

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrRaggedMatrix is returned when the rows of a vector matrix differ in length.
var ErrRaggedMatrix = errors.New("vector rows have different dimensions")

// CosineSimilarity calculates the cosine similarity between two float32 vectors.
// Returns 0 if vectors have different lengths, are empty, or either has zero magnitude.
// The result is in the range [-1, 1].
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64

	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// DotProduct calculates the dot product of two float32 vectors.
// Returns 0 if vectors have different lengths.
func DotProduct(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var result float64
	for i := range a {
		result += float64(a[i]) * float64(b[i])
	}
	return result
}

// Magnitude calculates the Euclidean magnitude (L2 norm) of a float32 vector.
func Magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize normalizes a float32 vector to unit length.
// Returns nil if the input is empty or has zero magnitude.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return nil
	}

	mag := Magnitude(v)
	if mag == 0 {
		return nil
	}

	result := make([]float32, len(v))
	for i, x := range v {
		result[i] = float32(float64(x) / mag)
	}
	return result
}

// MatrixDimension returns the shared row length of vectors.
// An empty matrix has dimension 0.
func MatrixDimension(vectors [][]float32) (int, error) {
	if len(vectors) == 0 {
		return 0, nil
	}
	dim := len(vectors[0])
	for i, row := range vectors {
		if len(row) != dim {
			return 0, fmt.Errorf("%w: row %d has %d values, expected %d", ErrRaggedMatrix, i, len(row), dim)
		}
	}
	return dim, nil
}

// unitRows returns the rows of vectors scaled to unit length, as float64.
// Zero rows stay nil so that every similarity against them is 0.
func unitRows(vectors [][]float32) [][]float64 {
	out := make([][]float64, len(vectors))
	for i, row := range vectors {
		mag := Magnitude(row)
		if mag == 0 {
			continue
		}
		u := make([]float64, len(row))
		for j, x := range row {
			u[j] = float64(x) / mag
		}
		out[i] = u
	}
	return out
}

func dot64(a, b []float64) float64 {
	if a == nil || b == nil {
		return 0
	}
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// PairwiseCosine returns the full n×n cosine similarity matrix of vectors.
// The matrix is symmetric with 1 on the diagonal for every non-zero row.
// Rows must share one dimension.
func PairwiseCosine(vectors [][]float32) ([][]float64, error) {
	return PairwiseCosineConcurrent(context.Background(), vectors, 1)
}

// PairwiseCosineConcurrent is PairwiseCosine with rows spread over a worker pool.
// Each worker owns row i and writes cells (i, j) and (j, i) for j >= i.
func PairwiseCosineConcurrent(ctx context.Context, vectors [][]float32, workers int) ([][]float64, error) {
	if _, err := MatrixDimension(vectors); err != nil {
		return nil, err
	}

	n := len(vectors)
	units := unitRows(vectors)
	sims := make([][]float64, n)
	for i := range sims {
		sims[i] = make([]float64, n)
	}

	fillRow := func(_ context.Context, i int) (struct{}, error) {
		return struct{}{}, fillCosineRow(sims, units, i)
	}

	if workers <= 1 || n < 2 {
		for i := 0; i < n; i++ {
			if _, err := fillRow(ctx, i); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		}
		return sims, nil
	}

	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	_, errs := NewWorkerPool(workers, fillRow).ProcessItems(ctx, rows)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sims, nil
}

// fillCosineRow writes cells (i, j) and (j, i) of sims for j >= i.
func fillCosineRow(sims, units [][]float64, i int) (err error) {
	defer RecoverAsError(&err)
	for j := i; j < len(units); j++ {
		s := clampUnit(dot64(units[i], units[j]))
		sims[i][j] = s
		sims[j][i] = s
	}
	return nil
}

// CrossCosine returns the len(a)×len(b) cosine similarity matrix between two vector sets.
func CrossCosine(a, b [][]float32) ([][]float64, error) {
	dimA, err := MatrixDimension(a)
	if err != nil {
		return nil, err
	}
	dimB, err := MatrixDimension(b)
	if err != nil {
		return nil, err
	}
	if len(a) > 0 && len(b) > 0 && dimA != dimB {
		return nil, fmt.Errorf("%w: %d vs %d", ErrRaggedMatrix, dimA, dimB)
	}

	ua, ub := unitRows(a), unitRows(b)
	sims := make([][]float64, len(a))
	for i := range ua {
		sims[i] = make([]float64, len(b))
		for j := range ub {
			sims[i][j] = clampUnit(dot64(ua[i], ub[j]))
		}
	}
	return sims, nil
}

// clampUnit removes floating point drift outside [-1, 1].
func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// ScoredItem represents an item with a score for top-K selection.
type ScoredItem[T any] struct {
	Item  T
	Score float64
}

// minHeap keeps the lowest score at the root so the weakest of the current
// top K is cheap to evict.
type minHeap[T any] []ScoredItem[T]

func (h minHeap[T]) Len() int           { return len(h) }
func (h minHeap[T]) Less(i, j int) bool { return h[i].Score < h[j].Score }
func (h minHeap[T]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *minHeap[T]) Push(x any) {
	*h = append(*h, x.(ScoredItem[T]))
}

func (h *minHeap[T]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// TopKByScore returns the top K items with the highest scores, sorted descending.
// This is O(n log k) rather than a full sort when k is small.
func TopKByScore[T any](items []ScoredItem[T], k int) []ScoredItem[T] {
	if k <= 0 || len(items) == 0 {
		return nil
	}

	if k >= len(items) {
		result := make([]ScoredItem[T], len(items))
		copy(result, items)
		sort.SliceStable(result, func(i, j int) bool { return result[i].Score > result[j].Score })
		return result
	}

	h := make(minHeap[T], 0, k)
	heap.Init(&h)

	for _, item := range items {
		if h.Len() < k {
			heap.Push(&h, item)
		} else if item.Score > h[0].Score {
			heap.Pop(&h)
			heap.Push(&h, item)
		}
	}

	result := make([]ScoredItem[T], h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(ScoredItem[T])
	}

	return result
}

// TopKIndicesByScore returns the indices of the top K scores in descending order.
func TopKIndicesByScore(scores []float64, k int) []int {
	if k <= 0 || len(scores) == 0 {
		return nil
	}

	items := make([]ScoredItem[int], len(scores))
	for i, score := range scores {
		items[i] = ScoredItem[int]{Item: i, Score: score}
	}

	topK := TopKByScore(items, k)
	indices := make([]int, len(topK))
	for i, item := range topK {
		indices[i] = item.Item
	}
	return indices
}
