// Package vector provides the immutable vector index snapshot and similarity search.
package vector

import (
	"fmt"
	"math"
)

// Metric selects how query and passage vectors are compared.
type Metric string

const (
	// MetricL2 ranks by Euclidean distance. Scores are negated distances so
	// higher is always better regardless of metric.
	MetricL2 Metric = "l2"
	// MetricCosine normalizes vectors at build/search time and ranks by inner product.
	MetricCosine Metric = "cosine"
)

// ParseMetric validates and returns the metric for the given name.
func ParseMetric(name string) (Metric, error) {
	switch Metric(name) {
	case MetricL2, "":
		return MetricL2, nil
	case MetricCosine:
		return MetricCosine, nil
	default:
		return "", fmt.Errorf("unknown distance metric: %s (supported: l2, cosine)", name)
	}
}

// Score compares a query vector against a passage vector. Higher is better
// for both metrics: cosine returns the inner product, l2 returns the negated
// Euclidean distance.
func (m Metric) Score(query, passage []float32) float64 {
	switch m {
	case MetricCosine:
		return InnerProduct(query, passage)
	default:
		return -L2Distance(query, passage)
	}
}

// InnerProduct returns the inner product of two vectors (for normalized vectors equals cosine similarity).
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i] * b[i])
	}
	return dot
}

// L2Distance returns the Euclidean distance between two vectors.
func L2Distance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v * v)
	}
	return math.Sqrt(sum)
}

// NormalizeL2 returns a copy of x scaled to unit L2 norm. Zero vectors are returned as-is.
func NormalizeL2(x []float32) []float32 {
	out := make([]float32, len(x))
	norm := L2Norm(x)
	if norm == 0 {
		copy(out, x)
		return out
	}
	inv := float32(1.0 / norm)
	for i, v := range x {
		out[i] = v * inv
	}
	return out
}
