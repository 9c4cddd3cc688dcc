package ml

import (
	"fmt"
	"sort"

	"econ-predictor/internal/features"

	"gonum.org/v1/gonum/floats"
)

// DefaultK is the neighbour count used by the production model.
const DefaultK = 5

// Neighbor is one training point returned by a nearest-neighbour query.
type Neighbor struct {
	Index    int     `json:"index"`
	Label    string  `json:"label"`
	Distance float64 `json:"distance"`
}

// KNN is a brute-force k-nearest-neighbour classifier over scaled points.
// Each query scans every stored point, O(n) per query. The training sets
// this serves are small and the scan keeps neighbour ordering exact.
type KNN struct {
	k      int
	points [][]float64
	labels []string
}

// FitKNN stores the scaled training set. It fails with
// *InsufficientTrainingDataError when there are fewer than k points.
func FitKNN(scaled []features.Triple, labels []string, k int) (*KNN, error) {
	if k < 1 {
		return nil, fmt.Errorf("neighbour count must be positive, got %d", k)
	}
	if len(scaled) != len(labels) {
		return nil, fmt.Errorf("got %d points but %d labels", len(scaled), len(labels))
	}
	if len(scaled) < k {
		return nil, &InsufficientTrainingDataError{Have: len(scaled), Need: k}
	}

	points := make([][]float64, len(scaled))
	for i, p := range scaled {
		points[i] = p.Vector()
	}
	return &KNN{
		k:      k,
		points: points,
		labels: append([]string(nil), labels...),
	}, nil
}

// K returns the neighbour count.
func (m *KNN) K() int { return m.k }

// Size returns the number of stored training points.
func (m *KNN) Size() int { return len(m.points) }

// Labels returns the distinct training labels in sorted order.
func (m *KNN) Labels() []string {
	seen := make(map[string]struct{})
	for _, l := range m.labels {
		seen[l] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Neighbors returns the k nearest training points to an already scaled
// query, ordered by Euclidean distance and then by training index.
func (m *KNN) Neighbors(q features.Triple) []Neighbor {
	qv := q.Vector()
	all := make([]Neighbor, len(m.points))
	for i, p := range m.points {
		all[i] = Neighbor{Index: i, Label: m.labels[i], Distance: floats.Distance(qv, p, 2)}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Distance != all[j].Distance {
			return all[i].Distance < all[j].Distance
		}
		return all[i].Index < all[j].Index
	})
	return all[:m.k]
}

// Predict returns the majority label among the k nearest neighbours of an
// already scaled query. When several labels share the top count, the label
// of the nearest neighbour among them wins.
func (m *KNN) Predict(q features.Triple) string {
	return Vote(m.Neighbors(q))
}

// Vote picks the majority label from neighbours ordered nearest first.
func Vote(neighbors []Neighbor) string {
	counts := make(map[string]int)
	best := 0
	for _, n := range neighbors {
		counts[n.Label]++
		if counts[n.Label] > best {
			best = counts[n.Label]
		}
	}
	for _, n := range neighbors {
		if counts[n.Label] == best {
			return n.Label
		}
	}
	return ""
}
