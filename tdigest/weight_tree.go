// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package tdigest

// weightTree is a Fenwick tree over centroid weights. Point updates and prefix
// sums are O(log n); rebuild is O(n) and must follow any change to the centroid
// positions.
type weightTree struct {
	tree []float64 // 1-based
}

func (t *weightTree) rebuild(centroids Centroids) {
	n := len(centroids)
	if cap(t.tree) < n+1 {
		t.tree = make([]float64, n+1)
	} else {
		t.tree = t.tree[:n+1]
		t.tree[0] = 0
	}
	for i, c := range centroids {
		t.tree[i+1] = c.Weight
	}
	for i := 1; i <= n; i++ {
		if j := i + i&-i; j <= n {
			t.tree[j] += t.tree[i]
		}
	}
}

// add adds weight to the centroid at index i.
func (t *weightTree) add(i int, weight float64) {
	for j := i + 1; j < len(t.tree); j += j & -j {
		t.tree[j] += weight
	}
}

// prefix returns the total weight of the centroids before index i.
func (t *weightTree) prefix(i int) float64 {
	var sum float64
	for j := i; j > 0; j -= j & -j {
		sum += t.tree[j]
	}
	return sum
}
