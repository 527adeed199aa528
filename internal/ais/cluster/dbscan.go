package cluster

import (
	"gonum.org/v1/gonum/mat"
)

// DBSCAN labels each row of x. Labels are 0..k-1 in discovery order and
// ais.NoiseLabel (-1) for noise. A row is core when at least minPts rows,
// itself included, lie within eps. Border rows join the first cluster that
// reaches them.
func DBSCAN(x *mat.Dense, params Params) []int {
	if x == nil {
		return nil
	}
	n, _ := x.Dims()
	if n == 0 {
		return nil
	}

	labels := make([]int, n) // 0=unvisited, -1=noise, >0=clusterID
	clusterID := 0

	si := newIndexFor(x, params.Eps)
	si.Build(x)

	var buf, queue []int
	for i := 0; i < n; i++ {
		if labels[i] != 0 {
			continue
		}

		buf = si.regionQueryInto(buf[:0], x, i, params.Eps)
		if len(buf) < params.MinSamples {
			labels[i] = -1
			continue
		}

		clusterID++
		buf, queue = expandCluster(x, si, labels, i, buf, queue[:0], clusterID, params)
	}

	for i, l := range labels {
		if l > 0 {
			labels[i] = l - 1
		}
	}
	return labels
}

// expandCluster grows a cluster breadth-first from a core row. Rows are
// labelled when they are queued, so each row enters the queue at most once.
// buf and queue are scratch slices returned for reuse.
func expandCluster(x *mat.Dense, si *SpatialIndex, labels []int,
	seed int, neighbors, queue []int, clusterID int, params Params) ([]int, []int) {

	labels[seed] = clusterID
	queue = claim(labels, neighbors, queue, clusterID)

	for j := 0; j < len(queue); j++ {
		neighbors = si.regionQueryInto(neighbors[:0], x, queue[j], params.Eps)
		if len(neighbors) >= params.MinSamples {
			queue = claim(labels, neighbors, queue, clusterID)
		}
	}
	return neighbors, queue
}

// claim assigns unlabelled and noise rows to clusterID. Noise rows become
// border rows; they were already found not to be core, so only unvisited
// rows are queued for expansion.
func claim(labels, neighbors, queue []int, clusterID int) []int {
	for _, idx := range neighbors {
		switch labels[idx] {
		case 0:
			labels[idx] = clusterID
			queue = append(queue, idx)
		case -1:
			labels[idx] = clusterID
		}
	}
	return queue
}
