package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/pmo-intel/insight-hub/internal/embedding"
	"github.com/pmo-intel/insight-hub/internal/models"
	"github.com/pmo-intel/insight-hub/pkg/utils"
)

const (
	minClusterInput = 30 // below this, clustering is noise
	maxClusters     = 6
	kmeansMaxIters  = 20
)

// ClusterTopics groups articles into topic clusters by k-means over their
// embeddings and writes the cluster id onto each article. Requires an
// embedder; with none configured, or too few articles, it is a no-op.
func ClusterTopics(ctx context.Context, embedder embedding.Embedder, articles []*models.Article, logger *zap.Logger) error {
	if embedder == nil || len(articles) < minClusterInput {
		return nil
	}

	vecs := make([][]float32, len(articles))
	for i, a := range articles {
		vec, err := embedder.Embed(ctx, utils.Truncate(a.Title+". "+a.Summary, 1000))
		if err != nil {
			return err
		}
		vecs[i] = vec
	}

	k := len(articles) / 15
	if k < 2 {
		k = 2
	}
	if k > maxClusters {
		k = maxClusters
	}

	assignments := kmeans(vecs, k)
	for i, a := range articles {
		cluster := assignments[i]
		a.TopicCluster = &cluster
	}
	logger.Info("clustered articles", zap.Int("articles", len(articles)), zap.Int("k", k))
	return nil
}

// kmeans runs Lloyd's algorithm with cosine distance. Initial centroids
// are picked at even strides through the input so runs over the same
// batch are deterministic.
func kmeans(vecs [][]float32, k int) []int {
	n := len(vecs)
	dim := len(vecs[0])

	centroids := make([][]float32, k)
	for c := 0; c < k; c++ {
		centroids[c] = append([]float32(nil), vecs[c*n/k]...)
	}

	assignments := make([]int, n)
	for iter := 0; iter < kmeansMaxIters; iter++ {
		changed := false
		for i, v := range vecs {
			best, bestSim := 0, float64(-2)
			for c, centroid := range centroids {
				if sim := utils.CosineSimilarity(v, centroid); sim > bestSim {
					best, bestSim = c, sim
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		counts := make([]int, k)
		sums := make([][]float32, k)
		for c := range sums {
			sums[c] = make([]float32, dim)
		}
		for i, v := range vecs {
			c := assignments[i]
			counts[c]++
			for d, val := range v {
				sums[c][d] += val
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for d := range sums[c] {
				sums[c][d] /= float32(counts[c])
			}
			utils.NormalizeL2(sums[c])
			centroids[c] = sums[c]
		}
	}
	return assignments
}
