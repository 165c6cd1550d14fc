package cluster

import (
	"errors"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

var errBadK = errors.New("k must be between 1 and the number of points")

// Algorithm partitions feature rows into k groups.
type Algorithm interface {
	Fit(features [][]float64, k int) (labels []int, inertia float64, err error)
}

// KMeans is Lloyd's algorithm with k-means++ seeding. The run with the
// lowest inertia out of Restarts wins. Runs are reproducible for a fixed Seed.
type KMeans struct {
	Seed     int64
	Restarts int
	MaxIter  int
	Tol      float64
}

// NewKMeans returns a KMeans with the default tuning.
func NewKMeans(seed int64) *KMeans {
	return &KMeans{Seed: seed, Restarts: 10, MaxIter: 300, Tol: 1e-4}
}

func (km *KMeans) defaults() KMeans {
	c := *km
	if c.Restarts <= 0 {
		c.Restarts = 10
	}
	if c.MaxIter <= 0 {
		c.MaxIter = 300
	}
	if c.Tol <= 0 {
		c.Tol = 1e-4
	}
	return c
}

// Fit implements Algorithm.
func (km *KMeans) Fit(features [][]float64, k int) ([]int, float64, error) {
	if k < 1 || k > len(features) {
		return nil, 0, errBadK
	}
	cfg := km.defaults()

	var best []int
	bestInertia := math.Inf(1)
	for r := 0; r < cfg.Restarts; r++ {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(r)))
		labels, inertia := cfg.run(features, k, rng)
		if inertia < bestInertia {
			best, bestInertia = labels, inertia
		}
	}
	return best, bestInertia, nil
}

func (km KMeans) run(x [][]float64, k int, rng *rand.Rand) ([]int, float64) {
	centers := seedPlusPlus(x, k, rng)
	labels := make([]int, len(x))
	dim := len(x[0])

	for iter := 0; iter < km.MaxIter; iter++ {
		assign(x, centers, labels)

		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, dim)
		}
		for i, p := range x {
			floats.Add(next[labels[i]], p)
			counts[labels[i]]++
		}
		for c := range next {
			if counts[c] == 0 {
				// empty cluster: restart it on the point farthest from its center
				next[c] = append([]float64(nil), x[farthest(x, centers, labels)]...)
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
		}

		shift := 0.0
		for c := range centers {
			d := floats.Distance(centers[c], next[c], 2)
			shift += d * d
		}
		centers = next
		if shift <= km.Tol {
			break
		}
	}
	return labels, assign(x, centers, labels)
}

// assign labels each point with its nearest center and returns the inertia.
func assign(x, centers [][]float64, labels []int) float64 {
	inertia := 0.0
	for i, p := range x {
		best, bestD := 0, math.Inf(1)
		for c, ctr := range centers {
			d := floats.Distance(p, ctr, 2)
			if d*d < bestD {
				best, bestD = c, d*d
			}
		}
		labels[i] = best
		inertia += bestD
	}
	return inertia
}

func farthest(x, centers [][]float64, labels []int) int {
	idx, far := 0, -1.0
	for i, p := range x {
		if d := floats.Distance(p, centers[labels[i]], 2); d > far {
			idx, far = i, d
		}
	}
	return idx
}

func seedPlusPlus(x [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	centers = append(centers, append([]float64(nil), x[rng.Intn(len(x))]...))

	d2 := make([]float64, len(x))
	for len(centers) < k {
		for i, p := range x {
			d2[i] = math.Inf(1)
			for _, c := range centers {
				d := floats.Distance(p, c, 2)
				d2[i] = math.Min(d2[i], d*d)
			}
		}
		total := floats.Sum(d2)
		pick := 0
		if total == 0 {
			pick = rng.Intn(len(x))
		} else {
			target := rng.Float64() * total
			for i, d := range d2 {
				target -= d
				if target <= 0 {
					pick = i
					break
				}
				pick = i
			}
		}
		centers = append(centers, append([]float64(nil), x[pick]...))
	}
	return centers
}
