package database

// LabDim is the dimension of coat color vectors (CIE L*a*b*)
const LabDim = 3

// HNSW index parameters for 3-dim Lab vectors
const (
	// HNSWMaxNeighbors (M) is the maximum number of neighbors per node.
	HNSWMaxNeighbors = 16

	// HNSWEfSearch is the search candidate pool size. The catalog is small,
	// so a wide pool keeps search effectively exact.
	HNSWEfSearch = 64
)
