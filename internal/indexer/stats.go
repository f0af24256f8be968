package indexer

import (
	"math"
	"sort"
)

// Report summarizes one reindex run.
type Report struct {
	// DocsProcessed is the number of corpus documents visited.
	DocsProcessed int `json:"docs_processed"`
	// DocsWithoutChunks is the number of documents that produced no chunks.
	DocsWithoutChunks int `json:"docs_without_chunks"`
	// ChunksIndexed is the number of chunks embedded and upserted.
	ChunksIndexed int `json:"chunks_indexed"`
	// Errors is the number of documents that failed to index.
	Errors int `json:"errors"`
	// ChunkRuneStats describes chunk sizes across the run.
	ChunkRuneStats RuneStats `json:"chunk_rune_stats"`
}

// RuneStats describes the distribution of chunk sizes in runes.
type RuneStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

func computeRuneStats(sizes []int) RuneStats {
	if len(sizes) == 0 {
		return RuneStats{}
	}

	sorted := make([]int, len(sizes))
	copy(sorted, sizes)
	sort.Ints(sorted)

	sum := 0
	for _, s := range sizes {
		sum += s
	}
	mean := float64(sum) / float64(len(sizes))

	p95Index := int(math.Ceil(float64(len(sorted)) * 0.95))
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}

	return RuneStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[p95Index],
	}
}
