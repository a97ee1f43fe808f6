// Package merge orchestrates the catalog pipeline: tag, concatenate,
// deduplicate, and wrap records from every source into one collection.
package merge

import (
	"github.com/norland/catena/internal/dedup"
	"github.com/norland/catena/internal/models"
)

// Source is one already-converted input collection with its origin id
// (URL, file path, or a sentinel).
type Source struct {
	ID         string
	Collection *models.Collection
}

// Result is the outcome of a merge run.
type Result struct {
	Collection    *models.Collection
	OriginalCount int
	FinalCount    int
}

// DuplicatesRemoved reports how many records the deduplication pass
// eliminated.
func (r Result) DuplicatesRemoved() int {
	return r.OriginalCount - r.FinalCount
}

// Merge combines manual records and source collections into a single
// deduplicated catalog. Manual records lead, then sources in the
// given order, preserving within-source record order. Pure: no I/O,
// inputs are not mutated.
func Merge(sources []Source, manual []models.Template, threshold float64) Result {
	var all []models.Template

	for _, t := range manual {
		tagged := *t.Clone()
		tagged.Source = models.ManualSource
		all = append(all, tagged)
	}
	for _, src := range sources {
		if src.Collection == nil {
			continue
		}
		for _, t := range src.Collection.Templates {
			tagged := *t.Clone()
			tagged.Source = src.ID
			all = append(all, tagged)
		}
	}

	deduped := dedup.Deduplicate(all, threshold)
	return Result{
		Collection:    models.NewCollection(deduped),
		OriginalCount: len(all),
		FinalCount:    len(deduped),
	}
}
