// Package dedup resolves duplicate templates within a merged record
// set, keeping the best copy of each and splitting architecture
// variants into separately titled entries.
package dedup

import (
	"strings"

	"github.com/norland/catena/internal/compare"
	"github.com/norland/catena/internal/models"
	"github.com/norland/catena/internal/score"
)

// DefaultThreshold is the similarity at or above which two templates
// sharing a title count as the same logical template.
const DefaultThreshold = 0.70

// Deduplicate groups records by trimmed title and resolves each group:
// same-architecture duplicates collapse to the highest-scoring record,
// different-architecture duplicates survive with an architecture
// suffix on the title. Records with an empty trimmed title are
// dropped. Source tags are stripped from every emitted record.
func Deduplicate(records []models.Template, threshold float64) []models.Template {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	groups := make(map[string][]*models.Template)
	var order []string
	for i := range records {
		title := strings.TrimSpace(records[i].Title)
		if title == "" {
			continue
		}
		if _, ok := groups[title]; !ok {
			order = append(order, title)
		}
		groups[title] = append(groups[title], &records[i])
	}

	out := make([]models.Template, 0, len(records))
	for _, title := range order {
		group := groups[title]
		if len(group) == 1 {
			out = append(out, *clean(group[0]))
			continue
		}
		out = append(out, resolveGroup(title, group, threshold)...)
	}
	return out
}

type variantSlot struct {
	arch     string
	template *models.Template
}

// resolveGroup applies the duplicate-resolution pass to templates
// sharing one title. The variants list is first-write-wins per
// architecture: once a slot is taken, later colliding candidates are
// treated as duplicates of that slot's representative.
func resolveGroup(title string, group []*models.Template, threshold float64) []models.Template {
	var unique []*models.Template
	var variants []variantSlot
	taken := make(map[string]bool)

	record := func(arch string, t *models.Template) {
		if !taken[arch] {
			taken[arch] = true
			variants = append(variants, variantSlot{arch: arch, template: t})
		}
	}

	for _, t := range group {
		arch := compare.DetectArchitecture(t)
		matched := false

		for i, existing := range unique {
			if compare.Similarity(t, existing) < threshold {
				continue
			}
			matched = true
			existingArch := compare.DetectArchitecture(existing)
			if existingArch != arch {
				record(arch, t)
				record(existingArch, existing)
			} else if score.Score(t) > score.Score(existing) {
				unique[i] = t
			}
			break
		}

		if !matched {
			unique = append(unique, t)
		}
	}

	var out []models.Template
	for _, v := range variants {
		c := clean(v.template)
		c.Title = title + "-" + v.arch
		out = append(out, *c)

		// A variant representative may still sit in the unique list;
		// drop that exact record (identity, not value equality).
		for i, u := range unique {
			if u == v.template {
				unique = append(unique[:i], unique[i+1:]...)
				break
			}
		}
	}
	for _, u := range unique {
		out = append(out, *clean(u))
	}
	return out
}

// clean copies a template with the transient source tag stripped.
func clean(t *models.Template) *models.Template {
	c := t.Clone()
	c.Source = ""
	return c
}
