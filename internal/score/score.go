// Package score ranks template completeness for duplicate tie-breaking.
package score

import "github.com/norland/catena/internal/models"

// Score computes an additive quality score for a template. The value
// only ranks records relative to each other; it is unbounded in both
// directions and may go negative for records missing critical fields.
func Score(t *models.Template) int {
	s := 0

	if t.Title != "" {
		s += 10
	}
	if t.Description != "" {
		s += 8
	}
	if t.Image != "" {
		s += 10
	}

	if len(t.Categories) > 0 {
		s += 5
	}
	if t.Platform != "" {
		s += 3
	}
	if t.Logo != "" {
		s += 2
	}
	s += len(t.Env)
	s += len(t.Ports) * 2
	s += len(t.Volumes) * 2

	if t.Repository != nil {
		if t.Repository.Stackfile != "" {
			s += 15
		}
		if t.Repository.URL != "" {
			s += 5
		}
	}

	if t.Image == "" {
		s -= 20
	}
	if t.Description == "" {
		s -= 10
	}

	return s
}
