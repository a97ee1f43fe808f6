package dedup

import (
	"testing"

	"github.com/norland/catena/internal/compare"
	"github.com/norland/catena/internal/models"
)

func TestDeduplicateSingletonPassthrough(t *testing.T) {
	records := []models.Template{
		{Title: "Nginx", Image: "nginx", Source: "https://example.com/a.json"},
	}
	out := Deduplicate(records, 0)
	if len(out) != 1 {
		t.Fatalf("got %d records, want 1", len(out))
	}
	if out[0].Title != "Nginx" {
		t.Errorf("title = %q", out[0].Title)
	}
	if out[0].Source != "" {
		t.Errorf("source should be stripped, got %q", out[0].Source)
	}
}

func TestDeduplicateDropsUntitled(t *testing.T) {
	records := []models.Template{
		{Title: "", Image: "nginx"},
		{Title: "   ", Image: "redis"},
		{Title: "Kept", Image: "kept"},
	}
	out := Deduplicate(records, 0)
	if len(out) != 1 || out[0].Title != "Kept" {
		t.Fatalf("got %+v, want only Kept", out)
	}
}

func TestDeduplicateSameArchKeepsHigherScore(t *testing.T) {
	sparse := models.Template{
		Title:       "Nginx",
		Image:       "nginx:latest",
		Description: "Web server",
	}
	rich := sparse
	rich.Logo = "https://example.com/logo.png"
	rich.Categories = []string{"webserver"}

	out := Deduplicate([]models.Template{sparse, rich}, 0)
	if len(out) != 1 {
		t.Fatalf("got %d records, want 1", len(out))
	}
	if out[0].Logo == "" {
		t.Error("the richer duplicate should have won")
	}
	if out[0].Title != "Nginx" {
		t.Errorf("title = %q, want Nginx", out[0].Title)
	}
}

func TestDeduplicateBelowThresholdKeepsBoth(t *testing.T) {
	a := models.Template{
		Title: "Nginx",
		Image: "nginx:latest",
		Env:   []models.EnvVar{{Name: "A"}},
	}
	b := models.Template{
		Title: "Nginx",
		Image: "postgres:16",
		Env:   []models.EnvVar{{Name: "B"}},
	}

	out := Deduplicate([]models.Template{a, b}, 0)
	if len(out) != 2 {
		t.Fatalf("got %d records, want 2 (dissimilar bodies under one title)", len(out))
	}
}

func TestDeduplicateSplitsArchitectureVariants(t *testing.T) {
	amd := models.Template{
		Title:       "Nginx",
		Image:       "nginx:latest",
		Description: "Web server",
		Platform:    "amd64",
	}
	arm := amd
	arm.Platform = "arm64"

	out := Deduplicate([]models.Template{amd, arm}, 0)
	if len(out) != 2 {
		t.Fatalf("got %d records, want 2 variants", len(out))
	}
	// The later record's architecture slot is recorded first.
	if out[0].Title != "Nginx-arm64" {
		t.Errorf("first title = %q, want Nginx-arm64", out[0].Title)
	}
	if out[1].Title != "Nginx-amd64" {
		t.Errorf("second title = %q, want Nginx-amd64", out[1].Title)
	}
}

func TestDeduplicateVariantSlotIsFirstWriteWins(t *testing.T) {
	amd := models.Template{
		Title:       "Nginx",
		Image:       "nginx:latest",
		Description: "Web server",
		Platform:    "amd64",
		Logo:        "https://example.com/logo.png",
	}
	arm := amd
	arm.Platform = "arm64"
	arm.Logo = ""
	lateAmd := amd
	lateAmd.Logo = ""
	lateAmd.Categories = nil

	out := Deduplicate([]models.Template{amd, arm, lateAmd}, 0)
	if len(out) != 2 {
		t.Fatalf("got %d records, want 2", len(out))
	}
	// The first amd64 record owns its slot; the lower-scoring
	// latecomer is treated as its duplicate and dropped.
	var amdVariant *models.Template
	for i := range out {
		if out[i].Title == "Nginx-amd64" {
			amdVariant = &out[i]
		}
	}
	if amdVariant == nil {
		t.Fatal("no Nginx-amd64 variant emitted")
	}
	if amdVariant.Logo == "" {
		t.Error("variant slot should hold the first amd64 record")
	}
}

// Deduplication treats similarity exactly at the threshold as a match.
func TestDeduplicateThresholdInclusive(t *testing.T) {
	a := models.Template{Title: "Nginx", Image: "nginx:latest", Description: "Web server"}
	b := a

	sim := compare.Similarity(&a, &b)
	out := Deduplicate([]models.Template{a, b}, sim)
	if len(out) != 1 {
		t.Fatalf("got %d records, want 1 (similarity == threshold is a duplicate)", len(out))
	}
}

func TestDeduplicateIndependentTitleGroups(t *testing.T) {
	records := []models.Template{
		{Title: "Nginx", Image: "nginx"},
		{Title: "Redis", Image: "redis"},
		{Title: "Nginx", Image: "nginx"},
	}
	out := Deduplicate(records, 0)
	if len(out) != 2 {
		t.Fatalf("got %d records, want 2", len(out))
	}
	// First-seen title order is preserved.
	if out[0].Title != "Nginx" || out[1].Title != "Redis" {
		t.Errorf("order = %q, %q", out[0].Title, out[1].Title)
	}
}
