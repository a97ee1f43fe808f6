package convert

import (
	"errors"
	"testing"

	"github.com/norland/catena/internal/apperr"
	"github.com/norland/catena/internal/detect"
)

func TestConvertCanonicalCollection(t *testing.T) {
	doc := map[string]any{
		"version": "2",
		"templates": []any{
			map[string]any{
				"title": "Nginx",
				"image": "nginx:latest",
				"env": []any{
					// Legacy "value" key must land in Default.
					map[string]any{"name": "TZ", "value": "UTC"},
				},
			},
		},
	}

	c, err := Convert(doc, detect.Portainer)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if c.Version != "2" {
		t.Errorf("version = %q, want 2", c.Version)
	}
	if len(c.Templates) != 1 {
		t.Fatalf("templates = %d, want 1", len(c.Templates))
	}
	if got := c.Templates[0].Env[0].Default; got != "UTC" {
		t.Errorf("env default = %q, want UTC (legacy value alias)", got)
	}
}

func TestConvertNormalizesVersion(t *testing.T) {
	doc := map[string]any{"version": "1", "templates": []any{}}
	c, err := Convert(doc, detect.Portainer)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if c.Version != "2" {
		t.Errorf("version = %q, want 2", c.Version)
	}
}

func TestConvertSingleTemplate(t *testing.T) {
	doc := map[string]any{"title": "Nginx", "image": "nginx:latest"}
	c, err := Convert(doc, detect.PortainerSingle)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(c.Templates) != 1 || c.Templates[0].Title != "Nginx" {
		t.Errorf("unexpected collection: %+v", c)
	}
}

func TestConvertTemplateArray(t *testing.T) {
	doc := []any{
		map[string]any{"title": "Nginx", "image": "nginx"},
		map[string]any{"title": "Redis", "image": "redis"},
	}
	c, err := Convert(doc, detect.PortainerArray)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(c.Templates) != 2 {
		t.Fatalf("templates = %d, want 2", len(c.Templates))
	}
	if c.Templates[1].Title != "Redis" {
		t.Errorf("second title = %q, want Redis", c.Templates[1].Title)
	}
}

func TestConvertUnknownFormat(t *testing.T) {
	_, err := Convert(map[string]any{}, detect.Unknown)
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !errors.Is(err, apperr.ErrUnknownFormat) {
		t.Errorf("error = %v, want ErrUnknownFormat", err)
	}
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Errorf("error = %T, want *ConversionError", err)
	}
}

// Conversion output must itself detect as a canonical collection, so
// re-feeding a generated catalog is a no-op conversion.
func TestConvertOutputDetectsAsCanonical(t *testing.T) {
	doc := []any{map[string]any{"displayName": "Nginx", "name": "nginx"}}
	c, err := Convert(doc, detect.QNAPArray)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	roundTrip := map[string]any{
		"version":   c.Version,
		"templates": []any{map[string]any{"title": c.Templates[0].Title}},
	}
	if got := detect.Detect(roundTrip); got != detect.Portainer {
		t.Errorf("Detect(output) = %q, want %q", got, detect.Portainer)
	}
}
