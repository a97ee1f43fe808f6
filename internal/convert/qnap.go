package convert

import (
	"fmt"

	"github.com/norland/catena/internal/models"
)

// qnapArchPlatform maps QNAP arch identifiers onto the canonical
// platform field. Everything QNAP ships runs on Linux.
var qnapArchPlatform = map[string]string{
	"amd64":  "linux",
	"arm64":  "linux",
	"arm":    "linux",
	"386":    "linux",
	"x86_64": "linux",
}

// qnapTitleSuffixArchs are the architectures that get a parenthetical
// title suffix so variants do not collide under one title.
var qnapTitleSuffixArchs = map[string]bool{
	"arm64": true,
	"arm":   true,
	"386":   true,
}

// fromQNAP converts one QNAP App Center entry to a canonical template.
func fromQNAP(obj map[string]any) models.Template {
	var t models.Template

	if v, ok := stringField(obj, "displayName"); ok {
		t.Title = v
	}
	if v, ok := stringField(obj, "description"); ok {
		t.Description = v
	}
	if name, ok := stringField(obj, "name"); ok {
		if version, ok := stringField(obj, "version"); ok {
			t.Image = fmt.Sprintf("%s:%s", name, version)
		} else {
			t.Image = name
		}
	}
	if v, ok := stringField(obj, "icon"); ok {
		t.Logo = v
	}
	if v, ok := stringField(obj, "type"); ok {
		t.Categories = []string{v}
	}
	if arch, ok := stringField(obj, "arch"); ok {
		platform, known := qnapArchPlatform[arch]
		if !known {
			platform = "linux"
		}
		t.Platform = platform
		if qnapTitleSuffixArchs[arch] {
			t.Title = fmt.Sprintf("%s (%s)", t.Title, arch)
		}
	}
	if location, ok := stringField(obj, "location"); ok {
		note := fmt.Sprintf("Source: %s", location)
		if qcs, ok := stringField(obj, "qcsVersion"); ok {
			note += fmt.Sprintf(" (QCS Version: %s)", qcs)
		}
		t.Note = note

		if repo, ok := stringField(obj, "repository"); ok && repo == "dockerhub" {
			t.Repository = &models.Repository{URL: location, Stackfile: ""}
		}
	}
	t.RestartPolicy = "unless-stopped"

	return t
}
