// Package compare scores how alike two canonical templates are and
// derives architecture tags used for variant handling.
package compare

import (
	"strings"

	"github.com/norland/catena/internal/models"
)

// Field weights of the overall similarity. Title and image dominate;
// stackfile content and env names refine the decision.
const (
	titleWeight       = 0.30
	imageWeight       = 0.25
	descriptionWeight = 0.20
	stackfileWeight   = 0.15
	envWeight         = 0.10
)

// Similarity returns a weighted similarity in [0,1] between two
// templates. The text ratio follows argument order the way difflib's
// does, so Similarity(a, b) and Similarity(b, a) can differ slightly
// for dissimilar records. The stackfile weight only contributes when
// both records carry a repository, so identical records without one
// top out at 0.85.
func Similarity(a, b *models.Template) float64 {
	titleSim := textSimilarity(a.Title, b.Title)
	imageSim := textSimilarity(a.Image, b.Image)
	descSim := textSimilarity(a.Description, b.Description)

	stackSim := 0.0
	if a.Repository != nil && b.Repository != nil {
		stackSim = textSimilarity(a.Repository.Stackfile, b.Repository.Stackfile)
	}

	envSim := envSimilarity(a.Env, b.Env)

	return titleSim*titleWeight +
		imageSim*imageWeight +
		descSim*descriptionWeight +
		stackSim*stackfileWeight +
		envSim*envWeight
}

// envSimilarity is the Jaccard similarity over env variable name sets.
func envSimilarity(env1, env2 []models.EnvVar) float64 {
	if len(env1) == 0 && len(env2) == 0 {
		return 1.0
	}
	if len(env1) == 0 || len(env2) == 0 {
		return 0.0
	}

	names1 := envNames(env1)
	names2 := envNames(env2)

	intersection := 0
	for name := range names1 {
		if _, ok := names2[name]; ok {
			intersection++
		}
	}
	union := len(names1) + len(names2) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func envNames(env []models.EnvVar) map[string]struct{} {
	out := make(map[string]struct{}, len(env))
	for _, v := range env {
		out[v.Name] = struct{}{}
	}
	return out
}

// DetectArchitecture derives an architecture tag for a template. The
// platform field wins outright; otherwise the image reference is
// scanned for hints (arm64 before the bare arm check, or everything
// arm64 would misclassify as arm), then the stackfile, then "linux".
func DetectArchitecture(t *models.Template) string {
	if p := lower(t.Platform); p != "" {
		return p
	}

	image := lower(t.Image)
	switch {
	case strings.Contains(image, "arm64"), strings.Contains(image, "aarch64"):
		return "arm64"
	case strings.Contains(image, "arm"):
		return "arm"
	case strings.Contains(image, "amd64"), strings.Contains(image, "x86_64"):
		return "amd64"
	case strings.Contains(image, "386"):
		return "386"
	}

	stackfile := lower(t.Stackfile())
	switch {
	case strings.Contains(stackfile, "arm64"):
		return "arm64"
	case strings.Contains(stackfile, "amd64"):
		return "amd64"
	}

	return "linux"
}

var (
	titlePrefixes = []string{"docker-", "container-"}
	titleSuffixes = []string{"-container", "-docker", " container", " docker"}
)

// NormalizeTitle canonicalises a title for forgiving comparison:
// collapsed whitespace, lower case, one known prefix and one known
// suffix stripped.
func NormalizeTitle(title string) string {
	normalized := lower(strings.Join(strings.Fields(title), " "))

	for _, prefix := range titlePrefixes {
		if strings.HasPrefix(normalized, prefix) {
			normalized = strings.TrimPrefix(normalized, prefix)
			break
		}
	}
	for _, suffix := range titleSuffixes {
		if strings.HasSuffix(normalized, suffix) {
			normalized = strings.TrimSuffix(normalized, suffix)
			break
		}
	}
	return strings.TrimSpace(normalized)
}

// ImageName extracts the bare image name from a reference, dropping
// registry, namespace, and tag.
func ImageName(image string) string {
	if image == "" {
		return ""
	}
	parts := strings.Split(image, "/")
	name := parts[len(parts)-1]
	if i := strings.Index(name, ":"); i >= 0 {
		name = name[:i]
	}
	return lower(name)
}

func lower(s string) string { return strings.ToLower(s) }
