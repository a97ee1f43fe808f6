package score

import (
	"testing"

	"github.com/norland/catena/internal/models"
)

func TestScoreFullTemplate(t *testing.T) {
	tpl := &models.Template{
		Title:       "Nginx",
		Description: "Web server",
		Image:       "nginx:latest",
		Logo:        "https://example.com/logo.png",
		Platform:    "linux",
		Categories:  []string{"webserver"},
		Env:         []models.EnvVar{{Name: "TZ"}, {Name: "PUID"}, {Name: "PGID"}},
		Ports:       []models.Port{models.NewPort("WebUI", "80/tcp")},
		Volumes:     []models.Volume{{Container: "/config"}, {Container: "/data"}},
		Repository:  &models.Repository{URL: "https://example.com", Stackfile: "stack.yml"},
	}

	// 10+8+10+5+3+2 + 3 env + 2 ports + 4 volumes + 15 stackfile + 5 url.
	if got := Score(tpl); got != 67 {
		t.Errorf("Score = %d, want 67", got)
	}
}

func TestScorePenalizesMissingCriticalFields(t *testing.T) {
	if got := Score(&models.Template{}); got != -30 {
		t.Errorf("Score(empty) = %d, want -30", got)
	}
	if got := Score(&models.Template{Title: "X", Image: "x"}); got != 10 {
		t.Errorf("Score(title+image) = %d, want 10", got)
	}
}

func TestScoreOrdersByCompleteness(t *testing.T) {
	sparse := &models.Template{Title: "Nginx", Image: "nginx"}
	rich := &models.Template{
		Title:       "Nginx",
		Image:       "nginx",
		Description: "Web server",
		Logo:        "https://example.com/logo.png",
		Categories:  []string{"webserver"},
	}
	if Score(rich) <= Score(sparse) {
		t.Errorf("rich (%d) should outrank sparse (%d)", Score(rich), Score(sparse))
	}
}
