package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEnvVarLegacyValueAlias(t *testing.T) {
	var e EnvVar
	if err := json.Unmarshal([]byte(`{"name":"TZ","value":"UTC"}`), &e); err != nil {
		t.Fatal(err)
	}
	if e.Name != "TZ" || e.Default != "UTC" {
		t.Errorf("got %+v, want name=TZ default=UTC", e)
	}

	// Canonical key wins when both are present.
	if err := json.Unmarshal([]byte(`{"name":"TZ","default":"Europe/Oslo","value":"UTC"}`), &e); err != nil {
		t.Fatal(err)
	}
	if e.Default != "Europe/Oslo" {
		t.Errorf("default = %q, want Europe/Oslo", e.Default)
	}
}

func TestEnvVarNeverEmitsValueKey(t *testing.T) {
	raw, err := json.Marshal(EnvVar{Name: "TZ", Default: "UTC"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), `"value"`) {
		t.Errorf("marshal emitted legacy value key: %s", raw)
	}
	if !strings.Contains(string(raw), `"default":"UTC"`) {
		t.Errorf("marshal missing default key: %s", raw)
	}
}

func TestPortSinglePair(t *testing.T) {
	p := NewPort("WebUI", "80/tcp")
	if p.Label() != "WebUI" {
		t.Errorf("label = %q", p.Label())
	}
	if p.Spec() != "80/tcp" {
		t.Errorf("spec = %q", p.Spec())
	}
}

func TestTemplateCloneIsDeep(t *testing.T) {
	orig := &Template{
		Title:      "Nginx",
		Categories: []string{"webserver"},
		Env:        []EnvVar{{Name: "TZ", Default: "UTC"}},
		Ports:      []Port{NewPort("WebUI", "80/tcp")},
		Volumes:    []Volume{{Container: "/etc/nginx", Bind: "!data/nginx"}},
		Repository: &Repository{URL: "https://example.com", Stackfile: "stack.yml"},
	}

	c := orig.Clone()
	c.Categories[0] = "changed"
	c.Env[0].Default = "changed"
	c.Ports[0]["WebUI"] = "changed"
	c.Volumes[0].Bind = "changed"
	c.Repository.URL = "changed"

	if orig.Categories[0] != "webserver" {
		t.Error("clone shares categories slice")
	}
	if orig.Env[0].Default != "UTC" {
		t.Error("clone shares env slice")
	}
	if orig.Ports[0].Spec() != "80/tcp" {
		t.Error("clone shares port maps")
	}
	if orig.Volumes[0].Bind != "!data/nginx" {
		t.Error("clone shares volumes slice")
	}
	if orig.Repository.URL != "https://example.com" {
		t.Error("clone shares repository pointer")
	}
}

func TestTemplateSourceNeverSerializes(t *testing.T) {
	raw, err := json.Marshal(Template{Title: "Nginx", Source: "https://example.com/templates.json"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "example.com") {
		t.Errorf("source leaked into JSON: %s", raw)
	}
}

func TestNewCollection(t *testing.T) {
	c := NewCollection(nil)
	if c.Version != CollectionVersion {
		t.Errorf("version = %q, want %q", c.Version, CollectionVersion)
	}
	if c.Templates == nil {
		t.Error("templates should be an empty slice, not nil")
	}
}
