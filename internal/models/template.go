// Package models defines the domain types for Catena.
package models

import "encoding/json"

// CollectionVersion is the schema version of every catalog document
// Catena produces or accepts as already-canonical input.
const CollectionVersion = "2"

// ManualSource tags records entered directly by a user rather than
// extracted from a URL or file source.
const ManualSource = "manual_entry"

// EnvVar is one environment variable exposed by a template.
// "default" is the canonical key; "value" is accepted as a legacy
// alias on decode only and is never written back.
type EnvVar struct {
	Name    string `json:"name"`
	Default string `json:"default,omitempty"`
}

// UnmarshalJSON maps the legacy "value" key onto Default when
// "default" is absent.
func (e *EnvVar) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name    string  `json:"name"`
		Default *string `json:"default"`
		Value   *string `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Name = raw.Name
	switch {
	case raw.Default != nil:
		e.Default = *raw.Default
	case raw.Value != nil:
		e.Default = *raw.Value
	default:
		e.Default = ""
	}
	return nil
}

// Port is a single label-to-spec pair, e.g. {"WebUI": "80/tcp"}.
// Each entry carries exactly one key/value pair.
type Port map[string]string

// NewPort builds a single-entry port mapping.
func NewPort(label, spec string) Port {
	return Port{label: spec}
}

// Label returns the (single) label of the port entry.
func (p Port) Label() string {
	for k := range p {
		return k
	}
	return ""
}

// Spec returns the (single) port spec of the entry.
func (p Port) Spec() string {
	for _, v := range p {
		return v
	}
	return ""
}

// Volume maps a container path to a host bind path.
type Volume struct {
	Container string `json:"container"`
	Bind      string `json:"bind,omitempty"`
}

// Repository points at a stack definition backing a template.
type Repository struct {
	URL       string `json:"url,omitempty"`
	Stackfile string `json:"stackfile"`
}

// Template is the canonical template record every pipeline stage
// operates on, independent of the origin format.
//
// Source identifies which input produced the record (URL, file path,
// or ManualSource). It exists only inside the pipeline and never
// serializes.
type Template struct {
	Title             string      `json:"title"`
	Description       string      `json:"description,omitempty"`
	Image             string      `json:"image,omitempty"`
	Logo              string      `json:"logo,omitempty"`
	Platform          string      `json:"platform,omitempty"`
	RestartPolicy     string      `json:"restart_policy,omitempty"`
	Categories        []string    `json:"categories,omitempty"`
	Env               []EnvVar    `json:"env,omitempty"`
	Ports             []Port      `json:"ports,omitempty"`
	Volumes           []Volume    `json:"volumes,omitempty"`
	Note              string      `json:"note,omitempty"`
	AdministratorOnly bool        `json:"administrator_only,omitempty"`
	Repository        *Repository `json:"repository,omitempty"`

	Source string `json:"-"`
}

// Stackfile returns the repository stackfile content, or empty when
// no repository is attached.
func (t *Template) Stackfile() string {
	if t.Repository == nil {
		return ""
	}
	return t.Repository.Stackfile
}

// Clone returns a deep copy of the template.
func (t *Template) Clone() *Template {
	c := *t
	if t.Categories != nil {
		c.Categories = append([]string(nil), t.Categories...)
	}
	if t.Env != nil {
		c.Env = append([]EnvVar(nil), t.Env...)
	}
	if t.Ports != nil {
		c.Ports = make([]Port, len(t.Ports))
		for i, p := range t.Ports {
			c.Ports[i] = NewPort(p.Label(), p.Spec())
		}
	}
	if t.Volumes != nil {
		c.Volumes = append([]Volume(nil), t.Volumes...)
	}
	if t.Repository != nil {
		repo := *t.Repository
		c.Repository = &repo
	}
	return &c
}

// Collection is the top-level catalog document.
type Collection struct {
	Version   string     `json:"version"`
	Templates []Template `json:"templates"`
}

// NewCollection wraps templates into a version-"2" collection.
func NewCollection(templates []Template) *Collection {
	if templates == nil {
		templates = []Template{}
	}
	return &Collection{Version: CollectionVersion, Templates: templates}
}
