// Package convert turns raw decoded source documents into the
// canonical template collection.
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/norland/catena/internal/apperr"
	"github.com/norland/catena/internal/detect"
	"github.com/norland/catena/internal/models"
)

// ConversionError reports a structural violation while converting a
// document of a detected format.
type ConversionError struct {
	Format detect.Format
	Reason string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("convert %s: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("convert %s: %s", e.Format, e.Reason)
}

func (e *ConversionError) Unwrap() error { return e.Err }

func convErr(f detect.Format, reason string, err error) *ConversionError {
	return &ConversionError{Format: f, Reason: reason, Err: err}
}

// Convert produces the canonical collection for a document of the
// given format. Unknown formats and structural violations yield a
// ConversionError; callers isolate the failure to the offending
// source and continue with the rest.
func Convert(doc any, format detect.Format) (*models.Collection, error) {
	switch format {
	case detect.Portainer:
		return decodeCollection(doc)
	case detect.PortainerSingle:
		t, err := decodeTemplate(doc, format)
		if err != nil {
			return nil, err
		}
		return models.NewCollection([]models.Template{*t}), nil
	case detect.PortainerArray:
		return decodeTemplateArray(doc)
	case detect.QNAPSingle:
		obj, ok := doc.(map[string]any)
		if !ok {
			return nil, convErr(format, "document is not an object", nil)
		}
		return models.NewCollection([]models.Template{fromQNAP(obj)}), nil
	case detect.QNAPArray:
		arr, ok := doc.([]any)
		if !ok {
			return nil, convErr(format, "document is not an array", nil)
		}
		templates := make([]models.Template, 0, len(arr))
		for i, item := range arr {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, convErr(format, fmt.Sprintf("entry %d is not an object", i), nil)
			}
			templates = append(templates, fromQNAP(obj))
		}
		return models.NewCollection(templates), nil
	case detect.DockerCompose:
		return fromCompose(doc)
	default:
		return nil, convErr(format, "unsupported format", apperr.ErrUnknownFormat)
	}
}

// decodeCollection round-trips an already-canonical document through
// JSON into the typed collection. The round trip also applies the
// legacy env "value" alias handling on EnvVar.
func decodeCollection(doc any) (*models.Collection, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, convErr(detect.Portainer, "re-encode document", err)
	}
	var c models.Collection
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, convErr(detect.Portainer, "decode collection", err)
	}
	c.Version = models.CollectionVersion
	if c.Templates == nil {
		c.Templates = []models.Template{}
	}
	return &c, nil
}

func decodeTemplate(doc any, format detect.Format) (*models.Template, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, convErr(format, "re-encode template", err)
	}
	var t models.Template
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, convErr(format, "decode template", err)
	}
	return &t, nil
}

func decodeTemplateArray(doc any) (*models.Collection, error) {
	arr, ok := doc.([]any)
	if !ok {
		return nil, convErr(detect.PortainerArray, "document is not an array", nil)
	}
	templates := make([]models.Template, 0, len(arr))
	for _, item := range arr {
		t, err := decodeTemplate(item, detect.PortainerArray)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return models.NewCollection(templates), nil
}

func stringField(obj map[string]any, key string) (string, bool) {
	v, ok := obj[key]
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case fmt.Stringer:
		return s.String(), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}
