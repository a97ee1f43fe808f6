// Package detect classifies raw decoded template documents into the
// closed set of formats Catena can convert.
package detect

// Format identifies the shape of a source document.
type Format string

const (
	// Portainer is a full canonical collection: {"version": ..., "templates": [...]}.
	Portainer Format = "portainer"
	// PortainerSingle is a bare canonical template object.
	PortainerSingle Format = "portainer_single"
	// PortainerArray is a bare array of canonical template objects.
	PortainerArray Format = "portainer_array"
	// DockerCompose is a Compose document with a services mapping.
	DockerCompose Format = "docker_compose"
	// QNAPSingle is a single QNAP App Center entry.
	QNAPSingle Format = "qnap_single"
	// QNAPArray is an array of QNAP App Center entries.
	QNAPArray Format = "qnap_array"
	// Unknown means the document matches no supported format.
	Unknown Format = "unknown"
)

// Detect classifies a decoded JSON/YAML document. Object rules are
// checked in precedence order: Compose first (a Compose file may also
// carry a "version" key that would otherwise look canonical), then the
// canonical collection, then bare templates, then QNAP. For arrays
// only the first element is inspected.
func Detect(doc any) Format {
	switch v := doc.(type) {
	case map[string]any:
		return detectObject(v)
	case []any:
		return detectArray(v)
	}
	return Unknown
}

func detectObject(obj map[string]any) Format {
	if isCompose(obj) {
		return DockerCompose
	}
	if _, ok := obj["templates"].([]any); ok {
		if _, ok := obj["version"]; ok {
			return Portainer
		}
	}
	if hasAny(obj, "title", "image") {
		return PortainerSingle
	}
	if hasAll(obj, "displayName", "name") {
		return QNAPSingle
	}
	return Unknown
}

func detectArray(arr []any) Format {
	if len(arr) == 0 {
		return Unknown
	}
	first, ok := arr[0].(map[string]any)
	if !ok {
		return Unknown
	}
	if hasAll(first, "displayName", "name") {
		return QNAPArray
	}
	if hasAny(first, "title", "image") {
		return PortainerArray
	}
	return Unknown
}

func isCompose(obj map[string]any) bool {
	if _, ok := obj["services"].(map[string]any); ok {
		return true
	}
	if _, ok := obj["version"]; ok {
		return hasAny(obj, "services", "networks", "volumes")
	}
	return false
}

func hasAny(obj map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

func hasAll(obj map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return false
		}
	}
	return true
}
