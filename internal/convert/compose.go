package convert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/norland/catena/internal/detect"
	"github.com/norland/catena/internal/models"
)

// dataPrefix is the virtual prefix named volumes and compose-relative
// host paths are relocated under. The deploying host substitutes its
// managed data directory for it.
const dataPrefix = "!data/"

var composeRestartPolicies = map[string]bool{
	"no":             true,
	"always":         true,
	"on-failure":     true,
	"unless-stopped": true,
}

// serviceCategories maps catalog categories to keyword sets matched
// case-insensitively against the service name and image. A service
// collects every category with at least one keyword hit; matching
// stops at the first hit per category.
var serviceCategories = []struct {
	category string
	keywords []string
}{
	{"database", []string{"mysql", "mariadb", "postgres", "mongo", "redis", "influxdb", "sqlite", "cassandra"}},
	{"webserver", []string{"nginx", "apache", "httpd", "caddy", "traefik", "haproxy"}},
	{"media", []string{"plex", "jellyfin", "emby", "sonarr", "radarr", "lidarr", "transmission", "media"}},
	{"networking", []string{"pihole", "wireguard", "openvpn", "dns", "proxy", "unifi"}},
	{"monitoring", []string{"grafana", "prometheus", "zabbix", "telegraf", "netdata", "uptime"}},
	{"development", []string{"gitea", "gitlab", "jenkins", "drone", "code-server", "registry"}},
	{"storage", []string{"nextcloud", "owncloud", "minio", "syncthing", "samba", "ftp"}},
	{"communication", []string{"matrix", "rocketchat", "mattermost", "mail", "xmpp"}},
	{"security", []string{"vault", "keycloak", "authelia", "bitwarden", "vaultwarden"}},
}

const defaultCategory = "tools"

// fromCompose converts every runnable service of a Compose document
// into a canonical template. Services without an image cannot produce
// a runnable template and are skipped.
func fromCompose(doc any) (*models.Collection, error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, convErr(detect.DockerCompose, "document is not an object", nil)
	}
	rawServices, ok := obj["services"]
	if !ok {
		return nil, convErr(detect.DockerCompose, "missing services section", nil)
	}
	services, ok := rawServices.(map[string]any)
	if !ok {
		return nil, convErr(detect.DockerCompose, "services is not a mapping", nil)
	}

	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)

	templates := make([]models.Template, 0, len(services))
	for _, name := range names {
		cfg, ok := services[name].(map[string]any)
		if !ok {
			return nil, convErr(detect.DockerCompose, fmt.Sprintf("service %q is not a mapping", name), nil)
		}
		if t, ok := fromComposeService(name, cfg); ok {
			templates = append(templates, t)
		}
	}
	return models.NewCollection(templates), nil
}

func fromComposeService(name string, cfg map[string]any) (models.Template, bool) {
	image, ok := stringField(cfg, "image")
	if !ok || image == "" {
		return models.Template{}, false
	}

	labels := composeLabels(cfg)

	t := models.Template{
		Title:         composeTitle(name, cfg),
		Image:         image,
		Description:   composeDescription(name, labels),
		RestartPolicy: composeRestart(cfg),
		Env:           composeEnv(cfg["environment"]),
		Ports:         composePorts(cfg["ports"]),
		Volumes:       composeVolumes(cfg["volumes"]),
		Categories:    composeCategories(name, image),
		Note:          composeNote(labels),
	}
	return t, true
}

// composeTitle derives a display title from container_name (preferred)
// or the service name: underscores become spaces, words are title-cased.
func composeTitle(name string, cfg map[string]any) string {
	if cn, ok := stringField(cfg, "container_name"); ok && cn != "" {
		name = cn
	}
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func composeRestart(cfg map[string]any) string {
	if r, ok := stringField(cfg, "restart"); ok && composeRestartPolicies[r] {
		return r
	}
	return "unless-stopped"
}

func composeLabels(cfg map[string]any) map[string]string {
	raw, ok := cfg["labels"]
	if !ok {
		return nil
	}
	out := make(map[string]string)
	switch v := raw.(type) {
	case map[string]any:
		for k, val := range v {
			out[k] = fmt.Sprintf("%v", val)
		}
	case []any:
		// List form: "key=value" entries.
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				continue
			}
			if k, val, found := strings.Cut(s, "="); found {
				out[k] = val
			} else {
				out[s] = ""
			}
		}
	}
	return out
}

func composeDescription(name string, labels map[string]string) string {
	if d, ok := labels["description"]; ok && d != "" {
		return d
	}
	if d, ok := labels["traefik.frontend.rule"]; ok && d != "" {
		return d
	}
	return fmt.Sprintf("Container service: %s", name)
}

// composeEnv normalizes both Compose environment shapes (list of
// "NAME=value" / bare "NAME" strings, or a mapping) into the canonical
// env list. Bare names carry no default; mapping values are stringified.
func composeEnv(raw any) []models.EnvVar {
	switch v := raw.(type) {
	case []any:
		out := make([]models.EnvVar, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				continue
			}
			if name, value, found := strings.Cut(s, "="); found {
				out = append(out, models.EnvVar{Name: name, Default: value})
			} else if s != "" {
				out = append(out, models.EnvVar{Name: s})
			}
		}
		return out
	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		out := make([]models.EnvVar, 0, len(v))
		for _, name := range names {
			out = append(out, models.EnvVar{Name: name, Default: fmt.Sprintf("%v", v[name])})
		}
		return out
	}
	return nil
}

// composePorts converts Compose port entries to canonical single-pair
// port mappings keyed by the container-side port.
func composePorts(raw any) []models.Port {
	arr, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]models.Port, 0, len(arr))
	for _, item := range arr {
		switch v := item.(type) {
		case string:
			if p, ok := parsePortString(v); ok {
				out = append(out, p)
			}
		case map[string]any:
			target, ok := stringField(v, "target")
			if !ok || target == "" {
				continue
			}
			proto := "tcp"
			if p, ok := stringField(v, "protocol"); ok && p != "" {
				proto = p
			}
			out = append(out, models.NewPort(
				fmt.Sprintf("Port %s", target),
				fmt.Sprintf("%s/%s", target, proto),
			))
		default:
			// Bare numeric port from YAML.
			s := fmt.Sprintf("%v", item)
			if p, ok := parsePortString(s); ok {
				out = append(out, p)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parsePortString handles "host:container[/proto]" and bare "port"
// entries. The container-side port keys the canonical entry.
func parsePortString(s string) (models.Port, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	proto := "tcp"
	if spec, p, found := strings.Cut(s, "/"); found {
		s = spec
		if p != "" {
			proto = p
		}
	}
	parts := strings.Split(s, ":")
	container := parts[len(parts)-1]
	if container == "" {
		return nil, false
	}
	return models.NewPort(
		fmt.Sprintf("Port %s", container),
		fmt.Sprintf("%s/%s", container, proto),
	), true
}

// composeVolumes converts Compose volume entries. Named volumes and
// ./-relative host paths are relocated under the virtual data prefix
// instead of referencing the compose-relative location.
func composeVolumes(raw any) []models.Volume {
	arr, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]models.Volume, 0, len(arr))
	for _, item := range arr {
		switch v := item.(type) {
		case string:
			if vol, ok := parseVolumeString(v); ok {
				out = append(out, vol)
			}
		case map[string]any:
			target, ok := stringField(v, "target")
			if !ok || target == "" {
				continue
			}
			source, _ := stringField(v, "source")
			out = append(out, models.Volume{Container: target, Bind: relocateBind(source)})
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseVolumeString(s string) (models.Volume, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Volume{}, false
	}
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		// Anonymous volume: container path only.
		return models.Volume{Container: parts[0]}, true
	default:
		// host:container[:mode]; the access mode is dropped.
		return models.Volume{Container: parts[1], Bind: relocateBind(parts[0])}, true
	}
}

func relocateBind(host string) string {
	switch {
	case host == "":
		return ""
	case strings.HasPrefix(host, "./"):
		return dataPrefix + strings.TrimPrefix(host, "./")
	case !strings.HasPrefix(host, "/") && !strings.HasPrefix(host, "."):
		return dataPrefix + host
	default:
		return host
	}
}

func composeCategories(name, image string) []string {
	haystack := strings.ToLower(name + " " + image)
	var out []string
	for _, entry := range serviceCategories {
		for _, kw := range entry.keywords {
			if strings.Contains(haystack, kw) {
				out = append(out, entry.category)
				break
			}
		}
	}
	if out == nil {
		out = []string{defaultCategory}
	}
	return out
}

// composeNote summarises non-description labels, capped at three.
func composeNote(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		if k == "description" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	if len(keys) > 3 {
		keys = keys[:3]
	}
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s: %s", k, labels[k])
	}
	return "Docker Compose labels: " + strings.Join(pairs, ", ")
}
