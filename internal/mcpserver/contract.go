package mcpserver

// TemplateFormatContract describes the canonical template record format
// that LLM consumers should follow when creating manual templates.
const TemplateFormatContract = `# Catena Template Format Contract

Every template in the merged catalog follows this canonical structure.

## Structure

` + "```" + `json
{
  "title": "Nginx",
  "description": "High performance web server",
  "image": "nginx:latest",
  "logo": "https://example.com/nginx.png",
  "categories": ["webserver"],
  "platform": "linux",
  "restart_policy": "unless-stopped",
  "env": [
    {"name": "TZ", "label": "Timezone", "default": "UTC"}
  ],
  "ports": [
    {"WebUI": "80/tcp"}
  ],
  "volumes": [
    {"container": "/etc/nginx", "bind": "!data/nginx"}
  ],
  "repository": {
    "url": "https://github.com/example/templates",
    "stackfile": "stacks/nginx/docker-compose.yml"
  }
}
` + "```" + `

## Rules

1. **` + "`" + `title` + "`" + ` is required** and must not be blank. It is the identity
   used for duplicate detection across the whole catalog.
2. **` + "`" + `image` + "`" + ` is required** for manual entries. Use the full Docker
   image reference, with a tag where one matters.
3. **` + "`" + `env` + "`" + ` entries** use ` + "`" + `default` + "`" + ` for the preset value. The legacy
   ` + "`" + `value` + "`" + ` key is accepted on input but never emitted.
4. **` + "`" + `ports` + "`" + ` entries** are single-pair objects mapping a human label to
   a ` + "`" + `port/protocol` + "`" + ` spec (e.g. ` + "`" + `{"WebUI": "8080/tcp"}` + "`" + `).
5. **` + "`" + `platform` + "`" + `** is free-form but lowercase values like ` + "`" + `linux` + "`" + ` or
   ` + "`" + `windows` + "`" + ` are what architecture detection expects.
6. **Architecture variants** produced by the merge carry a suffixed
   title (` + "`" + `Nginx-arm64` + "`" + `); do not create such titles by hand.
7. **Categories** are lowercase single words (` + "`" + `webserver` + "`" + `,
   ` + "`" + `database` + "`" + `, ` + "`" + `tools` + "`" + `).

## Tools

- ` + "`" + `search_templates` + "`" + ` searches titles, descriptions, and categories.
- ` + "`" + `get_template` + "`" + ` resolves a title exactly, then by normalized form
  (case and docker-/container- affixes ignored).
- ` + "`" + `merge_catalog` + "`" + ` re-fetches every configured source and rebuilds the
  deduplicated catalog; manual templates always survive a rebuild.
`
