package outreach

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/osteele/liquid"

	"github.com/ignite/partner-console/internal/pkg/logger"
)

// Merge field names understood by the templates.
const (
	FieldBrandName    = "BrandName"
	FieldRetailerName = "RetailerName"
)

// Fields binds merge field names to values for one render phase. Tokens
// whose field is absent are left verbatim in the output.
type Fields map[string]string

// tokenPattern matches a merge token such as {RetailerName}.
var tokenPattern = regexp.MustCompile(`\{([A-Za-z][A-Za-z0-9_]*)\}`)

// MergeRenderer expands merge tokens through a Liquid engine. Each template
// is compiled once: bound tokens become Liquid variables, while user text
// that Liquid would interpret and tokens left for a later phase are passed
// through as opaque values. Safe for concurrent use.
type MergeRenderer struct {
	engine *liquid.Engine
	cache  sync.Map // compiled source -> *liquid.Template
}

// NewMergeRenderer creates a renderer with the html filter registered.
func NewMergeRenderer() *MergeRenderer {
	engine := liquid.NewEngine()
	engine.RegisterFilter("html", func(s string) string { return html.EscapeString(s) })
	return &MergeRenderer{engine: engine}
}

// Expand substitutes every token bound in fields. With escapeHTML set, bound
// values are HTML-escaped (message bodies are rich text); surrounding text is
// never altered.
func (m *MergeRenderer) Expand(tmpl string, fields Fields, escapeHTML bool) (string, error) {
	src, bindings := m.compile(tmpl, fields, escapeHTML)

	var tpl *liquid.Template
	if cached, ok := m.cache.Load(src); ok {
		tpl = cached.(*liquid.Template)
	} else {
		parsed, err := m.engine.ParseString(src)
		if err != nil {
			return "", fmt.Errorf("parse merge template: %w", err)
		}
		m.cache.Store(src, parsed)
		tpl = parsed
	}

	out, err := tpl.RenderString(bindings)
	if err != nil {
		return "", fmt.Errorf("render merge template: %w", err)
	}
	return out, nil
}

// MustExpand is Expand with a plain string-replacement fallback. Liquid
// errors are logged and never block compose.
func (m *MergeRenderer) MustExpand(tmpl string, fields Fields, escapeHTML bool) string {
	out, err := m.Expand(tmpl, fields, escapeHTML)
	if err == nil {
		return out
	}
	logger.Warn("merge render fell back to plain substitution", "error", err)
	return tokenPattern.ReplaceAllStringFunc(tmpl, func(tok string) string {
		v, ok := fields[tok[1:len(tok)-1]]
		if !ok {
			return tok
		}
		if escapeHTML {
			return html.EscapeString(v)
		}
		return v
	})
}

// compile turns a merge template into Liquid source plus its bindings.
// Literal text is emitted as-is unless Liquid would read it as markup, in
// which case it is bound as an opaque value like an unbound token.
func (m *MergeRenderer) compile(tmpl string, fields Fields, escapeHTML bool) (string, map[string]any) {
	merge := make(map[string]any, len(fields))
	opaque := make(map[string]any)
	var b strings.Builder

	emitOpaque := func(s string) {
		key := fmt.Sprintf("p%d", len(opaque))
		opaque[key] = s
		b.WriteString("{{ opaque.")
		b.WriteString(key)
		b.WriteString(" }}")
	}
	emitLiteral := func(s string) {
		if s == "" {
			return
		}
		if strings.Contains(s, "{{") || strings.Contains(s, "{%") || strings.HasSuffix(s, "{") {
			emitOpaque(s)
			return
		}
		b.WriteString(s)
	}

	last := 0
	for _, loc := range tokenPattern.FindAllStringSubmatchIndex(tmpl, -1) {
		emitLiteral(tmpl[last:loc[0]])
		name := tmpl[loc[2]:loc[3]]
		if v, ok := fields[name]; ok {
			merge[name] = v
			b.WriteString("{{ merge.")
			b.WriteString(name)
			if escapeHTML {
				b.WriteString(" | html")
			}
			b.WriteString(" }}")
		} else {
			emitOpaque(tmpl[loc[0]:loc[1]])
		}
		last = loc[1]
	}
	emitLiteral(tmpl[last:])

	return b.String(), map[string]any{"merge": merge, "opaque": opaque}
}

// Tokens lists the distinct merge field names used in tmpl, in order of
// first appearance.
func Tokens(tmpl string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range tokenPattern.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}
