package outreach_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/partner-console/internal/service/outreach"
)

func TestMergeRenderer_Expand(t *testing.T) {
	m := outreach.NewMergeRenderer()

	tests := []struct {
		name   string
		tmpl   string
		fields outreach.Fields
		escape bool
		want   string
	}{
		{
			name:   "bound tokens",
			tmpl:   "Hi {RetailerName} from {BrandName}",
			fields: outreach.Fields{"RetailerName": "Acme Co.", "BrandName": "Lumen"},
			want:   "Hi Acme Co. from Lumen",
		},
		{
			name:   "unbound token stays literal",
			tmpl:   "Hi {RetailerName} from {BrandName}",
			fields: outreach.Fields{"BrandName": "Lumen"},
			want:   "Hi {RetailerName} from Lumen",
		},
		{
			name:   "liquid markup in user text",
			tmpl:   "Use {{ coupon }} and {% if x %} as-is, {RetailerName}",
			fields: outreach.Fields{"RetailerName": "Acme"},
			want:   "Use {{ coupon }} and {% if x %} as-is, Acme",
		},
		{
			name:   "brace before token",
			tmpl:   "{{BrandName}}",
			fields: outreach.Fields{"BrandName": "Lumen"},
			want:   "{Lumen}",
		},
		{
			name:   "escaped body value",
			tmpl:   "<p>{RetailerName}</p>",
			fields: outreach.Fields{"RetailerName": "Smith & Sons"},
			escape: true,
			want:   "<p>Smith &amp; Sons</p>",
		},
		{
			name:   "unescaped subject value",
			tmpl:   "{RetailerName}",
			fields: outreach.Fields{"RetailerName": "Smith & Sons"},
			want:   "Smith & Sons",
		},
		{
			name: "no tokens",
			tmpl: "plain text",
			want: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Expand(tt.tmpl, tt.fields, tt.escape)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeRenderer_CachedTemplateIsReusedAcrossValues(t *testing.T) {
	m := outreach.NewMergeRenderer()

	a, err := m.Expand("Hi {RetailerName}", outreach.Fields{"RetailerName": "A"}, false)
	require.NoError(t, err)
	b, err := m.Expand("Hi {RetailerName}", outreach.Fields{"RetailerName": "B"}, false)
	require.NoError(t, err)

	assert.Equal(t, "Hi A", a)
	assert.Equal(t, "Hi B", b)
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"RetailerName", "BrandName"}, outreach.Tokens("{RetailerName} {BrandName} {RetailerName}"))
	assert.Empty(t, outreach.Tokens("none here"))
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		edits []outreach.Edit
		want  string
	}{
		{"no edits", "hello", nil, "hello"},
		{"replace", "hello world", []outreach.Edit{{Start: 6, End: 11, Text: "there"}}, "hello there"},
		{"insert", "hello", []outreach.Edit{{Start: 5, End: 5, Text: "!"}}, "hello!"},
		{
			name:  "multiple edits use original offsets",
			body:  "aaa bbb ccc",
			edits: []outreach.Edit{{Start: 0, End: 3, Text: "x"}, {Start: 8, End: 11, Text: "zzzz"}},
			want:  "x bbb zzzz",
		},
		{"rune offsets", "ça va", []outreach.Edit{{Start: 0, End: 2, Text: "ok"}}, "ok va"},
		{"clamped", "abc", []outreach.Edit{{Start: -4, End: 99, Text: "z"}}, "z"},
		{"tokens kept verbatim", "Hi", []outreach.Edit{{Start: 2, End: 2, Text: " {RetailerName}"}}, "Hi {RetailerName}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outreach.Rewrite(tt.body, tt.edits...))
		})
	}
}
