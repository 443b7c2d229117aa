package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ignite/partner-console/internal/domain"
)

func TestChannelSet_DecodeShapes(t *testing.T) {
	socialDownload := domain.NewChannelSet(domain.ChannelSocial, domain.ChannelDownloadable)

	tests := []struct {
		name string
		json string
		want domain.ChannelSet
	}{
		{"tag list", `["social","downloadable"]`, socialDownload},
		{"legacy flags", `{"social":true,"email":false,"downloadable":true}`, socialDownload},
		{"comma list", `"Social, downloadable"`, socialDownload},
		{"null", `null`, 0},
		{"unknown tags ignored", `["fax","email"]`, domain.NewChannelSet(domain.ChannelEmail)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got domain.ChannelSet
			require.NoError(t, json.Unmarshal([]byte(tt.json), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChannelSet_DecodeRejectsWrongTypes(t *testing.T) {
	var s domain.ChannelSet
	assert.Error(t, json.Unmarshal([]byte(`42`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"social":"yes"}`), &s))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &s))
}

func TestChannelSet_YAML(t *testing.T) {
	var doc struct {
		Usage domain.ChannelSet `yaml:"usage"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("usage:\n  social: true\n  email: true\n"), &doc))
	assert.Equal(t, domain.NewChannelSet(domain.ChannelSocial, domain.ChannelEmail), doc.Usage)

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, "usage:\n    - social\n    - email\n", string(out))
}

func TestChannelSet_JSONIsOrderedTagList(t *testing.T) {
	out, err := json.Marshal(domain.NewChannelSet(domain.ChannelDownloadable, domain.ChannelSocial))
	require.NoError(t, err)
	assert.JSONEq(t, `["social","downloadable"]`, string(out))

	out, err = json.Marshal(domain.ChannelSet(0))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(out))
}

func TestChannelSet_Queries(t *testing.T) {
	s := domain.NewChannelSet(domain.ChannelEmail)
	assert.True(t, s.Has(domain.ChannelEmail))
	assert.False(t, s.Has(domain.ChannelSocial))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "email", s.String())
	assert.True(t, domain.ChannelSet(0).IsEmpty())
}

func TestParseTierAndStatus(t *testing.T) {
	tier, ok := domain.ParseTier("platinum")
	assert.True(t, ok)
	assert.Equal(t, domain.TierPlatinum, tier)
	assert.True(t, tier.IsKeyAccount())
	assert.False(t, domain.TierSilver.IsKeyAccount())

	st, ok := domain.ParseEngagementStatus("viewed")
	assert.True(t, ok)
	assert.Equal(t, domain.StatusViewed, st)
	_, ok = domain.ParseEngagementStatus("bounced")
	assert.False(t, ok)

	mode, ok := domain.ParseWatchlistMode(" BROAD ")
	assert.True(t, ok)
	assert.Equal(t, domain.WatchlistBroad, mode)
}
