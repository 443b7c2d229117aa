package fixture

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/partner-console/internal/domain"
	"github.com/ignite/partner-console/internal/service/adoption"
)

const sampleYAML = `
campaigns:
  - id: spring
    name: Spring Launch
    brand_name: Lumen
    watchlist_mode: broad
    retailers:
      - id: ret-01
        name: Acme Co.
        tier: Gold
        zone: North
        contact_email: buyer@acme.test
      - id: ret-02
        name: Bravo
    overrides:
      - retailer_id: ret-01
        status: Participated
        last_active: 2 days ago
        total_actions: 3
        usage: {social: true, email: false, downloadable: true}
      - retailer_id: ret-02
        status: Viewed
        last_active: Yesterday
        usage: email
  - id: fall
    name: Fall Refresh
`

func TestParse(t *testing.T) {
	src, err := Parse(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, []string{"spring", "fall"}, src.CampaignIDs())
	campaigns := src.Campaigns()
	require.Len(t, campaigns, 2)
	assert.Len(t, campaigns[0].Retailers, 2)
	assert.Len(t, campaigns[0].Overrides, 2)
	assert.Empty(t, campaigns[1].Retailers)

	c, err := src.Campaign(ctx, "spring")
	require.NoError(t, err)
	assert.Equal(t, "Lumen", c.BrandName)
	assert.Equal(t, domain.WatchlistBroad, c.WatchlistMode)

	rs, err := src.Retailers(ctx, "spring")
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, domain.TierGold, rs[0].Tier)
	assert.Equal(t, "buyer@acme.test", rs[0].ContactEmail)

	ov, err := src.Overrides(ctx, "spring")
	require.NoError(t, err)
	assert.Equal(t, domain.NewChannelSet(domain.ChannelSocial, domain.ChannelDownloadable), ov["ret-01"].Usage)
	assert.Equal(t, domain.NewChannelSet(domain.ChannelEmail), ov["ret-02"].Usage)
	require.NotNil(t, ov["ret-01"].LastActive)
	assert.Equal(t, "2 days ago", *ov["ret-01"].LastActive)

	empty, err := src.Retailers(ctx, "fall")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSource_UnknownCampaign(t *testing.T) {
	src, err := Parse(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	_, err = src.Campaign(context.Background(), "winter")
	assert.ErrorIs(t, err, adoption.ErrCampaignNotFound)
	_, err = src.Overrides(context.Background(), "winter")
	assert.ErrorIs(t, err, adoption.ErrCampaignNotFound)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse(strings.NewReader("campaigns:\n  - name: no id\n"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("campaigns:\n  - id: a\n  - id: a\n"))
	assert.Error(t, err)

	src, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, src.CampaignIDs())
}

func TestSource_FeedsAdoptionService(t *testing.T) {
	src, err := Parse(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	svc := adoption.NewService(src, adoption.NewNormalizer(adoption.DefaultReachPolicy, nil))
	roster, err := svc.Roster(context.Background(), "spring")
	require.NoError(t, err)

	require.Len(t, roster.Records, 2)
	assert.Equal(t, 250+3*120, roster.Records[0].EstimatedReach)
	assert.Equal(t, domain.TierStandard, roster.Records[1].Tier)
	assert.Equal(t, domain.DefaultZone, roster.Records[1].Zone)
}

func TestLoad_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	src, err := Load(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Len(t, src.CampaignIDs(), 2)

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

type fakeGetter struct {
	body   string
	err    error
	bucket string
	key    string
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestLoad_S3(t *testing.T) {
	g := &fakeGetter{body: sampleYAML}
	src, err := Load(context.Background(), "s3://fixtures/partner/roster.yaml", g)
	require.NoError(t, err)
	assert.Equal(t, "fixtures", g.bucket)
	assert.Equal(t, "partner/roster.yaml", g.key)
	assert.Len(t, src.CampaignIDs(), 2)

	_, err = Load(context.Background(), "s3://fixtures/roster.yaml", &fakeGetter{err: errors.New("denied")})
	assert.ErrorContains(t, err, "denied")

	_, err = Load(context.Background(), "s3://fixtures/roster.yaml", nil)
	assert.Error(t, err)
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		in          string
		bucket, key string
		ok          bool
	}{
		{"s3://b/k.yaml", "b", "k.yaml", true},
		{"s3://b/dir/k.yaml", "b", "dir/k.yaml", true},
		{"s3://b", "", "", false},
		{"s3:///k", "", "", false},
		{"./local.yaml", "", "", false},
	}
	for _, tt := range tests {
		b, k, ok := parseS3URL(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.bucket, b, tt.in)
		assert.Equal(t, tt.key, k, tt.in)
	}
}
