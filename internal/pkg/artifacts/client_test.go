package artifacts

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		Region:          "us-east-1",
		BucketName:      "lipsense-results",
		EndpointURL:     "http://localhost:9000",
		Prefix:          "results/",
		LinkTTL:         15 * time.Minute,
		Enabled:         true,
	}
}

func TestDownloadURLIsPresigned(t *testing.T) {
	c, err := NewClient(context.Background(), testConfig())
	require.NoError(t, err)

	raw, err := c.DownloadURL(context.Background(), "results/2026/r1.json")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/lipsense-results/results/2026/r1.json", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestDownloadURLRejectsForeignKeys(t *testing.T) {
	c, err := NewClient(context.Background(), testConfig())
	require.NoError(t, err)

	for _, key := range []string{"", "invoices/1.pdf", "results/../invoices/1.pdf"} {
		_, err := c.DownloadURL(context.Background(), key)
		assert.ErrorIs(t, err, ErrForbiddenKey, "key %q", key)
	}
}

func TestNewClientRequiresEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	_, err := NewClient(context.Background(), cfg)
	assert.Error(t, err)
}

func TestLoadConfigRequiresCredentials(t *testing.T) {
	t.Setenv("S3_ENABLED", "true")
	t.Setenv("S3_ACCESS_KEY_ID", "")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("S3_ACCESS_KEY_ID", "id")
	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")
	t.Setenv("S3_BUCKET_NAME", "bucket")
	t.Setenv("S3_LINK_TTL_SECONDS", "60")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.LinkTTL)
	assert.Equal(t, "results/", cfg.Prefix)
}
