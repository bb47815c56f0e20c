package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/internal/domain/article"
)

const testDSN = "postgres://localhost/trendpulse_test"

func TestLoadMissingRequired(t *testing.T) {
	os.Unsetenv("POSTGRES_DSN")

	_, err := Load()
	require.Error(t, err, "expected error for missing POSTGRES_DSN")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", testDSN)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testDSN, cfg.PostgresDSN)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, time.Hour, cfg.FetchInterval)
	assert.Equal(t, 6*time.Hour, cfg.TrendInterval)
	assert.Equal(t, 30, cfg.ArticleRetentionDays)
	assert.Equal(t, 90, cfg.TrendRetentionDays)
	assert.Equal(t, 2, cfg.RetentionHourUTC)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", testDSN)
	t.Setenv("NEWS_FETCH_INTERVAL", "15m")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.FetchInterval)
	assert.Len(t, cfg.CORSOrigins, 2)
}

func TestLoadSourcesDefaultCatalog(t *testing.T) {
	sources, err := LoadSources("")
	require.NoError(t, err)
	require.NotEmpty(t, sources)

	kinds := map[article.SourceKind]int{}
	for _, s := range sources {
		kinds[s.Kind]++
		assert.True(t, s.Active)
		assert.NotEmpty(t, s.Name)
	}

	assert.Equal(t, 5, kinds[article.KindRSS])
	assert.Equal(t, 1, kinds[article.KindNewsAPI])
	assert.Equal(t, 1, kinds[article.KindGuardian])
}

func TestLoadSourcesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	data := `sources:
  - name: Example Feed
    kind: rss
    url: https://example.com/feed.xml
    country: Germany
  - name: Stale Feed
    kind: rss
    url: https://example.com/old.xml
    disabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	sources, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "Example Feed", sources[0].Name)
	assert.Equal(t, article.KindRSS, sources[0].Kind)
	assert.Equal(t, "Germany", sources[0].Country)
	assert.Equal(t, defaultCredibility, sources[0].Credibility)
	assert.Equal(t, "en", sources[0].Language)
	assert.True(t, sources[0].Active)
	assert.False(t, sources[1].Active)
}

func TestLoadSourcesRejectsUnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	data := `sources:
  - name: Mystery
    kind: telegraph
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	_, err := LoadSources(path)
	require.Error(t, err)
}
