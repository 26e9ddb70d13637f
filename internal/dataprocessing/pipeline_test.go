package dataprocessing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mktintel/pkg/contracts/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testSources(t *testing.T) Sources {
	t.Helper()
	dir := t.TempDir()

	business := writeFile(t, dir, "business.csv", `date,# of orders,# of new orders,new customers,total revenue,gross profit,COGS
2024-01-01,100,40,30,5000,2000,3000
2024-01-02,90,35,28,4500,1800,2700
2024-01-03,80,30,25,4000,1600,2400
`)
	facebook := writeFile(t, dir, "Facebook.csv", `date,tactic,state,campaign,impression,clicks,spend,attributed revenue
2024-01-01,ASC,NY,fb-1,1000,50,100,300
2024-01-02,Retargeting,CA,fb-2,2000,60,150,450
`)
	google := writeFile(t, dir, "Google.csv", `date,tactic,state,campaign,impression,clicks,spend,attributed revenue
2024-01-01,Search,NY,g-1,500,40,80,240
2024-01-09,Search,NY,g-2,800,50,90,270
`)
	tiktok := writeFile(t, dir, "TikTok.csv", `date,tactic,state,campaign,impression,clicks,spend,attributed revenue
`)

	return Sources{
		BusinessFile: business,
		MarketingFiles: map[domain.Platform]string{
			domain.PlatformFacebook: facebook,
			domain.PlatformGoogle:   google,
			domain.PlatformTikTok:   tiktok,
		},
	}
}

func TestPipelineRun(t *testing.T) {
	p := NewPipeline(nil, DefaultParserConfig())
	res, err := p.Run(testSources(t))
	require.NoError(t, err)

	assert.Len(t, res.Business, 3)
	assert.Len(t, res.Marketing, 4)
	// One combined row per business date.
	require.Len(t, res.Combined, 3)

	// 2024-01-01 sums Facebook and Google.
	first := res.Combined[0]
	assert.InDelta(t, 180, first.Spend, 1e-12)
	assert.InDelta(t, 540, first.AttributedRevenue, 1e-12)
	assert.InDelta(t, 3.0, first.ROAS, 1e-12)

	// 2024-01-03 has business data but no marketing rows.
	last := res.Combined[2]
	assert.Equal(t, float64(0), last.Spend)
	assert.InDelta(t, 4000, last.AttributionGap, 1e-12)

	// Google 2024-01-09 is outside the business calendar.
	assert.Equal(t, 1, res.Join.UnmatchedMarketingDates)

	// Empty TikTok source is recoverable with a warning.
	assert.NotEmpty(t, res.Quality.Warnings)
}

func TestPipelineMissingSource(t *testing.T) {
	sources := testSources(t)
	sources.MarketingFiles[domain.PlatformFacebook] = filepath.Join(t.TempDir(), "nope.csv")

	p := NewPipeline(nil, DefaultParserConfig())
	_, err := p.Run(sources)
	require.Error(t, err)
	assert.True(t, IsSourceMissing(err))
	assert.Contains(t, err.Error(), "Facebook")
}

func TestPipelineMissingBusinessSource(t *testing.T) {
	sources := testSources(t)
	sources.BusinessFile = filepath.Join(t.TempDir(), "nope.csv")

	p := NewPipeline(nil, DefaultParserConfig())
	_, err := p.Run(sources)
	require.Error(t, err)
	assert.True(t, IsSourceMissing(err))
}

func TestPipelineEmptyBusinessSource(t *testing.T) {
	sources := testSources(t)
	dir := t.TempDir()
	sources.BusinessFile = writeFile(t, dir, "business.csv", "date,orders,total revenue\n")

	p := NewPipeline(nil, DefaultParserConfig())
	_, err := p.Run(sources)
	require.Error(t, err)
	assert.True(t, IsEmptyResult(err))
	assert.False(t, IsSourceMissing(err))
}

// A fully empty marketing source with a non-empty business source still
// produces one combined row per business date.
func TestPipelineEmptyMarketingSources(t *testing.T) {
	dir := t.TempDir()
	business := writeFile(t, dir, "business.csv", `date,orders,total revenue
2024-01-01,10,1000
2024-01-02,20,2000
`)
	empty := writeFile(t, dir, "Facebook.csv", "date,impression,clicks,spend,attributed revenue\n")

	p := NewPipeline(nil, DefaultParserConfig())
	res, err := p.Run(Sources{
		BusinessFile:   business,
		MarketingFiles: map[domain.Platform]string{domain.PlatformFacebook: empty},
	})
	require.NoError(t, err)
	require.Len(t, res.Combined, 2)
	assert.Equal(t, float64(0), res.Combined[0].Spend)
}
