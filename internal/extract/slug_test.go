package extract

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestDomainGrammar(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
		ok   bool
	}{
		{
			"suburb state postcode id",
			"https://www.domain.com.au/south-morang-vic-3752-2020549940",
			"South Morang", true,
		},
		{
			"street prefix stripped",
			"https://www.domain.com.au/14-hurst-grove-south-morang-vic-3752-2020549940",
			"South Morang", true,
		},
		{
			"single word suburb",
			"https://www.domain.com.au/22-high-street-reservoir-vic-3073-2019888888",
			"Reservoir", true,
		},
		{
			"no state token",
			"https://www.domain.com.au/about-us",
			"", false,
		},
		{
			"state token first",
			"https://www.domain.com.au/vic-3752-2020549940",
			"", false,
		},
	}
	g := domainGrammar{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := g.SuburbFromURL(mustParse(t, tt.url))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRealEstateGrammar(t *testing.T) {
	g := realEstateGrammar{}

	got, ok := g.SuburbFromURL(mustParse(t,
		"https://www.realestate.com.au/buy/vic-south-morang/list-1"))
	require.True(t, ok)
	assert.Equal(t, "South Morang", got)

	got, ok = g.SuburbFromURL(mustParse(t,
		"https://www.realestate.com.au/neighbourhoods/vic-box-hill"))
	require.True(t, ok)
	assert.Equal(t, "Box Hill", got)

	_, ok = g.SuburbFromURL(mustParse(t, "https://www.realestate.com.au/news/latest"))
	assert.False(t, ok)
}

func TestSuburbFromURL_RegistryDispatch(t *testing.T) {
	got, ok := suburbFromURL(mustParse(t,
		"https://www.domain.com.au/south-morang-vic-3752-2020549940"))
	require.True(t, ok)
	assert.Equal(t, "South Morang", got)

	_, ok = suburbFromURL(mustParse(t, "https://unknown-site.example/listing-123"))
	assert.False(t, ok)

	_, ok = suburbFromURL(nil)
	assert.False(t, ok)
}

func TestGrammarNames(t *testing.T) {
	assert.Equal(t, "domain", domainGrammar{}.Name())
	assert.Equal(t, "realestate", realEstateGrammar{}.Name())
}
