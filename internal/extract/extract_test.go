package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haihuyentran/melbourne-properties/internal/model"
	"github.com/haihuyentran/melbourne-properties/internal/upstream"
)

const listingURL = "https://www.domain.com.au/14-hurst-grove-south-morang-vic-3752-2020549940"

// pad grows a page body past the challenge-detection size window.
func pad(html string) []byte {
	return []byte(html + strings.Repeat("<!-- filler -->", 800))
}

const fullListing = `<html>
<head><title>14 Hurst Grove, South Morang VIC 3752 - Domain</title></head>
<body>
<span class="price">$1,100,000 - $1,210,000</span>
<span>4 Beds</span><span>2 Baths</span><span>2 Parking</span>
<div>Townhouse</div>
<p>Landscaped garden to the rear and a solar-heated pool.</p>
</body></html>`

func TestExtract_FullListing(t *testing.T) {
	l, err := Extract(pad(fullListing), listingURL)
	require.NoError(t, err)

	require.NotNil(t, l.Price)
	assert.Equal(t, 1_100_000, *l.Price)

	require.NotNil(t, l.Suburb)
	assert.Equal(t, "South Morang", *l.Suburb)

	require.NotNil(t, l.Bedrooms)
	assert.Equal(t, 4, *l.Bedrooms)
	require.NotNil(t, l.Bathrooms)
	assert.Equal(t, 2, *l.Bathrooms)
	require.NotNil(t, l.Garage)
	assert.Equal(t, 2, *l.Garage)

	assert.Equal(t, "Townhouse", l.PropertyType)
	assert.Equal(t, model.PresenceYes, l.Garden)
	assert.Equal(t, model.PresenceYes, l.Pool)
	assert.Equal(t, "14 Hurst Grove, South Morang VIC 3752", l.DisplayAddress)
}

func TestExtract_MalformedHTMLNeverFails(t *testing.T) {
	l, err := Extract(pad("<div><<<>>>???<span>3 Beds"), "https://example.org/x")
	require.NoError(t, err)
	require.NotNil(t, l.Bedrooms)
	assert.Equal(t, 3, *l.Bedrooms)
	assert.Nil(t, l.Price)
	assert.Nil(t, l.Suburb)
	assert.Equal(t, "Unknown", l.DisplayAddress)
}

func TestExtract_ChallengePageIsBlocked(t *testing.T) {
	_, err := Extract([]byte("<html><body>Pardon Our Interruption... complete the CAPTCHA</body></html>"), listingURL)
	require.Error(t, err)
	assert.True(t, upstream.IsBlocked(err))
}

func TestExtract_MillionShorthand(t *testing.T) {
	l, err := Extract(pad(`<html><body><span>$1.1m</span></body></html>`), listingURL)
	require.NoError(t, err)
	require.NotNil(t, l.Price)
	assert.Equal(t, 1_100_000, *l.Price)
}

func TestExtract_EmbeddedPriceField(t *testing.T) {
	l, err := Extract(pad(`<html><body><script>{"offers":{"price":935000}}</script></body></html>`), listingURL)
	require.NoError(t, err)
	require.NotNil(t, l.Price)
	assert.Equal(t, 935_000, *l.Price)
}

func TestExtract_RangeWinsOverEmbedded(t *testing.T) {
	page := `<html><body>
<span>$850,000 - $930,000</span>
<script>{"price":900000}</script>
</body></html>`
	l, err := Extract(pad(page), listingURL)
	require.NoError(t, err)
	require.NotNil(t, l.Price)
	assert.Equal(t, 850_000, *l.Price)
}

func TestExtract_PriceOutOfRangeDiscarded(t *testing.T) {
	// $5,000 range lower bound fails validation; embedded field wins.
	page := `<html><body><span>$5,000 - $6,000</span><script>{"price":720000}</script></body></html>`
	l, err := Extract(pad(page), listingURL)
	require.NoError(t, err)
	require.NotNil(t, l.Price)
	assert.Equal(t, 720_000, *l.Price)
}

func TestExtract_TriStateUnknown(t *testing.T) {
	l, err := Extract(pad("<html><body>A lovely home.</body></html>"), listingURL)
	require.NoError(t, err)
	assert.Equal(t, model.PresenceUnknown, l.Garden)
	assert.Equal(t, model.PresenceUnknown, l.Pool)
}

func TestExtract_DefaultPropertyType(t *testing.T) {
	l, err := Extract(pad("<html><body>3 Beds</body></html>"), "https://example.org/y")
	require.NoError(t, err)
	assert.Equal(t, "House", l.PropertyType)
}

func TestExtract_TypeFromURLTakesPrecedence(t *testing.T) {
	// Domain family: the path token wins even when the body says House.
	page := `<html><body><div>House</div></body></html>`
	l, err := Extract(pad(page), "https://www.domain.com.au/apartment-407-2-clarendon-street-southbank-vic-3006-2019191")
	require.NoError(t, err)
	assert.Equal(t, "Apartment", l.PropertyType)
}

func TestExtract_TitleTooShortFallsBack(t *testing.T) {
	page := `<html><head><title>Home</title></head><body></body></html>`
	l, err := Extract(pad(page), listingURL)
	require.NoError(t, err)
	assert.Equal(t, "South Morang, VIC", l.DisplayAddress)
}

func TestExtract_CountsNonNegative(t *testing.T) {
	fixtures := []string{
		fullListing,
		"<html><body>0 Beds studio</body></html>",
		"<html><body>no numbers at all</body></html>",
	}
	for _, f := range fixtures {
		l, err := Extract(pad(f), listingURL)
		require.NoError(t, err)
		for _, v := range []*int{l.Bedrooms, l.Bathrooms, l.Garage} {
			if v != nil {
				assert.GreaterOrEqual(t, *v, 0)
			}
		}
		if l.Price != nil {
			assert.GreaterOrEqual(t, *l.Price, 10_000)
			assert.LessOrEqual(t, *l.Price, 50_000_000)
		}
	}
}
