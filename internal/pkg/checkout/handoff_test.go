package checkout

import (
	"errors"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipsense/portal/internal/pkg/catalog"
	"github.com/lipsense/portal/internal/pkg/pricing"
)

func TestParseHandoffFull(t *testing.T) {
	q, err := url.ParseQuery("plan=pro&name=Pro&price=154&interval=yearly&apiCalls=25000&resolution=1080p&languages=5&support=priority&features=API%20access|%20Analytics%20||")
	require.NoError(t, err)

	h, err := ParseHandoff(q)
	require.NoError(t, err)
	assert.Equal(t, catalog.SlugPro, h.Plan)
	assert.Equal(t, "Pro", h.Name)
	assert.True(t, h.Price.Equal(decimal.NewFromInt(154)))
	assert.Equal(t, IntervalYearly, h.Interval)
	require.NotNil(t, h.APICalls)
	assert.Equal(t, 25000, *h.APICalls)
	assert.Equal(t, pricing.Resolution1080p, h.Resolution)
	require.NotNil(t, h.Languages)
	assert.Equal(t, 5, *h.Languages)
	assert.Equal(t, pricing.SupportPriority, h.Support)
	assert.Equal(t, []string{"API access", "Analytics"}, h.Features)
}

func TestParseHandoffMinimal(t *testing.T) {
	h, err := ParseHandoff(url.Values{"plan": {"basic"}, "name": {"Basic"}, "price": {"29"}})
	require.NoError(t, err)
	assert.Equal(t, IntervalMonthly, h.Interval)
	assert.Nil(t, h.APICalls)
	assert.Nil(t, h.Languages)
	assert.Empty(t, h.Resolution)
	assert.Empty(t, h.Features)
}

func TestParseHandoffReportsAllMissing(t *testing.T) {
	_, err := ParseHandoff(url.Values{"name": {"  "}, "interval": {"monthly"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingHandoff)

	var missing *MissingParamsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"plan", "name", "price"}, missing.Params)
	assert.Equal(t, "missing checkout parameters: plan, name, price", err.Error())
}

func TestParseHandoffRejectsMalformed(t *testing.T) {
	base := func() url.Values {
		return url.Values{"plan": {"pro"}, "name": {"Pro"}, "price": {"99"}}
	}
	tests := []struct {
		key, value string
	}{
		{key: "plan", value: "gold"},
		{key: "price", value: "ninety"},
		{key: "price", value: "-5"},
		{key: "price", value: "0"},
		{key: "interval", value: "weekly"},
		{key: "apiCalls", value: "lots"},
		{key: "apiCalls", value: "999"},
		{key: "resolution", value: "8K"},
		{key: "languages", value: "0"},
		{key: "languages", value: "41"},
		{key: "languages", value: "-10"},
		{key: "support", value: "platinum"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			q := base()
			q.Set(tt.key, tt.value)
			_, err := ParseHandoff(q)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedHandoff)
			assert.NotErrorIs(t, err, ErrMissingHandoff)

			var pe *ParamError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.key, pe.Param)
		})
	}
}

func TestParseHandoffSendsEnterpriseToSales(t *testing.T) {
	_, err := ParseHandoff(url.Values{"plan": {"enterprise"}, "name": {"Enterprise"}, "price": {"1"}})
	assert.ErrorIs(t, err, ErrCustomPricing)
}

func TestHandoffEncodeRoundTrips(t *testing.T) {
	u := pricing.UsageParameters{APICalls: 25000, Resolution: pricing.Resolution4K, Languages: 12, Support: pricing.SupportEnterprise}
	q := pricing.Calculate(u)
	h := NewHandoff(q.Plan(), IntervalMonthly, *q.Monthly, &u)

	got, err := ParseHandoff(h.Encode())
	require.NoError(t, err)
	assert.Equal(t, h.Plan, got.Plan)
	assert.Equal(t, h.Name, got.Name)
	assert.True(t, h.Price.Equal(got.Price))
	assert.Equal(t, *h.APICalls, *got.APICalls)
	assert.Equal(t, *h.Languages, *got.Languages)
	assert.Equal(t, h.Resolution, got.Resolution)
	assert.Equal(t, h.Support, got.Support)
	assert.Equal(t, h.Features, got.Features)
}

func TestHandoffURL(t *testing.T) {
	h := NewHandoff(catalog.MustLookup(catalog.SlugBasic), IntervalMonthly, decimal.NewFromInt(29), nil)
	h.Features = []string{"a", "b"}
	assert.Equal(t, "/checkout?features=a%7Cb&interval=monthly&name=Basic&plan=basic&price=29", h.URL("/checkout"))
}
