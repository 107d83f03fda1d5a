package locale_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storehub-api/pkg/locale"
)

func TestCountry(t *testing.T) {
	got, err := locale.Country("co")
	require.NoError(t, err)
	assert.Equal(t, "CO", got)

	got, err = locale.Country("US")
	require.NoError(t, err)
	assert.Equal(t, "US", got)

	for _, bad := range []string{"", "COL", "1", "Q1"} {
		_, err := locale.Country(bad)
		assert.Error(t, err, "debe rechazar %q", bad)
	}
}

func TestCurrency(t *testing.T) {
	got, err := locale.Currency("usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", got)

	got, err = locale.Currency("COP")
	require.NoError(t, err)
	assert.Equal(t, "COP", got)

	for _, bad := range []string{"", "US", "DOLLAR", "ZZZ"} {
		_, err := locale.Currency(bad)
		assert.Error(t, err, "debe rechazar %q", bad)
	}
}
