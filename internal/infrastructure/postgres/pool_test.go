package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPv4Lookup_LiteralesIP(t *testing.T) {
	l := newIPv4Lookup("")
	for _, host := range []string{"10.0.0.5", "127.0.0.1", "::1"} {
		addrs, err := l.lookup(context.Background(), host)
		require.NoError(t, err)
		assert.Equal(t, []string{host}, addrs)
	}
}

func TestIPv4Lookup_DNSAlterno(t *testing.T) {
	assert.Len(t, newIPv4Lookup("").resolvers, 1)
	assert.Empty(t, newIPv4Lookup("").fallback)

	l := newIPv4Lookup("1.1.1.1")
	assert.Len(t, l.resolvers, 2)
	assert.Equal(t, "1.1.1.1:53", l.fallback)

	assert.Equal(t, "10.0.0.2:5353", newIPv4Lookup("10.0.0.2:5353").fallback)
}
