package i18n

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestNegotiate(t *testing.T) {
	require.Equal(t, language.Thai, Negotiate(""))
	require.Equal(t, language.Thai, Negotiate("th-TH,th;q=0.9"))
	require.Equal(t, language.English, Negotiate("en-US,en;q=0.9"))
	require.Equal(t, language.English, Negotiate("fr-FR;q=0.9,en;q=0.8"))
	require.Equal(t, language.Thai, Negotiate("%%%"))
}

func TestCatalogComplete(t *testing.T) {
	for key := range catalog[language.Thai] {
		_, ok := catalog[language.English][key]
		require.True(t, ok, "missing english text for %s", key)
	}
	require.Equal(t, "Not enough stock!", T(language.English, InsufficientStock))
	require.Equal(t, "unknown_key", T(language.English, Key("unknown_key")))
}
