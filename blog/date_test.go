package blog

import (
	"strings"
	"testing"

	"github.com/goodsign/monday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestFormatDateEnglish(t *testing.T) {
	got, err := FormatDate(strPtr("2021-03-15T19:25:28+0000"), "en-US")
	require.NoError(t, err)
	assert.Equal(t, "15 Mar 2021", got)
}

func TestFormatDatePortuguese(t *testing.T) {
	got, err := FormatDate(strPtr("2021-03-25T19:25:28+0000"), "pt-BR")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "25 "), "got %q", got)
	assert.True(t, strings.HasSuffix(got, " 2021"), "got %q", got)
	assert.NotContains(t, got, "Mar")
}

func TestFormatDateIsPure(t *testing.T) {
	in := strPtr("2020-12-01T08:00:00Z")
	first, err := FormatDate(in, "pt-BR")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := FormatDate(in, "pt-BR")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFormatDateNil(t *testing.T) {
	_, err := FormatDate(nil, "pt-BR")
	assert.ErrorIs(t, err, ErrNoPublicationDate)
}

func TestFormatDateInvalid(t *testing.T) {
	_, err := FormatDate(strPtr("not a date"), "pt-BR")
	assert.Error(t, err)
}

func TestMondayLocale(t *testing.T) {
	assert.Equal(t, monday.Locale(monday.LocalePtBR), MondayLocale("pt-br"))
	assert.Equal(t, monday.Locale(monday.LocaleEnUS), MondayLocale("en-US"))
	assert.Equal(t, monday.Locale(monday.LocaleEnUS), MondayLocale("%%%"))
}

func TestCanonicalLocale(t *testing.T) {
	assert.Equal(t, "pt-BR", CanonicalLocale("pt-br"))
	assert.Equal(t, "???", CanonicalLocale("???"))
}
