package blog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// DisplayLayout is the "dd MMM yyyy" layout used for publication dates.
const DisplayLayout = "02 Jan 2006"

// ErrNoPublicationDate is returned when a published post arrives without a
// first publication date.
var ErrNoPublicationDate = errors.New("blog: post has no publication date")

// FormatDate renders an ISO-8601 timestamp as "dd MMM yyyy" with month names
// in the given locale (a BCP 47 tag such as "pt-BR").
func FormatDate(iso *string, locale string) (string, error) {
	if iso == nil {
		return "", ErrNoPublicationDate
	}
	t, err := dateparse.ParseAny(strings.TrimSpace(*iso))
	if err != nil {
		return "", fmt.Errorf("blog: parse date %q: %w", *iso, err)
	}
	return monday.Format(t, DisplayLayout, MondayLocale(locale)), nil
}

// MondayLocale maps a BCP 47 tag to the closest locale monday knows about,
// falling back to en_US.
func MondayLocale(locale string) monday.Locale {
	tag, err := language.Parse(locale)
	if err != nil {
		return monday.LocaleEnUS
	}
	want := monday.Locale(strings.ReplaceAll(tag.String(), "-", "_"))
	base, _ := tag.Base()
	for _, l := range monday.ListLocales() {
		if l == want {
			return l
		}
	}
	for _, l := range monday.ListLocales() {
		if strings.HasPrefix(string(l), base.String()+"_") {
			return l
		}
	}
	return monday.LocaleEnUS
}

// CanonicalLocale normalizes a locale tag ("pt-br" -> "pt-BR"). Invalid tags
// are returned unchanged.
func CanonicalLocale(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}
	return tag.String()
}
