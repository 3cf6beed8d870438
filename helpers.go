package spacetraveling

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/gommon/log"
)

// uidPattern matches the uids the content service generates: lowercase
// slugs of letters, digits, hyphens and underscores.
var uidPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,199}$`)

// ValidUID reports whether uid can name a post.
func ValidUID(uid string) bool {
	return uidPattern.MatchString(uid)
}

// publicationTime parses a publication date as the content service formats
// it, e.g. "2021-03-15T19:25:28+0000".
func publicationTime(raw *string) (time.Time, bool) {
	if raw == nil {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(*raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// isoDate normalizes raw to RFC 3339, returning it unchanged if it does not parse.
func isoDate(raw string) string {
	t, ok := publicationTime(&raw)
	if !ok {
		return raw
	}
	return t.UTC().Format(time.RFC3339)
}

// ParseLogLevel maps a config log level onto gommon's levels.
func ParseLogLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
