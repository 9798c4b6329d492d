package app

import (
	"net/url"
	"strings"
)

// redisTarget describes a REDIS_URL for logs without its credentials.
func redisTarget(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed == nil || parsed.Host == "" {
		return "invalid"
	}

	db := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
	if db == "" {
		db = "0"
	}

	return parsed.Scheme + "://" + parsed.Host + "/" + db
}
