package main

import (
	"net/http"
	"net/url"
	"strings"
)

// normalizeOrigins reduces the configured allow-list to lower-cased
// scheme://host entries. A "*" entry or an empty list allows every origin.
func normalizeOrigins(cfg *Config, origins []string) (map[string]struct{}, bool) {
	allowed := make(map[string]struct{}, len(origins))
	allowAll := true

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}

		if trimmed == "*" {
			return nil, true
		}
		allowAll = false

		normalized, ok := normalizeOrigin(trimmed)
		if !ok {
			logf(cfg, "LIGHTS: Ignoring invalid origin in configuration: %q", origin)

			continue
		}

		allowed[normalized] = struct{}{}
	}

	return allowed, allowAll
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", false
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}

	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

// originChecker builds the websocket CheckOrigin hook. With an allow-list
// in place, requests without an Origin header are refused.
func originChecker(cfg *Config) func(r *http.Request) bool {
	allowed, allowAll := normalizeOrigins(cfg, cfg.allowedOrigins)

	return func(r *http.Request) bool {
		if allowAll {
			return true
		}

		origin, ok := normalizeOrigin(r.Header.Get("Origin"))
		if ok {
			if _, exists := allowed[origin]; exists {
				return true
			}
		}

		logf(cfg, "LIGHTS: Blocked websocket from disallowed origin %q", r.Header.Get("Origin"))

		return false
	}
}
