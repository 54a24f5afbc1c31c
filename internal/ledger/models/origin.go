package models

import (
	"strings"

	"github.com/mssola/useragent"
)

const maxUserAgentLen = 512

// NewOrigin parses the raw user agent into browser, OS and mobile flags.
func NewOrigin(ip, userAgent string) Origin {
	userAgent = strings.TrimSpace(userAgent)
	if len(userAgent) > maxUserAgentLen {
		userAgent = userAgent[:maxUserAgentLen]
	}
	origin := Origin{IP: strings.TrimSpace(ip), UserAgent: userAgent}
	if userAgent == "" {
		return origin
	}
	ua := useragent.New(userAgent)
	if name, version := ua.Browser(); name != "" {
		origin.Browser = strings.TrimSpace(name + " " + majorVersion(version))
	}
	origin.OS = strings.TrimSpace(ua.OS())
	origin.Mobile = ua.Mobile()
	return origin
}

// majorVersion keeps origins groupable: "120.0.6099.71" becomes "120".
func majorVersion(v string) string {
	major, _, _ := strings.Cut(v, ".")
	return major
}
