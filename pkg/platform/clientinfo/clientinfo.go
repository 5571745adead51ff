// Package clientinfo turns raw User-Agent headers into short human-readable
// client descriptors for audit trails. Audit events keep the descriptor
// instead of the raw header so the trail stays useful without accumulating
// high-entropy browser strings.
package clientinfo

import (
	"strings"

	"github.com/mssola/useragent"
)

// Describe extracts a display name from a User-Agent string.
// Browsers come out as "Browser on OS" (e.g. "Chrome on Intel Mac OS X 10_15_7",
// "Safari on iPhone"). Bare API clients come out as their product token
// (e.g. "curl", "pactum-sdk").
func Describe(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Client"
	}

	ua := useragent.New(userAgentString)

	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		platform := ua.Platform()
		if platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}

	browser = strings.TrimSpace(browser)
	os = strings.TrimSpace(os)

	switch {
	case browser != "" && os != "":
		return browser + " on " + os
	case browser != "":
		// Non-browser clients (curl, SDKs) carry no OS comment.
		return browser
	case os != "":
		return "Unknown Client on " + os
	default:
		return "Unknown Client"
	}
}
