package common

import (
	"errors"
	"regexp"
	"strings"
)

// ErrBlockedScamLink is returned when a blocked short link is detected
var ErrBlockedScamLink = errors.New("内容中包含被禁止的短链接，请使用完整网址")

// Short link domains frequently abused in pet scam messages. Shortened
// URLs hide the destination, so they are rejected in post descriptions
// and chat messages.
var blockedShortLinkDomains = []string{
	"t.cn",
	"dwz.cn",
	"url.cn",
	"suo.im",
	"mrw.so",
	"bit.ly",
	"tinyurl.com",
}

// URL pattern to extract links from content
var urlPattern = regexp.MustCompile(`(?i)https?://[^\s<>"']+`)

// containsBlockedDomain checks if content contains any blocked domain links
func containsBlockedDomain(content string, blockedDomains []string) bool {
	urls := urlPattern.FindAllString(content, -1)

	for _, url := range urls {
		urlLower := strings.ToLower(url)
		for _, domain := range blockedDomains {
			if strings.Contains(urlLower, "://"+domain+"/") ||
				strings.HasSuffix(urlLower, "://"+domain) ||
				strings.Contains(urlLower, "."+domain+"/") {
				return true
			}
		}
	}
	return false
}

// ValidateLinks rejects content containing blocked short links.
// Admins are exempt so moderation notes can quote offending URLs.
func ValidateLinks(content string, isAdmin bool) error {
	if isAdmin {
		return nil
	}
	if containsBlockedDomain(content, blockedShortLinkDomains) {
		return ErrBlockedScamLink
	}
	return nil
}
