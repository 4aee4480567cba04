package validate

import (
	"regexp"
	"strings"
)

// phoneRe matches Ethiopian mobile numbers: optional +251 or 0 prefix,
// then 9 and eight more digits.
var phoneRe = regexp.MustCompile(`^(\+251|0)?9\d{8}$`)

// emailRe is a deliberately loose shape check, not RFC validation.
var emailRe = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// channelMarkers are the URL fragments accepted as a YouTube channel link.
var channelMarkers = []string{
	"youtube.com/channel/",
	"youtube.com/c/",
	"youtube.com/user/",
	"youtube.com/@",
	"youtu.be/",
}

// Phone reports whether s looks like an Ethiopian mobile number.
func Phone(s string) bool {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	return phoneRe.MatchString(s)
}

// Email reports whether s is a plausible email address. The literal "skip"
// (any case) is always valid; it is the opt-out sentinel for the email step.
func Email(s string) bool {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "skip") {
		return true
	}
	return emailRe.MatchString(s)
}

// IsEmailSkip reports whether s is the email opt-out sentinel.
func IsEmailSkip(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "skip")
}

// ChannelURL reports whether s contains a recognizable YouTube channel
// path. This is a shape check only; no network validation is performed.
func ChannelURL(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, marker := range channelMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
