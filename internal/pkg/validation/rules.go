package validation

import (
	"regexp"
	"strings"
)

var (
	// EmailPattern is a loose shape check; domain policy is enforced by CollegeEmailRule
	EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	hashtagPattern = regexp.MustCompile(`#(\w+)`)
)

const (
	NameMaxLength     = 100
	MinSearchLength   = 2
	MaxChatbotHistory = 10
)

// CollegeEmailRule admits addresses whose domain is, or ends in, an academic suffix
type CollegeEmailRule struct {
	suffixes []string
}

// NewCollegeEmailRule creates a rule for the given domain suffixes ("edu", "ac.uk", ...)
func NewCollegeEmailRule(suffixes []string) *CollegeEmailRule {
	cleaned := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		s = strings.Trim(strings.ToLower(strings.TrimSpace(s)), ".")
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return &CollegeEmailRule{suffixes: cleaned}
}

// Allows reports whether email is well-formed and on an allowed domain
func (r *CollegeEmailRule) Allows(email string) bool {
	email = NormalizeEmail(email)
	if !EmailPattern.MatchString(email) {
		return false
	}

	domain := email[strings.LastIndex(email, "@")+1:]
	for _, s := range r.suffixes {
		if domain == s || strings.HasSuffix(domain, "."+s) {
			return true
		}
	}
	return false
}

// NormalizeEmail lowercases and trims an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CleanContent trims user text and reports whether anything is left
func CleanContent(content string) (string, bool) {
	content = strings.TrimSpace(content)
	return content, content != ""
}

// ExtractHashtags returns the lowercased #tags of content in order of appearance
func ExtractHashtags(content string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(content, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.ToLower(m[1]))
	}
	return tags
}

// NormalizeHashtag strips a leading '#' and lowercases a filter value
func NormalizeHashtag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}
