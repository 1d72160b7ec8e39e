package builder

import (
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`[\t\r\n ]+`)
	keyPattern   = regexp.MustCompile(`[^a-z0-9_\-]`)
)

// SanitizeKey lowercases s and drops everything but letters, digits,
// underscores and dashes. Slugs pass through it before use.
func SanitizeKey(s string) string {
	return keyPattern.ReplaceAllString(strings.ToLower(s), "")
}

// SanitizeField cleans a submitted value according to its field type.
func SanitizeField(value, typ string) string {
	switch typ {
	case "email":
		addr, err := mail.ParseAddress(strings.TrimSpace(value))
		if err != nil {
			return ""
		}
		return addr.Address
	case "url":
		u, err := url.Parse(strings.TrimSpace(value))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return ""
		}
		return u.String()
	case "number":
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return "0"
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case "checkbox":
		if value == "" || value == "0" || value == "false" {
			return "0"
		}
		return "1"
	case "textarea":
		lines := strings.Split(tagPattern.ReplaceAllString(value, ""), "\n")
		for i, l := range lines {
			lines[i] = strings.TrimSpace(l)
		}
		return strings.TrimSpace(strings.Join(lines, "\n"))
	default:
		return strings.TrimSpace(spacePattern.ReplaceAllString(tagPattern.ReplaceAllString(value, ""), " "))
	}
}

// defaultFieldType guesses a form field's type from its name.
func defaultFieldType(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "email"):
		return "email"
	case strings.Contains(lower, "message"):
		return "textarea"
	default:
		return "text"
	}
}
