package domain

import (
	"regexp"
	"strings"
)

var (
	horizontalSpaceRe = regexp.MustCompile(`[ \t\f\v\r]+`)
	blankLinesRe      = regexp.MustCompile(`\n{3,}`)
	emailRe           = regexp.MustCompile(`^[A-Za-z0-9._%+\-']+@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}$`)
	phoneCharsRe      = regexp.MustCompile(`^\+?[0-9\-\s().]+$`)
	ntnRe             = regexp.MustCompile(`^\d{7}-\d$`)
	cnicRe            = regexp.MustCompile(`^\d{5}-\d{7}-\d$`)
	strnCharsRe       = regexp.MustCompile(`^[0-9\-]+$`)
)

// CleanWhitespace trims the text, collapses runs of spaces and keeps at most one blank line
func CleanWhitespace(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalSpaceRe.ReplaceAllString(line, " "))
	}
	out := strings.Join(lines, "\n")
	out = blankLinesRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// ValidateEmail checks the address shape
func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return Invalid("%s is not a valid Email Address", email)
	}
	return nil
}

// ValidateMobileNo accepts digits with an optional leading plus and common separators
func ValidateMobileNo(number string) error {
	if number == "" {
		return nil
	}
	if !phoneCharsRe.MatchString(number) {
		return Invalid("Invalid Mobile No %s", number)
	}
	digits := 0
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 7 || digits > 20 {
		return Invalid("Invalid Mobile No %s", number)
	}
	return nil
}

// ValidateTaxIDs checks Pakistani NTN, CNIC and STRN formats when present
func ValidateTaxIDs(ntn, cnic, strn string) error {
	if ntn != "" && !ntnRe.MatchString(ntn) {
		return Invalid("Invalid NTN. NTN must be in the format 1234567-8")
	}
	if cnic != "" && !cnicRe.MatchString(cnic) {
		return Invalid("Invalid CNIC. CNIC must be in the format 12345-1234567-1")
	}
	if strn != "" {
		if !strnCharsRe.MatchString(strn) || len(strings.ReplaceAll(strn, "-", "")) != 13 {
			return Invalid("Invalid STRN. STRN must be 13 digits")
		}
	}
	return nil
}

// JoinNonEmpty joins the non empty parts with sep
func JoinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// CommaAnd formats a list as "a, b and c"
func CommaAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
