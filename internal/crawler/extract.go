package crawler

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/alvmarrod/lead-weaver/internal/storage"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnknownCompany is the company name used when none can be inferred
const UnknownCompany = "Unknown"

var emailPattern = regexp.MustCompile(`(?i)[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)

// Placeholder domains and image filenames that look like addresses
var rejectedSuffixes = []string{"example.com", ".png", ".jpg", ".jpeg"}

// Generic mailbox hosts that say nothing about the company
var ignoredCompanyNames = map[string]bool{
	"icon":     true,
	"applynow": true,
	"info":     true,
	"mail":     true,
	"contact":  true,
	"support":  true,
}

// ExtractEmails returns the distinct email addresses found in text, in order
// of first appearance, without placeholder and image-filename matches.
func ExtractEmails(text string) []string {
	matches := emailPattern.FindAllString(text, -1)

	seen := make(map[string]bool, len(matches))
	emails := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true

		if isRejected(m) {
			continue
		}
		emails = append(emails, m)
	}
	return emails
}

// isRejected matches suffixes exactly as written; JANE@EXAMPLE.COM is kept.
func isRejected(email string) bool {
	for _, suffix := range rejectedSuffixes {
		if strings.HasSuffix(email, suffix) {
			return true
		}
	}
	return false
}

// CompanyName infers a company name from an email domain using its first label.
// Generic labels and labels shorter than three characters give UnknownCompany.
func CompanyName(domain string) string {
	name, _, _ := strings.Cut(domain, ".")
	if ignoredCompanyNames[strings.ToLower(name)] || len(name) < 3 {
		return UnknownCompany
	}
	return capitalize(name)
}

// capitalize upper-cases the first rune and lower-cases the rest, so
// acme-corp becomes Acme-corp.
func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(string(first)) + cases.Lower(language.Und).String(s[size:])
}

// NewLead builds the lead record for an email found on pageURL
func NewLead(email, pageURL string) storage.Lead {
	user, domain, _ := strings.Cut(email, "@")
	return storage.Lead{
		Email:       email,
		CompanyName: CompanyName(domain),
		URL:         pageURL,
		User:        user,
	}
}
