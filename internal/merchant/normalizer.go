// Package merchant canonicalizes free-text merchant descriptors into
// comparable identities. An ordered alias table is consulted first; text
// that matches no alias falls through to structural cleanup.
package merchant

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AliasRule maps any of a set of case-insensitive substring patterns to a
// canonical identity. Rules are evaluated strictly in order and the first
// match wins, so more specific rules must precede general ones.
type AliasRule struct {
	Patterns  []string
	Canonical string
}

// aliasTable folds the textual variations banks emit for common merchants
// into single identities. Order matters: "amazon prime" must be matched
// before the bare "amazon" rule.
var aliasTable = []AliasRule{
	{Patterns: []string{"amazon prime", "amzn prime", "prime video"}, Canonical: "AMAZON PRIME"},
	{Patterns: []string{"amazon", "amzn mktp", "amzn.com"}, Canonical: "AMAZON"},
	{Patterns: []string{"netflix"}, Canonical: "NETFLIX"},
	{Patterns: []string{"spotify"}, Canonical: "SPOTIFY"},
	{Patterns: []string{"apple.com/bill", "apple services", "itunes.com"}, Canonical: "APPLE SERVICES"},
	{Patterns: []string{"disney plus", "disney+", "disneyplus"}, Canonical: "DISNEY+"},
	{Patterns: []string{"youtube premium", "youtubepremium"}, Canonical: "YOUTUBE PREMIUM"},
	{Patterns: []string{"google storage", "google one"}, Canonical: "GOOGLE ONE"},
	{Patterns: []string{"hbo max", "hbomax", "max.com"}, Canonical: "HBO MAX"},
	{Patterns: []string{"hulu"}, Canonical: "HULU"},
	{Patterns: []string{"uber eats", "ubereats"}, Canonical: "UBER EATS"},
	{Patterns: []string{"uber"}, Canonical: "UBER"},
	{Patterns: []string{"dropbox"}, Canonical: "DROPBOX"},
	{Patterns: []string{"adobe"}, Canonical: "ADOBE"},
	{Patterns: []string{"audible"}, Canonical: "AUDIBLE"},
	{Patterns: []string{"nytimes", "ny times", "new york times"}, Canonical: "NEW YORK TIMES"},
	{Patterns: []string{"walmart", "wal-mart", "wm supercenter"}, Canonical: "WALMART"},
	{Patterns: []string{"starbucks"}, Canonical: "STARBUCKS"},
	{Patterns: []string{"mcdonald"}, Canonical: "MCDONALDS"},
}

var (
	// Payment-processor and card-network prefixes banks prepend to the
	// actual merchant text.
	prefixPattern = regexp.MustCompile(`(?i)^(pos |eftpos |visa |mastercard |amex |debit |sq \*|tst\* |paypal \*|pp\*)`)
	// Trailing reference codes: "#1234", phone-number-length digit runs,
	// or any trailing run of 4+ digits.
	refCodePattern = regexp.MustCompile(`(#\d+|\d{7,})\s*$`)
	// Support-line phone numbers with hyphen, dot, or space separators.
	phonePattern = regexp.MustCompile(`\d{3}[-.\s]\d{3}[-.\s]\d{4}\s*$`)
	trailingDigits = regexp.MustCompile(`\s\d{4,}\s*$`)
	specialChars   = regexp.MustCompile(`[*#]+`)
	multiSpace     = regexp.MustCompile(`\s{2,}`)
)

// Canonicalize maps raw merchant text to its comparable identity. Pure and
// deterministic; identical input always yields identical output.
func Canonicalize(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))

	for _, rule := range aliasTable {
		for _, p := range rule.Patterns {
			if strings.Contains(lower, p) {
				return rule.Canonical
			}
		}
	}

	cleaned := prefixPattern.ReplaceAllString(lower, "")
	cleaned = phonePattern.ReplaceAllString(cleaned, "")
	cleaned = refCodePattern.ReplaceAllString(cleaned, "")
	cleaned = trailingDigits.ReplaceAllString(cleaned, "")
	cleaned = specialChars.ReplaceAllString(cleaned, " ")
	cleaned = multiSpace.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		cleaned = lower
	}
	return strings.ToUpper(cleaned)
}

// SameMerchant reports whether two raw descriptors normalize to the same
// identity.
func SameMerchant(a, b string) bool {
	return Canonicalize(a) == Canonicalize(b)
}

// Brand acronyms that must stay fully upper-cased in display names.
var acronyms = map[string]bool{
	"hbo":  true,
	"amc":  true,
	"att":  true,
	"cvs":  true,
	"ibm":  true,
	"kfc":  true,
	"ups":  true,
	"usps": true,
}

// DisplayName formats a canonical identity for presentation: title case for
// words, acronyms and short tokens upper-cased as-is.
func DisplayName(identity string) string {
	caser := cases.Title(language.English)
	words := strings.Fields(strings.ToLower(identity))
	for i, w := range words {
		if len(w) > 2 && !acronyms[w] {
			words[i] = caser.String(w)
		} else {
			words[i] = strings.ToUpper(w)
		}
	}
	return strings.Join(words, " ")
}
