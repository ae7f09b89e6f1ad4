package extract

import (
	"strings"
)

// Default placeholder identities substituted when a query mentions no
// principal or host. These keep the targeted-lookup path exercised for
// generic queries against demo data.
const (
	DefaultPlaceholderPrincipal = "HilaryOlivia226@TestCompany.Local"
	DefaultPlaceholderHost      = "DC01.TESTCOMPANY.LOCAL"
)

// principalSuffix marks a token as a user-like identity when no "@" is present.
const principalSuffix = ".local"

// hostSuffixes are the top-level suffixes accepted for fully-qualified host names.
var hostSuffixes = []string{".local", ".com", ".net", ".org"}

// tokenCutset is the punctuation stripped from token edges before matching.
const tokenCutset = ",.;:!?()[]{}\"'"

// glossaryTerms are domain terms ranked ahead of generic keyword tokens when
// they occur as substrings of the query. Order is preserved in the output.
var glossaryTerms = []string{
	"attack", "path", "vulnerability", "cyber", "security", "network",
	"rdp", "access", "admin", "domain", "bloodhound", "kerberos",
	"user", "computer", "group", "password", "hack", "breach", "permission",
	"exploit", "active directory", "windows", "session", "threat",
	"privilege", "escalation", "lateral movement",
}

// stopwords are generic tokens dropped from the keyword list.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "can": {}, "do": {}, "does": {}, "for": {}, "from": {},
	"has": {}, "have": {}, "how": {}, "i": {}, "in": {}, "is": {}, "it": {},
	"me": {}, "my": {}, "of": {}, "on": {}, "or": {}, "show": {}, "that": {},
	"the": {}, "this": {}, "to": {}, "was": {}, "what": {}, "where": {},
	"which": {}, "who": {}, "why": {}, "will": {}, "with": {}, "you": {},
}

// Entities holds the candidate names and keywords extracted from one query.
// All slices preserve first-seen order.
type Entities struct {
	// Principals are user-like identity candidates. Never empty: when no
	// candidate is found the configured placeholder is substituted.
	Principals []string

	// Hosts are machine name candidates. Never empty: when no candidate is
	// found the configured placeholder is substituted.
	Hosts []string

	// Keywords are lowercased, stopword-filtered tokens with glossary terms
	// ranked first. Deduplication is left to downstream consumers.
	Keywords []string

	// PrincipalDefaulted reports that no principal candidate was found and
	// the placeholder was substituted. Routing treats defaulted principals
	// as absent when deciding whether a targeted lookup was requested.
	PrincipalDefaulted bool

	// HostDefaulted reports that no host candidate was found and the
	// placeholder was substituted.
	HostDefaulted bool
}

// Options configures the extractor. The zero value uses the demo placeholders.
type Options struct {
	// PlaceholderPrincipal is substituted when no principal candidate is found.
	PlaceholderPrincipal string

	// PlaceholderHost is substituted when no host candidate is found.
	PlaceholderHost string
}

// withDefaults fills empty option fields with the demo placeholders.
func (o Options) withDefaults() Options {
	if o.PlaceholderPrincipal == "" {
		o.PlaceholderPrincipal = DefaultPlaceholderPrincipal
	}
	if o.PlaceholderHost == "" {
		o.PlaceholderHost = DefaultPlaceholderHost
	}
	return o
}

// Extract runs all heuristics over the query text and returns the extracted
// entities. It never fails; the result is placeholder-filled when the text
// contains no recognizable candidates.
func Extract(text string, opts Options) Entities {
	opts = opts.withDefaults()

	ents := Entities{
		Principals: Principals(text),
		Hosts:      Hosts(text),
		Keywords:   Keywords(text),
	}
	if len(ents.Principals) == 0 {
		ents.Principals = []string{opts.PlaceholderPrincipal}
		ents.PrincipalDefaulted = true
	}
	if len(ents.Hosts) == 0 {
		ents.Hosts = []string{opts.PlaceholderHost}
		ents.HostDefaulted = true
	}
	return ents
}

// Principals returns the user-like identity candidates found in text, without
// placeholder substitution. A token qualifies when it contains "@" or ends in
// the fixed domain suffix, case-insensitive.
func Principals(text string) []string {
	var out []string
	for _, word := range strings.Fields(text) {
		token := strings.Trim(word, tokenCutset)
		if token == "" {
			continue
		}
		if strings.Contains(token, "@") || strings.HasSuffix(strings.ToLower(token), principalSuffix) {
			out = append(out, token)
		}
	}
	return out
}

// Hosts returns the machine name candidates found in text, without placeholder
// substitution. A token qualifies when it is short, all-uppercase and
// alphanumeric (a NetBIOS-style name), or when it has at least two dot
// separators and a known top-level suffix (an FQDN).
func Hosts(text string) []string {
	var out []string
	for _, word := range strings.Fields(text) {
		token := strings.Trim(word, tokenCutset)
		if token == "" {
			continue
		}
		if isShortHostName(token) || isFQDN(token) {
			out = append(out, token)
		}
	}
	return out
}

func isShortHostName(token string) bool {
	if len(token) > 4 || token != strings.ToUpper(token) {
		return false
	}
	for _, r := range token {
		if !isAlnum(r) {
			return false
		}
	}
	return token != ""
}

func isFQDN(token string) bool {
	if strings.Count(token, ".") < 2 {
		return false
	}
	lower := strings.ToLower(token)
	for _, suffix := range hostSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func isAlnum(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// Keywords lowercases the text, strips punctuation, splits on whitespace,
// drops stopwords, and prepends every glossary term found as a substring of
// the query. Glossary terms come first in first-seen order; generic tokens
// follow in query order. No deduplication is performed here.
func Keywords(text string) []string {
	lower := strings.ToLower(text)

	var out []string
	for _, term := range glossaryTerms {
		if strings.Contains(lower, term) {
			out = append(out, term)
		}
	}
	for _, word := range strings.Fields(lower) {
		token := strings.Trim(word, tokenCutset)
		if token == "" {
			continue
		}
		if _, stop := stopwords[token]; stop {
			continue
		}
		out = append(out, token)
	}
	return out
}
