package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/kgchat/extract"
)

// TestExtract_PrincipalCandidates verifies the principal heuristics: tokens
// containing "@" or ending in the fixed domain suffix are recognized.
func TestExtract_PrincipalCandidates(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		principals []string
	}{
		{
			name:       "email style identity",
			text:       "What RDP access does alice@corp.local have?",
			principals: []string{"alice@corp.local"},
		},
		{
			name:       "domain suffix without at sign",
			text:       "show sessions for svc-backup.testcompany.local please",
			principals: []string{"svc-backup.testcompany.local"},
		},
		{
			name:       "punctuation is stripped before matching",
			text:       "who is (bob@corp.local)?",
			principals: []string{"bob@corp.local"},
		},
		{
			name:       "multiple candidates preserve order",
			text:       "compare alice@corp.local and bob@corp.local",
			principals: []string{"alice@corp.local", "bob@corp.local"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ents := extract.Extract(tt.text, extract.Options{})
			assert.Equal(t, tt.principals, ents.Principals)
		})
	}
}

// TestExtract_HostCandidates verifies both host heuristics: short uppercase
// alphanumeric tokens and dotted names with a known top-level suffix.
func TestExtract_HostCandidates(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		hosts []string
	}{
		{
			name:  "short uppercase netbios name",
			text:  "can anyone reach DC01 from the guest vlan",
			hosts: []string{"DC01"},
		},
		{
			name:  "fully qualified name",
			text:  "attack path to dc01.testcompany.local",
			hosts: []string{"dc01.testcompany.local"},
		},
		{
			name:  "single dot is not an fqdn",
			text:  "lookup host example.com now",
			hosts: []string{extract.DefaultPlaceholderHost},
		},
		{
			name:  "lowercase short token is not a host",
			text:  "the dev box is fine",
			hosts: []string{extract.DefaultPlaceholderHost},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ents := extract.Extract(tt.text, extract.Options{})
			assert.Equal(t, tt.hosts, ents.Hosts)
		})
	}
}

// TestExtract_PlaceholderSubstitution verifies that queries with no
// principal-like or host-like token receive the fixed placeholders, and that
// repeated extraction over the same input is idempotent.
func TestExtract_PlaceholderSubstitution(t *testing.T) {
	text := "tell me about common threats"

	first := extract.Extract(text, extract.Options{})
	second := extract.Extract(text, extract.Options{})

	require.Equal(t, []string{extract.DefaultPlaceholderPrincipal}, first.Principals)
	require.Equal(t, []string{extract.DefaultPlaceholderHost}, first.Hosts)
	assert.True(t, first.PrincipalDefaulted)
	assert.True(t, first.HostDefaulted)
	assert.Equal(t, first, second)
}

// TestExtract_PlaceholderOverride verifies that configured placeholders
// replace the demo defaults.
func TestExtract_PlaceholderOverride(t *testing.T) {
	ents := extract.Extract("generic question", extract.Options{
		PlaceholderPrincipal: "probe@example.local",
		PlaceholderHost:      "SRV1",
	})

	assert.Equal(t, []string{"probe@example.local"}, ents.Principals)
	assert.Equal(t, []string{"SRV1"}, ents.Hosts)
}

// TestKeywords verifies glossary ranking, stopword filtering, and order
// preservation for the keyword heuristic.
func TestKeywords(t *testing.T) {
	keywords := extract.Keywords("What is the attack path to the domain controller?")

	// Glossary terms found as substrings come first, in glossary order.
	require.GreaterOrEqual(t, len(keywords), 3)
	assert.Equal(t, "attack", keywords[0])
	assert.Equal(t, "path", keywords[1])
	assert.Equal(t, "domain", keywords[2])

	// Stopwords are dropped from the generic tail.
	assert.NotContains(t, keywords, "what")
	assert.NotContains(t, keywords, "the")
	assert.NotContains(t, keywords, "to")

	// Generic tokens keep query order after the glossary block.
	assert.Contains(t, keywords, "controller")
}

// TestKeywords_NoDeduplication verifies that duplicates are kept: glossary
// terms may also appear as generic tokens, deduplication happens downstream.
func TestKeywords_NoDeduplication(t *testing.T) {
	keywords := extract.Keywords("attack attack")

	count := 0
	for _, k := range keywords {
		if k == "attack" {
			count++
		}
	}
	assert.Equal(t, 3, count, "one glossary hit plus two generic tokens")
}
