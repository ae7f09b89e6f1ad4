package prompt_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/kgchat/graph"
	"github.com/zero-day-ai/kgchat/prompt"
)

// TestFormatRecords_EmptyInput verifies that an empty record list yields
// exactly the fixed sentinel, never an empty string.
func TestFormatRecords_EmptyInput(t *testing.T) {
	assert.Equal(t, prompt.NoContextSentinel, prompt.FormatRecords(nil))
	assert.Equal(t, prompt.NoContextSentinel, prompt.FormatRecords([]graph.Record{}))
}

// TestFormatRecords_SectionShape verifies name, labels, description and
// humanized relationship lines for a full record.
func TestFormatRecords_SectionShape(t *testing.T) {
	records := []graph.Record{
		{
			"name":        "ALICE@CORP.LOCAL",
			"labels":      []any{"User", "Base"},
			"description": "service desk analyst",
			"relationships": []any{
				map[string]any{"type": "MEMBER_OF", "name": "IT ADMINS", "description": "it staff"},
				map[string]any{"type": "CanRDP", "name": "DC01"},
			},
		},
	}

	out := prompt.FormatRecords(records)

	assert.Contains(t, out, "Entity 1: ALICE@CORP.LOCAL")
	assert.Contains(t, out, "Type: User, Base")
	assert.Contains(t, out, "Description: service desk analyst")
	assert.Contains(t, out, "- Member Of: IT ADMINS (it staff)")
	assert.Contains(t, out, "- Canrdp: DC01")
	assert.NotContains(t, out, "- Canrdp: DC01 (")
}

// TestFormatRecords_OrderFollowsInput verifies deterministic section ordering.
func TestFormatRecords_OrderFollowsInput(t *testing.T) {
	records := []graph.Record{
		{"computer": "DC01"},
		{"computer": "FILE01"},
	}

	out := prompt.FormatRecords(records)

	first := strings.Index(out, "Entity 1: DC01")
	second := strings.Index(out, "Entity 2: FILE01")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)
}

// TestFormatRecords_RDPRecords verifies one section per computer record, the
// shape produced by the targeted RDP access lookup.
func TestFormatRecords_RDPRecords(t *testing.T) {
	records := []graph.Record{
		{"computer": "WS05.TESTCOMPANY.LOCAL"},
	}

	out := prompt.FormatRecords(records)

	assert.Contains(t, out, "Entity 1: WS05.TESTCOMPANY.LOCAL")
	assert.Contains(t, out, "Type: Unknown")
}
