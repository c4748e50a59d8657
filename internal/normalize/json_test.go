package normalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_DirectParse(t *testing.T) {
	v, err := JSON(`{"title": "Inventory Tracker", "pages": ["home"]}`)
	require.NoError(t, err)
	assert.Equal(t, "Inventory Tracker", v["title"])
}

func TestJSON_FencedBlock(t *testing.T) {
	in := "Here's the plan:\n```json\n{\"title\": \"Foo\"}\n```"
	v, err := JSON(in)
	require.NoError(t, err)
	assert.Equal(t, "Foo", v["title"])
}

func TestJSON_BraceSubstring(t *testing.T) {
	in := "I think this works: {\"title\": \"Bar\"} hope that helps!"
	v, err := JSON(in)
	require.NoError(t, err)
	assert.Equal(t, "Bar", v["title"])
}

func TestJSON_RepairTrailingCommaAndUnquotedKeys(t *testing.T) {
	in := `{title: "Baz", pages: ["a", "b",],}`
	v, err := JSON(in)
	require.NoError(t, err)
	assert.Equal(t, "Baz", v["title"])
}

func TestJSON_RepairSingleQuotes(t *testing.T) {
	in := `{'title': 'Quux'}`
	v, err := JSON(in)
	require.NoError(t, err)
	assert.Equal(t, "Quux", v["title"])
}

func TestJSON_RepairTruncatedOutput(t *testing.T) {
	in := `{"title": "Trunc", "pages": ["home"`
	v, err := JSON(in)
	require.NoError(t, err)
	assert.Equal(t, "Trunc", v["title"])
}

func TestJSON_FailsWithInvalidPlan(t *testing.T) {
	_, err := JSON("not json in any shape or form")
	require.Error(t, err)
	var invalid *ErrInvalidPlan
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, invalid.Raw, "not json")
}

func TestJSON_IdempotentOnValidInput(t *testing.T) {
	in := `{"title": "Stable", "n": 3}`
	v1, err := JSON(in)
	require.NoError(t, err)
	v2, err := JSON(in)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}
