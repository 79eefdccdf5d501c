package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityText(t *testing.T) {
	cases := []struct {
		body string
		want *string
	}{
		{`{}`, nil},
		{`{"priority":null}`, nil},
		{`{"priority":4}`, strPtr("4")},
		{`{"priority":"2"}`, strPtr("2")},
		{`{"priority":2.5}`, strPtr("2.5")},
		{`{"priority":"high"}`, strPtr("high")},
	}
	for _, tc := range cases {
		var req UpdateBugRequest
		require.NoError(t, json.Unmarshal([]byte(tc.body), &req))
		assert.Equal(t, tc.want, PriorityText(req.Priority), tc.body)
	}
}

func TestDeref(t *testing.T) {
	assert.Equal(t, "", Deref(nil))
	assert.Equal(t, "x", Deref(strPtr("x")))
}

func strPtr(s string) *string { return &s }
