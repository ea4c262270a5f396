package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookRequestYear(t *testing.T) {
	cases := []struct {
		body string
		want *int
	}{
		{body: `{"publicationYear": 1965}`, want: intPtr(1965)},
		{body: `{"publicationYear": "1965"}`, want: intPtr(1965)},
		{body: `{"publishYear": 2001}`, want: intPtr(2001)},
		{body: `{"title": "x"}`, want: nil},
	}

	for _, tc := range cases {
		var req BookRequest
		require.NoError(t, json.Unmarshal([]byte(tc.body), &req), tc.body)
		assert.Equal(t, tc.want, req.Year(), tc.body)
	}
}

func TestBookRequestRejectsBadYear(t *testing.T) {
	var req BookRequest
	assert.Error(t, json.Unmarshal([]byte(`{"publicationYear": "nineteen"}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"publicationYear": 19.5}`), &req))
}

func intPtr(v int) *int { return &v }
