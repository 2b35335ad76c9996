package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncrementPageParam(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{
			"increments page",
			"https://www.klook.com/search/?query=seoul&page=2",
			"https://www.klook.com/search/?page=3&query=seoul",
			true,
		},
		{
			"page one to two",
			"https://www.kkday.com/list?page=1",
			"https://www.kkday.com/list?page=2",
			true,
		},
		{
			"no page parameter",
			"https://www.klook.com/search/?query=seoul",
			"",
			false,
		},
		{
			"non-numeric page",
			"https://www.klook.com/search/?page=abc",
			"",
			false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := IncrementPageParam(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, got)
			}
		})
	}
}
