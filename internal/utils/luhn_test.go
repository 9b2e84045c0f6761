package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCardNumber(t *testing.T) {
	assert.Equal(t, "4532015112830366", NormalizeCardNumber("4532 0151 1283 0366"))
	assert.Equal(t, "4532015112830366", NormalizeCardNumber("4532-0151-1283-0366"))
	assert.Equal(t, "", NormalizeCardNumber("no digits here"))
}

func TestLuhnValid(t *testing.T) {
	cases := []struct {
		number string
		valid  bool
	}{
		{"4532015112830366", true},
		{"4532015112830367", false}, // checksum fails
		{"453201511283036", false},  // 15 digits
		{"4111111111111111", true},
		{"79927398713", true},
		{"79927398710", false},
		{"", false},
		{"453201511283036a", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.valid, LuhnValid(tc.number), "number %q", tc.number)
	}
}
