package validator

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ValidatorTestSuite struct {
	suite.Suite
}

func (s *ValidatorTestSuite) TestIsValidTokenId() {
	tests := []struct {
		desc       string
		id         string
		expIsValid bool
	}{
		{
			desc:       "too short",
			id:         "ab12",
			expIsValid: false,
		},
		{
			desc:       "valid 32-byte hex",
			id:         "c67e1a33e9ab5d773a4f1cc383bdf4d1b1c778f51a86b6bd9cfd40cf05af1ef2",
			expIsValid: true,
		},
		{
			desc:       "right length, not hex",
			id:         "zz7e1a33e9ab5d773a4f1cc383bdf4d1b1c778f51a86b6bd9cfd40cf05af1ef2",
			expIsValid: false,
		},
	}
	for _, t := range tests {
		s.Equal(t.expIsValid, IsValidTokenId(t.id), t.desc)
	}
}

func (s *ValidatorTestSuite) TestIsValidPubKey() {
	tests := []struct {
		desc       string
		key        string
		expIsValid bool
	}{
		{
			desc:       "x-only 32 bytes",
			key:        "17162c921dc4d2518f9a101db33695df1afb56ab82f5ff3e5da6eec3ca5acc65",
			expIsValid: true,
		},
		{
			desc:       "compressed 33 bytes",
			key:        "0217162c921dc4d2518f9a101db33695df1afb56ab82f5ff3e5da6eec3ca5acc65",
			expIsValid: true,
		},
		{
			desc:       "wrong length",
			key:        "0217162c",
			expIsValid: false,
		},
	}
	for _, t := range tests {
		s.Equal(t.expIsValid, IsValidPubKey(t.key), t.desc)
	}
}

func TestValidatorTestSuite(t *testing.T) {
	suite.Run(t, new(ValidatorTestSuite))
}
