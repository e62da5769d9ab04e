package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name string
		pw   string
		want error
	}{
		{"TooShort", "Ab1", ErrPasswordTooShort},
		{"SevenChars", "Abcdef1", ErrPasswordTooShort},
		{"NoLower", "ABCDEFG1", ErrPasswordNoLower},
		{"NoUpper", "abcdefg1", ErrPasswordNoUpper},
		{"NoDigit", "Abcdefgh", ErrPasswordNoDigit},
		{"LengthCheckedFirst", "abc", ErrPasswordTooShort},
		{"ThaiDigitsDoNotCount", "Abcdefg๑", ErrPasswordNoDigit},
		{"Valid", "Secret123", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.pw)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Secret123", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "Secret123", hash)
	require.True(t, CheckPassword(hash, "Secret123"))
	require.False(t, CheckPassword(hash, "secret123"))

	other, err := HashPassword("Secret123", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, hash, other, "hashes must be salted")
}
