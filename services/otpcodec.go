package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
)

// GenerateOTP returns a random numeric code of the given length, generated
// from crypto/rand. Leading zeros are allowed.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be greater than 0")
	}

	var otp strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		otp.WriteByte(byte('0' + n.Int64()))
	}
	return otp.String(), nil
}

// EncodeOTP obscures a code for storage: reverse the string, then base64.
// This is NOT encryption — anyone holding the stored value and knowing the
// scheme can recover the code. It only keeps the plaintext out of casual
// console views of the collection. The wire format is fixed; existing
// records depend on it.
func EncodeOTP(code string) string {
	return base64.StdEncoding.EncodeToString([]byte(reverse(code)))
}

// DecodeOTP inverts EncodeOTP: base64-decode, then reverse.
func DecodeOTP(encoded string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("malformed stored code: %w", err)
	}
	return reverse(string(b)), nil
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
