package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// HexEncodeToString takes in a hexadecimal byte array and returns a string
func HexEncodeToString(input []byte) string {
	return hex.EncodeToString(input)
}

// GetSHA256 returns a SHA256 hash of a byte array
func GetSHA256(input []byte) []byte {
	sha := sha256.New()
	sha.Write(input)
	return sha.Sum(nil)
}

// SHA256Hex returns the lower case hex encoded SHA256 digest of a string
func SHA256Hex(input string) string {
	return HexEncodeToString(GetSHA256([]byte(input)))
}
