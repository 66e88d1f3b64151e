package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSHA256(t *testing.T) {
	t.Parallel()
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		HexEncodeToString(GetSHA256(nil)))
}

func TestSHA256Hex(t *testing.T) {
	t.Parallel()
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		SHA256Hex("abc"))
}
