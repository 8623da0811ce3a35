// Package fieldcrypt encrypts individual profile fields at rest.
//
// Values are stored as hex(iv) + ":" + hex(ciphertext) using AES-256-CBC
// with PKCS#7 padding and a fresh IV per call, so encrypting the same value
// twice yields different output. Digest provides the deterministic blind
// index used to enforce uniqueness and look values up.
package fieldcrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// DecryptionFailed is returned by Decrypt in place of corrupt values.
const DecryptionFailed = "Decryption failed."

const separator = ":"

type Cipher struct {
	block    cipher.Block
	indexKey []byte
}

// New derives the encryption and index keys from secret.
func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, errors.New("fieldcrypt: empty secret")
	}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("questlog field encryption v1"))
	encKey := make([]byte, 32)
	indexKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, encKey); err != nil {
		return nil, fmt.Errorf("fieldcrypt: derive key: %w", err)
	}
	if _, err := io.ReadFull(kdf, indexKey); err != nil {
		return nil, fmt.Errorf("fieldcrypt: derive index key: %w", err)
	}
	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("fieldcrypt: %w", err)
	}
	return &Cipher{block: block, indexKey: indexKey}, nil
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("fieldcrypt: read iv: %w", err)
	}
	padded := pad([]byte(plaintext))
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out, padded)
	return hex.EncodeToString(iv) + separator + hex.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. An empty value reports ok=false. A value
// without the separator is returned as is, since rows written before
// encryption still hold plaintext. Corrupt values come back as
// DecryptionFailed and are logged.
func (c *Cipher) Decrypt(value string) (plaintext string, ok bool) {
	if value == "" {
		return "", false
	}
	ivHex, dataHex, found := strings.Cut(value, separator)
	if !found {
		return value, true
	}
	out, err := c.decrypt(ivHex, dataHex)
	if err != nil {
		log.Printf("[FieldCrypt] Decryption error: %v", err)
		return DecryptionFailed, true
	}
	return string(out), true
}

// DecryptString is Decrypt for callers that render an empty string for
// absent values.
func (c *Cipher) DecryptString(value string) string {
	s, _ := c.Decrypt(value)
	return s
}

func (c *Cipher) decrypt(ivHex, dataHex string) ([]byte, error) {
	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return nil, fmt.Errorf("decode iv: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("iv length %d", len(iv))
	}
	data, err := hex.DecodeString(dataHex)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext length %d", len(data))
	}
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(out, data)
	return unpad(out)
}

// Digest returns the hex HMAC-SHA256 of the normalized value.
func (c *Cipher) Digest(value string) string {
	mac := hmac.New(sha256.New, c.indexKey)
	mac.Write([]byte(Normalize(value)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Normalize trims and lower-cases a value before it is indexed.
func Normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, error) {
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, errors.New("bad padding")
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, errors.New("bad padding")
		}
	}
	return b[:len(b)-n], nil
}
