// Package cryptox implements at-rest encryption of scalar strings and
// JSON-serializable values with AES-256-GCM.
//
// Ciphertexts are text: a fixed marker prefix followed by the standard
// base64 encoding of nonce||sealed. Decrypt recognizes that structure and
// returns any other input unchanged, so rows written before encryption was
// introduced remain readable.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Marker is the structural prefix of every value produced by Encrypt.
const Marker = "enc:v1:"

const (
	keySize   = 32
	nonceSize = 12
)

// keySalt is fixed: every process must derive the same key from the same
// secret or previously written rows become unreadable.
var keySalt = []byte("darktrack/at-rest/v1")

var (
	ErrEmptySecret     = errors.New("encryption secret is empty")
	ErrNotCiphertext   = errors.New("value is not a ciphertext")
	ErrEmptyPlaintext  = errors.New("decryption produced an empty value")
	ErrMalformedCipher = errors.New("malformed ciphertext")
)

// DeriveKey stretches the configured secret into an AES-256 key.
func DeriveKey(secret []byte) []byte {
	return argon2.IDKey(secret, keySalt, 1, 64*1024, 4, keySize)
}

// Cipher encrypts and decrypts field values with a process-wide key.
// It is safe for concurrent use.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher keyed by DeriveKey(secret).
func NewCipher(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	key := DeriveKey([]byte(secret))

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext. The empty string is returned as is.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)

	return Marker + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Anything that does not carry
// the marker, fails to open, or opens to an empty value is returned
// unchanged.
func (c *Cipher) Decrypt(value string) string {
	plaintext, err := c.Open(value)
	if err != nil {
		return value
	}
	return plaintext
}

// Open is the strict form of Decrypt: it reports why a value could not be
// decrypted instead of passing it through.
func (c *Cipher) Open(value string) (string, error) {
	if !IsCiphertext(value) {
		return "", ErrNotCiphertext
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, Marker))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCipher, err)
	}
	if len(data) < nonceSize+c.aead.Overhead() {
		return "", fmt.Errorf("%w: too short", ErrMalformedCipher)
	}

	plaintext, err := c.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", err
	}
	if len(plaintext) == 0 {
		return "", ErrEmptyPlaintext
	}

	return string(plaintext), nil
}

// EncryptObject serializes v to JSON and encrypts the result.
func (c *Cipher) EncryptObject(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return c.Encrypt(string(data))
}

// DecryptObject decrypts value and unmarshals the JSON into v. Legacy
// plaintext JSON is accepted through the same passthrough as Decrypt.
func (c *Cipher) DecryptObject(value string, v any) error {
	return json.Unmarshal([]byte(c.Decrypt(value)), v)
}

// IsCiphertext reports whether value carries the structural marker.
func IsCiphertext(value string) bool {
	return len(value) > len(Marker) && strings.HasPrefix(value, Marker)
}
