// Package cryptox hashes and verifies account passwords.
//
// Hashes are argon2 PHC strings
//
//	$argon2id$v=19$m=65536,t=2,p=1$<salt>$<key>
//
// stored in a fixed-width HashBlob and right-padded with NUL bytes. The PHC
// alphabet never contains NUL, so the first NUL terminates the encoding and
// everything after it must be filler.
package cryptox

import (
	"bytes"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
)

// HashBlobSize is the storage width of every password hash.
const HashBlobSize = 128

// AdminHash is the credential of the built-in super-user. It never goes
// through GenerateHash and is never stored in the user file.
const AdminHash = "$argon2id$v=19$m=65536,t=2,p=1$87QhHEdG3qxCvRi8AsnU+A$NvDD5SYOmNvDBJGXFmIWrbScvE8snKtjhwH086opcpo"

const (
	variantID = "argon2id"
	variantI  = "argon2i"

	saltLen = 16

	// Upper bounds applied when decoding, so a corrupted record cannot make
	// verification allocate gigabytes.
	maxMemoryKiB = 256 * 1024
	maxTime      = 16
	minKeyLen    = 16
	maxKeyLen    = 64
)

var (
	ErrEncodedTooLong = errors.New("encoded hash does not fit the hash blob")
	ErrMalformedHash  = errors.New("malformed password hash")
)

var b64 = base64.RawStdEncoding.Strict()

// Params are the argon2 cost parameters.
type Params struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	KeyLen  uint32
}

// DefaultParams match the super-user hash.
var DefaultParams = Params{Memory: 64 * 1024, Time: 2, Threads: 1, KeyLen: 32}

// HashBlob is a NUL-padded PHC string. encoding/json renders it as an array
// of HashBlobSize numbers, which is the on-disk format of the user file.
type HashBlob [HashBlobSize]byte

// GenerateHash derives an argon2id hash of password with a fresh random salt.
func GenerateHash(password []byte) (HashBlob, error) {
	return generateHash(password, DefaultParams)
}

func generateHash(password []byte, p Params) (HashBlob, error) {
	return hashWithSalt(password, common.GenerateRandByteArray(saltLen), p)
}

func hashWithSalt(password, salt []byte, p Params) (HashBlob, error) {
	key := argon2.IDKey(password, salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	encoded := fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		variantID, argon2.Version, p.Memory, p.Time, p.Threads,
		b64.EncodeToString(salt), b64.EncodeToString(key))
	return PadHash(encoded)
}

// PadHash stores an encoded PHC string in a HashBlob.
func PadHash(encoded string) (HashBlob, error) {
	var blob HashBlob
	if len(encoded) > HashBlobSize {
		return blob, ErrEncodedTooLong
	}
	if strings.IndexByte(encoded, 0) >= 0 {
		return blob, ErrMalformedHash
	}
	copy(blob[:], encoded)
	return blob, nil
}

// AdminBlob returns AdminHash in its stored form.
func AdminBlob() HashBlob {
	blob, err := PadHash(AdminHash)
	if err != nil {
		panic(err)
	}
	return blob
}

// Encoded returns the PHC string without filler, or "" when the filler is
// not all NUL bytes.
func (b HashBlob) Encoded() string {
	n := bytes.IndexByte(b[:], 0)
	if n < 0 {
		return string(b[:])
	}
	for _, c := range b[n:] {
		if c != 0 {
			return ""
		}
	}
	return string(b[:n])
}

// Valid reports whether b holds a decodable argon2 hash.
func (b HashBlob) Valid() bool {
	_, err := decode(b.Encoded())
	return err == nil
}

// UnmarshalJSON rejects arrays of the wrong width instead of silently
// truncating or zero-filling them.
func (b *HashBlob) UnmarshalJSON(data []byte) error {
	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return err
	}
	if len(nums) != HashBlobSize {
		return fmt.Errorf("hash blob: want %d bytes, got %d", HashBlobSize, len(nums))
	}
	for i, n := range nums {
		if n < 0 || n > 255 {
			return fmt.Errorf("hash blob: byte %d out of range: %d", i, n)
		}
		b[i] = byte(n)
	}
	return nil
}

// VerifyHash reports whether candidate matches stored. Malformed blobs
// yield false.
func VerifyHash(stored HashBlob, candidate []byte) bool {
	d, err := decode(stored.Encoded())
	if err != nil {
		return false
	}

	var key []byte
	switch d.variant {
	case variantID:
		key = argon2.IDKey(candidate, d.salt, d.params.Time, d.params.Memory, d.params.Threads, d.params.KeyLen)
	case variantI:
		key = argon2.Key(candidate, d.salt, d.params.Time, d.params.Memory, d.params.Threads, d.params.KeyLen)
	default:
		return false
	}
	return subtle.ConstantTimeCompare(key, d.key) == 1
}

type decoded struct {
	variant string
	params  Params
	salt    []byte
	key     []byte
}

func decode(encoded string) (decoded, error) {
	var d decoded

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return d, ErrMalformedHash
	}

	d.variant = parts[1]
	if d.variant != variantID && d.variant != variantI {
		return d, ErrMalformedHash
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return d, ErrMalformedHash
	}

	var m, t, p uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return d, ErrMalformedHash
	}
	// Only the canonical rendering is accepted, so every distinct string
	// maps to distinct parameters.
	if parts[3] != fmt.Sprintf("m=%d,t=%d,p=%d", m, t, p) {
		return d, ErrMalformedHash
	}
	if m == 0 || m > maxMemoryKiB || t == 0 || t > maxTime || p == 0 || p > 255 {
		return d, ErrMalformedHash
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return d, ErrMalformedHash
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) < minKeyLen || len(key) > maxKeyLen {
		return d, ErrMalformedHash
	}

	d.params = Params{Memory: m, Time: t, Threads: uint8(p), KeyLen: uint32(len(key))}
	d.salt = salt
	d.key = key
	return d, nil
}
