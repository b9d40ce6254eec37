// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2Params are the argon2id cost parameters encoded into every stored
// credential hash.
type Argon2Params struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

var DefaultArgon2Params = Argon2Params{
	Memory:  64 * 1024,
	Time:    1,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

// Stored hashes outside these bounds are treated as malformed rather than
// derived, so a corrupted row cannot exhaust memory or CPU.
const (
	maxArgon2Memory  = 1 << 20
	maxArgon2Time    = 10
	maxArgon2Threads = 64
	minArgon2Bytes   = 8
	maxArgon2Bytes   = 128
)

var errMalformedHash = errors.New("malformed password hash")

// passwordHash is the decoded form of
// $argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<key>.
type passwordHash struct {
	params Argon2Params
	salt   []byte
	key    []byte
}

func (h passwordHash) String() string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.key),
	)
}

func (h passwordHash) derive(password string) []byte {
	return argon2.IDKey(
		[]byte(password),
		h.salt,
		h.params.Time,
		h.params.Memory,
		h.params.Threads,
		h.params.KeyLen,
	)
}

func HashPassword(password string) (string, error) {
	return HashPasswordWithParams(password, DefaultArgon2Params)
}

func HashPasswordWithParams(password string, params Argon2Params) (string, error) {
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	h := passwordHash{params: params, salt: salt}
	h.key = h.derive(password)

	return h.String(), nil
}

// VerifyPassword reports whether password matches encodedHash. A hash that
// cannot be decoded never matches.
func VerifyPassword(password, encodedHash string) bool {
	h, err := parsePasswordHash(encodedHash)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(h.key, h.derive(password)) == 1
}

var dummyHash = mustHash("no-such-credential")

func mustHash(password string) string {
	h, err := HashPassword(password)
	if err != nil {
		panic(fmt.Sprintf("security: hash dummy credential: %v", err))
	}
	return h
}

// VerifyPasswordTimingSafe runs a full argon2 derivation even when there is
// no stored hash, so unknown emails cost the same as wrong passwords. An
// empty encodedHash never matches.
func VerifyPasswordTimingSafe(password, encodedHash string) bool {
	if encodedHash == "" {
		VerifyPassword(password, dummyHash)
		return false
	}
	return VerifyPassword(password, encodedHash)
}

func parsePasswordHash(encoded string) (passwordHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return passwordHash{}, errMalformedHash
	}

	if parts[1] != "argon2id" {
		return passwordHash{}, fmt.Errorf("%w: algorithm %q", errMalformedHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return passwordHash{}, fmt.Errorf("%w: version %q", errMalformedHash, parts[2])
	}

	var h passwordHash
	if _, err := fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&h.params.Memory,
		&h.params.Time,
		&h.params.Threads,
	); err != nil {
		return passwordHash{}, fmt.Errorf("%w: params: %w", errMalformedHash, err)
	}
	if h.params.Memory == 0 || h.params.Time == 0 || h.params.Threads == 0 {
		return passwordHash{}, fmt.Errorf("%w: zero cost", errMalformedHash)
	}
	if h.params.Memory > maxArgon2Memory || h.params.Time > maxArgon2Time ||
		h.params.Threads > maxArgon2Threads {
		return passwordHash{}, fmt.Errorf("%w: cost out of range", errMalformedHash)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return passwordHash{}, fmt.Errorf("%w: salt: %w", errMalformedHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return passwordHash{}, fmt.Errorf("%w: key: %w", errMalformedHash, err)
	}
	if len(h.key) < minArgon2Bytes || len(h.key) > maxArgon2Bytes {
		return passwordHash{}, fmt.Errorf("%w: key length %d", errMalformedHash, len(h.key))
	}
	if len(h.salt) < minArgon2Bytes || len(h.salt) > maxArgon2Bytes {
		return passwordHash{}, fmt.Errorf("%w: salt length %d", errMalformedHash, len(h.salt))
	}

	//nolint:gosec // G115: key and salt lengths are small
	h.params.KeyLen, h.params.SaltLen = uint32(len(h.key)), uint32(len(h.salt))

	return h, nil
}

// NeedsRehash reports whether encodedHash was produced with cost parameters
// other than params. Malformed hashes always need rehashing.
func NeedsRehash(encodedHash string, params Argon2Params) bool {
	h, err := parsePasswordHash(encodedHash)
	if err != nil {
		return true
	}
	return h.params.Memory != params.Memory ||
		h.params.Time != params.Time ||
		h.params.Threads != params.Threads ||
		h.params.KeyLen != params.KeyLen
}

// CompareSecret compares two shared secrets in constant time, independent of
// their lengths.
func CompareSecret(given, expected string) bool {
	a := sha256.Sum256([]byte(given))
	b := sha256.Sum256([]byte(expected))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
