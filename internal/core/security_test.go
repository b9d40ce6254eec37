// AngelaMos | 2026
// security_test.go

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_UniqueSalt(t *testing.T) {
	first, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	second, err := HashPassword("correct horse battery")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Contains(t, first, "$argon2id$")
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)

	assert.True(t, VerifyPassword("s3cret-password", hash))
	assert.False(t, VerifyPassword("s3cret-passworD", hash))
	assert.False(t, VerifyPassword("", hash))
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	cases := []string{
		"",
		"not-a-hash",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=1$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=0,t=0,p=0$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$",
		"$argon2id$v=19$m=4294967295,t=1,p=255$c3Nzc3Nzc3Nzc3Nzc3Nzcw$a2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2s",
		"$argon2id$v=19$m=65536,t=200000,p=4$c3Nzc3Nzc3Nzc3Nzc3Nzcw$a2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2s",
		"$argon2id$v=19$m=65536,t=1,p=200$c3Nzc3Nzc3Nzc3Nzc3Nzcw$a2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2s",
		"$argon2id$v=19$m=65536,t=1,p=4$c3Nzcw$a2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2s",
		"$argon2id$v=19$m=65536,t=1,p=4$c3Nzc3Nzc3Nzc3Nzc3Nzcw$c3Nzcw",
		"$argon2id$v=19$m=65536,t=1,p=4$c3Nzc3Nzc3Nzc3Nzc3Nzcw$a2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2s",
	}

	for _, c := range cases {
		_, err := parsePasswordHash(c)
		assert.ErrorIs(t, err, errMalformedHash, c)
		assert.NotPanics(t, func() {
			assert.False(t, VerifyPassword("anything", c), c)
		})
	}
}

func TestVerifyPasswordTimingSafe(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)

	assert.True(t, VerifyPasswordTimingSafe("hunter2hunter2", hash))
	assert.False(t, VerifyPasswordTimingSafe("wrong-password", hash))
	assert.False(t, VerifyPasswordTimingSafe("no-such-credential", ""))
}

func TestNeedsRehash(t *testing.T) {
	current, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.False(t, NeedsRehash(current, DefaultArgon2Params))

	weak := DefaultArgon2Params
	weak.Memory = 8 * 1024
	old, err := HashPasswordWithParams("hunter2hunter2", weak)
	require.NoError(t, err)
	assert.True(t, NeedsRehash(old, DefaultArgon2Params))
	assert.True(t, VerifyPassword("hunter2hunter2", old))

	assert.True(t, NeedsRehash("not-a-hash", DefaultArgon2Params))
}

func TestCompareSecret(t *testing.T) {
	assert.True(t, CompareSecret("admin-key", "admin-key"))
	assert.False(t, CompareSecret("admin-key", "admin-kez"))
	assert.False(t, CompareSecret("short", "a-much-longer-secret"))
}
