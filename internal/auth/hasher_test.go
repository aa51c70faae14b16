// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/holomush/msgboard/internal/auth"
	"github.com/holomush/msgboard/pkg/errutil"
)

func newHashers(t *testing.T) map[string]auth.PasswordHasher {
	t.Helper()
	b, err := auth.NewBcryptHasher(auth.MinBcryptCost)
	require.NoError(t, err)
	a, err := auth.NewArgon2idHasher(auth.DefaultArgon2Time)
	require.NoError(t, err)
	return map[string]auth.PasswordHasher{
		auth.AlgorithmBcrypt:   b,
		auth.AlgorithmArgon2id: a,
	}
}

func TestHashPassword(t *testing.T) {
	for name, hasher := range newHashers(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("hash differs from plaintext", func(t *testing.T) {
				hash, err := hasher.Hash("password123")
				require.NoError(t, err)
				assert.NotEqual(t, "password123", hash)
				assert.NotContains(t, hash, "password123")
			})

			t.Run("same password produces different hashes (salt)", func(t *testing.T) {
				hash1, err := hasher.Hash("samepassword")
				require.NoError(t, err)
				hash2, err := hasher.Hash("samepassword")
				require.NoError(t, err)
				assert.NotEqual(t, hash1, hash2)
			})

			t.Run("rejects empty password", func(t *testing.T) {
				_, err := hasher.Hash("")
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "AUTH_EMPTY_PASSWORD")
			})
		})
	}
}

func TestHashPrefixes(t *testing.T) {
	hashers := newHashers(t)

	bh, err := hashers[auth.AlgorithmBcrypt].Hash("secret1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(bh, "$2a$10$"), bh)

	ah, err := hashers[auth.AlgorithmArgon2id].Hash("secret1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ah, "$argon2id$v=19$m=65536,t=1,p=4$"), ah)
}

func TestVerifyPassword(t *testing.T) {
	for name, hasher := range newHashers(t) {
		t.Run(name, func(t *testing.T) {
			hash, err := hasher.Hash("correctpassword")
			require.NoError(t, err)

			t.Run("correct password verifies", func(t *testing.T) {
				ok, err := hasher.Verify("correctpassword", hash)
				require.NoError(t, err)
				assert.True(t, ok)
			})

			t.Run("incorrect password fails", func(t *testing.T) {
				ok, err := hasher.Verify("wrongpassword", hash)
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("invalid hash format returns error", func(t *testing.T) {
				_, err := hasher.Verify("password", "not-a-valid-hash")
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "AUTH_INVALID_HASH")
			})
		})
	}
}

func TestVerifyAcrossAlgorithms(t *testing.T) {
	hashers := newHashers(t)
	bcryptHasher := hashers[auth.AlgorithmBcrypt]
	argonHasher := hashers[auth.AlgorithmArgon2id]

	bh, err := bcryptHasher.Hash("crossover")
	require.NoError(t, err)
	ah, err := argonHasher.Hash("crossover")
	require.NoError(t, err)

	ok, err := argonHasher.Verify("crossover", bh)
	require.NoError(t, err)
	assert.True(t, ok, "argon2id hasher accepts bcrypt hashes")

	ok, err = bcryptHasher.Verify("crossover", ah)
	require.NoError(t, err)
	assert.True(t, ok, "bcrypt hasher accepts argon2id hashes")
}

func TestVerifyMalformedArgon2id(t *testing.T) {
	hasher, err := auth.NewArgon2idHasher(1)
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		contains string
	}{
		{name: "wrong algorithm", hash: "$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA", contains: "unsupported hash algorithm"},
		{name: "invalid version format", hash: "$argon2id$vXX$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{name: "invalid parameters format", hash: "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{name: "invalid salt base64", hash: "$argon2id$v=19$m=65536,t=1,p=4$!!!invalid!!!$aGFzaA"},
		{name: "invalid hash base64", hash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!invalid!!!"},
		{name: "threads overflow", hash: "$argon2id$v=19$m=65536,t=1,p=256$c2FsdA$aGFzaA", contains: "threads value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hasher.Verify("password", tt.hash)
			require.Error(t, err)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestBcryptHasherCost(t *testing.T) {
	t.Run("raises low cost to minimum", func(t *testing.T) {
		h, err := auth.NewBcryptHasher(4)
		require.NoError(t, err)
		assert.Equal(t, auth.MinBcryptCost, h.Cost())

		hash, err := h.Hash("secret1")
		require.NoError(t, err)
		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, auth.MinBcryptCost, cost)
	})

	t.Run("rejects cost above maximum", func(t *testing.T) {
		_, err := auth.NewBcryptHasher(auth.MaxBcryptCost + 1)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_COST")
	})

	t.Run("keeps configured cost", func(t *testing.T) {
		h, err := auth.NewBcryptHasher(11)
		require.NoError(t, err)
		assert.Equal(t, 11, h.Cost())
	})
}

func TestNeedsUpgrade(t *testing.T) {
	low, err := auth.NewBcryptHasher(10)
	require.NoError(t, err)
	high, err := auth.NewBcryptHasher(11)
	require.NoError(t, err)
	argon, err := auth.NewArgon2idHasher(1)
	require.NoError(t, err)
	argonHigher, err := auth.NewArgon2idHasher(2)
	require.NoError(t, err)

	lowHash, err := low.Hash("password")
	require.NoError(t, err)
	argonHash, err := argon.Hash("password")
	require.NoError(t, err)

	assert.False(t, low.NeedsUpgrade(lowHash))
	assert.True(t, high.NeedsUpgrade(lowHash), "lower bcrypt cost")
	assert.True(t, low.NeedsUpgrade(argonHash), "different algorithm")
	assert.True(t, argon.NeedsUpgrade(lowHash), "different algorithm")
	assert.False(t, argon.NeedsUpgrade(argonHash))
	assert.True(t, argonHigher.NeedsUpgrade(argonHash), "fewer iterations")
	assert.True(t, low.NeedsUpgrade("garbage"))
}

func TestDummyHashNeverMatches(t *testing.T) {
	b, err := auth.NewBcryptHasher(10)
	require.NoError(t, err)
	a, err := auth.NewArgon2idHasher(1)
	require.NoError(t, err)

	for name, h := range map[string]interface {
		auth.PasswordHasher
		DummyHash() string
	}{"bcrypt": b, "argon2id": a} {
		t.Run(name, func(t *testing.T) {
			ok, err := h.Verify("anything", h.DummyHash())
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestNewPasswordHasher(t *testing.T) {
	h, err := auth.NewPasswordHasher("", 0)
	require.NoError(t, err)
	assert.IsType(t, &auth.BcryptHasher{}, h)

	h, err = auth.NewPasswordHasher(auth.AlgorithmArgon2id, 2)
	require.NoError(t, err)
	assert.IsType(t, &auth.Argon2idHasher{}, h)

	_, err = auth.NewPasswordHasher("md5", 1)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_UNKNOWN_ALGORITHM")
}
