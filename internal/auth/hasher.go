// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Supported hashing algorithms.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// Cost bounds. For bcrypt the cost is the log2 work factor; for argon2id it
// is the time (iterations) parameter.
const (
	DefaultBcryptCost = 10
	MinBcryptCost     = 10
	MaxBcryptCost     = bcrypt.MaxCost

	DefaultArgon2Time = 1
	MinArgon2Time     = 1
	MaxArgon2Time     = 10
)

// OWASP-recommended argon2id parameters besides time.
const (
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted hash of the password; the salt and cost are
	// embedded in the returned string.
	Hash(password string) (string, error)

	// Verify checks if the password matches the hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or error on invalid hash.
	Verify(password, hash string) (bool, error)

	// NeedsUpgrade returns true if the hash was produced by another
	// algorithm or a lower cost than this hasher is configured for.
	NeedsUpgrade(hash string) bool
}

// dummyHasher is implemented by hashers that can supply a never-matching hash
// with their own cost, used to keep unknown-email logins as slow as real ones.
type dummyHasher interface {
	DummyHash() string
}

// NewPasswordHasher builds the hasher named by algorithm with the given cost.
func NewPasswordHasher(algorithm string, cost int) (PasswordHasher, error) {
	switch algorithm {
	case "", AlgorithmBcrypt:
		return NewBcryptHasher(cost)
	case AlgorithmArgon2id:
		return NewArgon2idHasher(cost)
	default:
		return nil, oops.Code("AUTH_UNKNOWN_ALGORITHM").
			With("algorithm", algorithm).
			Errorf("unsupported password hashing algorithm %q", algorithm)
	}
}

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. Costs below MinBcryptCost are raised
// to it; costs above MaxBcryptCost are rejected.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost > MaxBcryptCost {
		return nil, oops.Code("AUTH_INVALID_COST").
			With("cost", cost).
			Errorf("bcrypt cost must be at most %d", MaxBcryptCost)
	}
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	return &BcryptHasher{cost: cost}, nil
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash produces a bcrypt hash of the password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").With("algorithm", AlgorithmBcrypt).Wrap(err)
	}
	return string(hash), nil
}

// Verify checks if the password matches the hash. Argon2id hashes are
// accepted too so accounts survive an algorithm switch.
func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	return verifyEncoded(password, hash)
}

// NeedsUpgrade reports whether hash is not bcrypt or uses a lower cost.
func (h *BcryptHasher) NeedsUpgrade(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost < h.cost
}

// DummyHash returns a well-formed bcrypt hash at the configured cost that no
// password matches.
func (h *BcryptHasher) DummyHash() string {
	return fmt.Sprintf("$2a$%02d$%s", h.cost, strings.Repeat("A", 53))
}

// Argon2idHasher implements PasswordHasher using argon2id.
type Argon2idHasher struct {
	time uint32
}

// NewArgon2idHasher creates an Argon2idHasher whose cost is the argon2 time
// parameter. Costs below MinArgon2Time are raised to it.
func NewArgon2idHasher(cost int) (*Argon2idHasher, error) {
	if cost > MaxArgon2Time {
		return nil, oops.Code("AUTH_INVALID_COST").
			With("cost", cost).
			Errorf("argon2id time must be at most %d", MaxArgon2Time)
	}
	if cost < MinArgon2Time {
		cost = MinArgon2Time
	}
	return &Argon2idHasher{time: uint32(cost)}, nil //nolint:gosec // bounded above
}

// Hash produces an argon2id hash of the password.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	hash := argon2.IDKey([]byte(password), salt, h.time, argon2Memory, argon2Threads, argon2KeyLen)

	// PHC string format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		h.time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify checks if the password matches the hash. Bcrypt hashes are accepted
// too so accounts survive an algorithm switch.
func (h *Argon2idHasher) Verify(password, hash string) (bool, error) {
	return verifyEncoded(password, hash)
}

// NeedsUpgrade reports whether hash is not argon2id or uses fewer iterations.
func (h *Argon2idHasher) NeedsUpgrade(hash string) bool {
	if !strings.HasPrefix(hash, "$argon2id$") {
		return true
	}
	params, err := parseArgon2id(hash)
	if err != nil {
		return true
	}
	return params.time < h.time
}

// DummyHash returns a well-formed argon2id hash with the configured time
// parameter that no password matches.
func (h *Argon2idHasher) DummyHash() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		argon2.Version, argon2Memory, h.time, argon2Threads)
}

// verifyEncoded dispatches on the hash prefix.
func verifyEncoded(password, hash string) (bool, error) {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		return verifyArgon2id(password, hash)
	case strings.HasPrefix(hash, "$2"):
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, oops.Code("AUTH_INVALID_HASH").With("algorithm", AlgorithmBcrypt).Wrap(err)
	default:
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("unsupported hash algorithm")
	}
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func parseArgon2id(encodedHash string) (*argon2Params, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash format")
	}

	if parts[1] != "argon2id" {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	if threads > 255 {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("threads value %d exceeds uint8 max", threads)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	if len(key) == 0 || len(key) > 1<<30 {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash key length: %d", len(key))
	}

	return &argon2Params{
		memory:  memory,
		time:    time,
		threads: uint8(threads),
		salt:    salt,
		key:     key,
	}, nil
}

func verifyArgon2id(password, encodedHash string) (bool, error) {
	p, err := parseArgon2id(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, uint32(len(p.key))) //nolint:gosec // bounded in parseArgon2id

	return subtle.ConstantTimeCompare(computed, p.key) == 1, nil
}
