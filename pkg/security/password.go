package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/hngo-dev/meshmart-backend/pkg/config"
)

// ErrInvalidHash signals a malformed Argon2id hash string.
var ErrInvalidHash = fmt.Errorf("invalid argon2id hash")

// hashParams are the Argon2id cost parameters. They are embedded into every
// hash string, so hashes minted under old settings keep verifying after the
// configured defaults change.
type hashParams struct {
	memory      uint32
	time        uint32
	parallelism uint8
	saltLen     uint32
	keyLen      uint32
}

func paramsFrom(cfg config.PasswordConfig) hashParams {
	return hashParams{
		memory:      uint32(bound(cfg.ArgonMemoryKB, 8, 512*1024)),
		time:        uint32(bound(cfg.ArgonTime, 1, 10)),
		parallelism: uint8(bound(cfg.ArgonParallelism, 1, 255)),
		saltLen:     uint32(bound(cfg.ArgonSaltLen, 8, 64)),
		keyLen:      uint32(bound(cfg.ArgonKeyLen, 16, 64)),
	}
}

func bound(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// HashPassword returns a PHC-formatted Argon2id hash with a fresh salt.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	p := paramsFrom(cfg)
	salt := make([]byte, p.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.parallelism, p.keyLen)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		p.memory, p.time, p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword reports whether password matches the encoded hash, using the
// cost parameters carried in the hash itself.
func VerifyPassword(password, encoded string) (bool, error) {
	p, salt, key, err := parseHash(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.parallelism, p.keyLen)
	return subtle.ConstantTimeCompare(key, computed) == 1, nil
}

func parseHash(encoded string) (hashParams, []byte, []byte, error) {
	fail := func() (hashParams, []byte, []byte, error) {
		return hashParams{}, nil, nil, ErrInvalidHash
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return fail()
	}

	var p hashParams
	for _, field := range strings.Split(parts[3], ",") {
		name, raw, found := strings.Cut(field, "=")
		if !found {
			return fail()
		}
		value, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return fail()
		}
		switch name {
		case "m":
			p.memory = uint32(value)
		case "t":
			p.time = uint32(value)
		case "p":
			if value > 255 {
				return fail()
			}
			p.parallelism = uint8(value)
		}
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fail()
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fail()
	}

	p.saltLen = uint32(len(salt))
	p.keyLen = uint32(len(key))
	return p, salt, key, nil
}
