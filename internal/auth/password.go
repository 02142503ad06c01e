package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Paramètres Argon2id : ~15-20ms par hash
const (
	Argon2Time    = 1
	Argon2Memory  = 32 * 1024 // 32 MB
	Argon2Threads = 4
	Argon2KeyLen  = 32
	Argon2SaltLen = 16

	hashPrefix = "$argon2id$"

	// bornes acceptées à la lecture d'une empreinte stockée
	maxMemory  = 256 * 1024
	maxTime    = 10
	minKeyLen  = 16
	minSaltLen = 8
)

// ErrMalformedHash signale une empreinte stockée illisible (compte corrompu ou ancien format)
var ErrMalformedHash = errors.New("empreinte de mot de passe illisible")

// passwordHash est une empreinte Argon2id décodée
type passwordHash struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

// HashPassword hash un mot de passe avec Argon2id
func HashPassword(password string) (string, error) {
	salt := make([]byte, Argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	h := passwordHash{
		memory:  Argon2Memory,
		time:    Argon2Time,
		threads: Argon2Threads,
		salt:    salt,
	}
	h.key = h.derive(password, Argon2KeyLen)
	return h.encode(), nil
}

func (h passwordHash) derive(password string, keyLen uint32) []byte {
	return argon2.IDKey([]byte(password), h.salt, h.time, h.memory, h.threads, keyLen)
}

// Format: $argon2id$v=19$m=32768,t=1,p=4$salt$hash
func (h passwordHash) encode() string {
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		hashPrefix, argon2.Version, h.memory, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.key))
}

func decodeHash(encoded string) (passwordHash, error) {
	if !IsArgon2Hash(encoded) {
		return passwordHash{}, ErrMalformedHash
	}
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return passwordHash{}, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return passwordHash{}, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	if version != argon2.Version {
		return passwordHash{}, fmt.Errorf("%w: version argon2 %d", ErrMalformedHash, version)
	}

	var h passwordHash
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.memory, &h.time, &h.threads); err != nil {
		return passwordHash{}, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	// argon2.IDKey panique sur t=0 ou p=0
	if h.time < 1 || h.time > maxTime || h.threads < 1 || h.memory < 8*uint32(h.threads) || h.memory > maxMemory {
		return passwordHash{}, fmt.Errorf("%w: paramètres m=%d,t=%d,p=%d", ErrMalformedHash, h.memory, h.time, h.threads)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(h.salt) < minSaltLen {
		return passwordHash{}, fmt.Errorf("%w: sel", ErrMalformedHash)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(h.key) < minKeyLen {
		return passwordHash{}, fmt.Errorf("%w: clé", ErrMalformedHash)
	}
	return h, nil
}

// VerifyPassword compare en temps constant un mot de passe et son hash.
// Une empreinte illisible retourne une erreur qui enveloppe ErrMalformedHash.
func VerifyPassword(password, encodedHash string) (bool, error) {
	h, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}
	other := h.derive(password, uint32(len(h.key)))
	return subtle.ConstantTimeCompare(h.key, other) == 1, nil
}

// NeedsRehash indique si l'empreinte a été produite avec d'autres paramètres que les actuels
func NeedsRehash(encodedHash string) bool {
	h, err := decodeHash(encodedHash)
	if err != nil {
		return true
	}
	return h.memory != Argon2Memory || h.time != Argon2Time || h.threads != Argon2Threads ||
		len(h.key) != Argon2KeyLen || len(h.salt) != Argon2SaltLen
}

func IsArgon2Hash(hash string) bool {
	return strings.HasPrefix(hash, hashPrefix)
}
