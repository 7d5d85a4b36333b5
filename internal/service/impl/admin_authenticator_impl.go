package impl

import (
	"crypto/rand"
	"crypto/subtle"

	"prioritizacion/internal/domain"

	"golang.org/x/crypto/argon2"
)

type Argon2Params struct {
	Time    uint32 // iterations
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// AdminAuthenticatorImpl holds an argon2id digest of the configured admin
// password; the plain text is dropped after construction.
type AdminAuthenticatorImpl struct {
	params Argon2Params
	salt   []byte
	hash   []byte
}

// NewAdminAuthenticator hashes password. An empty password leaves admin
// login disabled.
func NewAdminAuthenticator(password string) (*AdminAuthenticatorImpl, error) {
	a := &AdminAuthenticatorImpl{
		params: Argon2Params{
			Time:    3,
			Memory:  64 * 1024, // 64 MiB
			Threads: 1,
			KeyLen:  32,
			SaltLen: 16,
		},
	}
	if password == "" {
		return a, nil
	}
	a.salt = make([]byte, a.params.SaltLen)
	if _, err := rand.Read(a.salt); err != nil {
		return nil, err
	}
	a.hash = a.derive(password)
	return a, nil
}

func (a *AdminAuthenticatorImpl) derive(password string) []byte {
	return argon2.IDKey([]byte(password), a.salt, a.params.Time, a.params.Memory, a.params.Threads, a.params.KeyLen)
}

func (a *AdminAuthenticatorImpl) Enabled() bool { return len(a.hash) > 0 }

func (a *AdminAuthenticatorImpl) Authenticate(password string) error {
	if !a.Enabled() {
		return domain.ErrAdminNotConfigured
	}
	if password == "" {
		return domain.ErrAdminWrongPassword
	}
	if subtle.ConstantTimeCompare(a.derive(password), a.hash) != 1 {
		return domain.ErrAdminWrongPassword
	}
	return nil
}
