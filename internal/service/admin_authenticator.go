package service

type AdminAuthenticator interface {
	Enabled() bool
	Authenticate(password string) error
}
