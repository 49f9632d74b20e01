package auth

import "errors"

var (
	ErrMissingPayload         = errors.New("sign-in returned no payload")
	ErrSignInDispatch         = errors.New("could not start sign-in")
	ErrInvalidIDToken         = errors.New("invalid ID token")
	ErrUnrecognizedCredential = errors.New("unrecognized credential type")
	ErrUnsupportedCredential  = errors.New("unsupported credential")
	ErrBroker                 = errors.New("credential broker failed")
	ErrNoCredential           = errors.New("no stored credential")
)
