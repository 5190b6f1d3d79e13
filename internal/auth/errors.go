package auth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingCredentials indicates the client id and/or secret are not
// configured, so no refresh can be attempted.
var ErrMissingCredentials = errors.New("missing Twitch credentials")

// MissingCredentialsError names which credential fields are absent.
type MissingCredentialsError struct {
	Fields []string
}

func (e *MissingCredentialsError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrMissingCredentials.Error()
	}
	return fmt.Sprintf("missing Twitch %s. Run `ttv config --client-id <ID> --client-secret <SECRET>` first",
		strings.Join(e.Fields, " and "))
}

func (e *MissingCredentialsError) Unwrap() error {
	return ErrMissingCredentials
}
