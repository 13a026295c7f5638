package service

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrAuthentication: the caller is not our gateway. Fail closed, no side
// effects, no event log row.
var ErrAuthentication = errors.New("gateway authentication failed")

/* GatewayCredentials holds what the gateway must present on every
   callback. SharedSecretHash (bcrypt) wins over the plaintext secret
   when both are configured, so production can avoid a plaintext secret
   at rest. */

type GatewayCredentials struct {
	MerchantID       string
	SharedSecret     string
	SharedSecretHash string
}

func (g GatewayCredentials) Verify(merchantID, sharedSecret string) error {
	if g.MerchantID == "" || (g.SharedSecret == "" && g.SharedSecretHash == "") {
		return ErrAuthentication
	}
	if subtle.ConstantTimeCompare([]byte(merchantID), []byte(g.MerchantID)) != 1 {
		return ErrAuthentication
	}

	if g.SharedSecretHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(g.SharedSecretHash), []byte(sharedSecret)) != nil {
			return ErrAuthentication
		}
		return nil
	}

	if subtle.ConstantTimeCompare([]byte(sharedSecret), []byte(g.SharedSecret)) != 1 {
		return ErrAuthentication
	}
	return nil
}
