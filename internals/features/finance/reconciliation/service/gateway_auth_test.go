package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gabkutschola_backend/internals/features/finance/reconciliation/service"
)

func TestGatewayCredentialsPlaintext(t *testing.T) {
	creds := service.GatewayCredentials{
		MerchantID:   "MERCHANT-001",
		SharedSecret: "s3cret",
	}

	assert.NoError(t, creds.Verify("MERCHANT-001", "s3cret"))
	assert.ErrorIs(t, creds.Verify("MERCHANT-001", "nope"), service.ErrAuthentication)
	assert.ErrorIs(t, creds.Verify("MERCHANT-002", "s3cret"), service.ErrAuthentication)
	assert.ErrorIs(t, creds.Verify("", ""), service.ErrAuthentication)
}

func TestGatewayCredentialsHashWinsOverPlaintext(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	creds := service.GatewayCredentials{
		MerchantID:       "MERCHANT-001",
		SharedSecret:     "plaintext-secret",
		SharedSecretHash: string(hash),
	}

	assert.NoError(t, creds.Verify("MERCHANT-001", "hashed-secret"))
	// With a hash configured the plaintext secret is dead weight.
	assert.ErrorIs(t, creds.Verify("MERCHANT-001", "plaintext-secret"), service.ErrAuthentication)
}

func TestGatewayCredentialsFailClosedWhenUnconfigured(t *testing.T) {
	assert.ErrorIs(t, service.GatewayCredentials{}.Verify("any", "any"),
		service.ErrAuthentication)
	assert.ErrorIs(t,
		service.GatewayCredentials{MerchantID: "MERCHANT-001"}.Verify("MERCHANT-001", ""),
		service.ErrAuthentication)
}
