package auth

import (
	"testing"

	"github.com/chemtrade/chemtrade-backend/pkg/config"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "unit-test-secret",
		Issuer:            "chemtrade",
		ExpirationMinutes: 60,
	}
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()

	raw, err := Issue(cfg, "调度员-01", "dispatcher")
	require.NoError(t, err)

	claims, err := Parse(cfg, raw)
	require.NoError(t, err)
	require.Equal(t, "调度员-01", claims.Actor)
	require.Equal(t, "dispatcher", claims.Role)
}

func TestIssueRequiresActor(t *testing.T) {
	_, err := Issue(testJWTConfig(), "  ", "dispatcher")
	require.Error(t, err)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	raw, err := Issue(cfg, "审核员-02", "auditor")
	require.NoError(t, err)

	other := cfg
	other.Secret = "different"
	_, err = Parse(other, raw)
	require.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	raw, err := Issue(cfg, "审核员-02", "auditor")
	require.NoError(t, err)

	other := cfg
	other.Issuer = "someone-else"
	_, err = Parse(other, raw)
	require.Error(t, err)
}
