package http_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "stock-ledger-test"
	testExpMin    = 60
)

// tokenFor genera el header Authorization para un usuario con el rol y la sucursal indicados.
// branchID vacío = usuario no atado a una sucursal.
func tokenFor(t *testing.T, role, branchID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, branchID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	return tokenFor(t, role, "")
}
