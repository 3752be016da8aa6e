package permissions_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/operatorv1"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/permissions"
)

func TestRestrictedMethods(t *testing.T) {
	allPermissions := permissions.AllPermissionsByMethod()
	for _, method := range operatorv1.Methods() {
		_, ok := allPermissions[method]
		require.True(t, ok, fmt.Sprintf("missing permission for %s", method))
	}
	require.Len(t, allPermissions, len(operatorv1.Methods()))
}

func TestWriteMethodsRequireAuth(t *testing.T) {
	allPermissions := permissions.AllPermissionsByMethod()

	tests := []struct {
		method       string
		requiresAuth bool
	}{
		{"GetBasket", false},
		{"ListTrades", false},
		{"PauseTrading", true},
		{"Bid", true},
		{"Mint", true},
	}
	for _, tt := range tests {
		op := allPermissions[operatorv1.FullMethod(tt.method)]
		require.Equal(t, tt.requiresAuth, op.RequiresAuth(), tt.method)
	}
}

func TestValidatePermissions(t *testing.T) {
	if err := permissions.Validate(); err != nil {
		t.Fatal(err)
	}
}
