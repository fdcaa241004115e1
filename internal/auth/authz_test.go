package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"depotChangeManagement/models"
)

func TestAuthorizer_EmbeddedPolicy(t *testing.T) {
	a, err := NewAuthorizer(nil)
	require.NoError(t, err)

	cases := []struct {
		role models.Role
		obj  string
		act  string
		want bool
	}{
		{models.RoleDispatcher, ObjCodRequest, ActCreate, true},
		{models.RoleDispatcher, ObjCodRequest, ActApproveAny, false},
		{models.RoleDispatcher, ObjContainer, ActConfirmDelivery, true},
		{models.RoleCarrierAdmin, ObjCodRequest, ActApproveAny, true},
		{models.RoleCarrierAdmin, ObjCodRequest, ActCreate, false},
		{models.RoleCarrierAdmin, ObjCodRequest, ActBypassOrg, false},
		{models.RoleCarrierAdmin, ObjContainer, ActConfirmPayment, true},
		{models.RoleCarrierAdmin, ObjContainer, ActCompleteProcessing, false},
		{models.RolePlatformAdmin, ObjCodRequest, ActApproveAny, true},
		{models.RolePlatformAdmin, ObjCodRequest, ActBypassOrg, true},
		{models.RolePlatformAdmin, ObjContainer, ActStartProcessing, true},
		{models.Role("guest"), ObjCodRequest, ActRead, false},
	}
	for _, c := range cases {
		require.Equal(t, c.want, a.Can(c.role, c.obj, c.act), "%s %s %s", c.role, c.obj, c.act)
	}
}

func TestAuthorizer_CustomPolicy(t *testing.T) {
	a, err := NewAuthorizerFromPolicy("p, dispatcher, cod_request, read", nil)
	require.NoError(t, err)
	require.True(t, a.Can(models.RoleDispatcher, ObjCodRequest, ActRead))
	require.False(t, a.Can(models.RoleDispatcher, ObjCodRequest, ActCreate))
}
