package models

// Application permissions
const (
	PermissionReadAdmin  = "admin:read"
	PermissionWriteAdmin = "admin:write"

	PermissionCartWrite        = "cart:write"
	PermissionOrderCreate      = "order:create"
	PermissionOrderRead        = "order:read"
	PermissionAddressWrite     = "address:write"
	PermissionKYCSubmit        = "kyc:submit"
	PermissionReviewWrite      = "review:write"
	PermissionSupportWrite     = "support:write"
	PermissionTransactionRead  = "transaction:read"
	PermissionTransactionWrite = "transaction:write"
	PermissionChangePassword   = "user:change-password"
	PermissionProfileWrite     = "user:profile-write"
)

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	customer := []string{
		PermissionCartWrite,
		PermissionOrderCreate,
		PermissionOrderRead,
		PermissionAddressWrite,
		PermissionKYCSubmit,
		PermissionReviewWrite,
		PermissionSupportWrite,
		PermissionTransactionRead,
		PermissionChangePassword,
		PermissionProfileWrite,
	}
	switch role {
	case RoleAdmin:
		return append(customer,
			PermissionTransactionWrite,
			PermissionReadAdmin,
			PermissionWriteAdmin,
		)
	case RoleCustomer:
		return customer
	default:
		return []string{}
	}
}
