package service

import "slices"

// RequireOwnerOrRole 请求者是资源所有者，或角色在 allowedRoles 中时放行
func RequireOwnerOrRole(resourceOwnerID, requesterID, requesterRole string, allowedRoles ...string) error {
	if requesterID != "" && requesterID == resourceOwnerID {
		return nil
	}
	if requesterRole != "" && slices.Contains(allowedRoles, requesterRole) {
		return nil
	}
	return ErrForbidden
}
