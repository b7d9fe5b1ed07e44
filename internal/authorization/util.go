// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"github.com/nexus-app/workspace-service/internal/types"
)

const (
	OWNER_RELATION  = "owner"
	ADMIN_RELATION  = "admin"
	MEMBER_RELATION = "member"

	CAN_VIEW_PERMISSION           = "can_view"
	CAN_MANAGE_MEMBERS_PERMISSION = "can_manage_members"
	CAN_MANAGE_BILLING_PERMISSION = "can_manage_billing"
	CAN_DELETE_PERMISSION         = "can_delete"
)

func UserTuple(userId string) string {
	return "user:" + userId
}

func WorkspaceTuple(workspaceId string) string {
	return "workspace:" + workspaceId
}

// RoleRelation maps a workspace role to the relation that stores it.
func RoleRelation(role types.Role) string {
	switch role {
	case types.RoleOwner:
		return OWNER_RELATION
	case types.RoleAdmin:
		return ADMIN_RELATION
	default:
		return MEMBER_RELATION
	}
}
