// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"fmt"
	"strings"
)

// Role is totally ordered: member < admin < owner.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

var roleRank = map[Role]int{
	RoleMember: 1,
	RoleAdmin:  2,
	RoleOwner:  3,
}

// Rank returns 0 for unknown roles, so they never satisfy any requirement.
func (r Role) Rank() int {
	return roleRank[r]
}

func (r Role) AtLeast(min Role) bool {
	return r.Rank() > 0 && r.Rank() >= min.Rank()
}

func (r Role) Valid() bool {
	return r.Rank() > 0
}

// Assignable reports whether the role can be stored on a membership or an invitation.
// Ownership is derived from the workspace and is never granted this way.
func (r Role) Assignable() bool {
	return r == RoleMember || r == RoleAdmin
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}

	return r, nil
}

// EffectiveRole promotes the workspace owner to RoleOwner.
func EffectiveRole(userID, ownerID string, stored Role) Role {
	if userID != "" && userID == ownerID {
		return RoleOwner
	}

	return stored
}
