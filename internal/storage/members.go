// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/nexus-app/workspace-service/internal/db"
	"github.com/nexus-app/workspace-service/internal/types"
)

// GetWorkspaceAccess resolves userID inside workspaceID in a single read.
// A missing workspace yields ErrNotFound, a non member yields an access with an empty role.
func (s *Storage) GetWorkspaceAccess(ctx context.Context, workspaceID, userID string) (*types.WorkspaceAccess, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetWorkspaceAccess")
	defer span.End()

	if !validID(workspaceID) {
		return nil, ErrNotFound
	}

	a := &types.WorkspaceAccess{UserID: userID}

	var stored string
	err := s.db.Statement(ctx).
		Select("w.id", "w.owner_id", "COALESCE(m.role, '')").
		From("workspaces w").
		LeftJoin("workspace_members m ON m.workspace_id = w.id AND m.user_id = ?", userID).
		Where(sq.Eq{"w.id": workspaceID}).
		QueryRowContext(ctx).
		Scan(&a.WorkspaceID, &a.OwnerID, &stored)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve workspace access: %w", err)
	}

	a.Role = types.EffectiveRole(userID, a.OwnerID, types.Role(stored))

	return a, nil
}

func (s *Storage) ListMembers(ctx context.Context, workspaceID string) ([]*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListMembers")
	defer span.End()

	if !validID(workspaceID) {
		return nil, ErrNotFound
	}

	rows, err := s.db.Statement(ctx).
		Select("m.workspace_id", "m.user_id", "m.role", "m.created_at", "w.owner_id").
		From("workspace_members m").
		Join("workspaces w ON w.id = m.workspace_id").
		Where(sq.Eq{"m.workspace_id": workspaceID}).
		OrderBy("m.created_at", "m.user_id").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := make([]*types.Membership, 0)
	for rows.Next() {
		var (
			m       types.Membership
			ownerID string
		)
		if err := rows.Scan(&m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt, &ownerID); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}

		m.Role = types.EffectiveRole(m.UserID, ownerID, m.Role)
		members = append(members, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return members, nil
}

func (s *Storage) GetMember(ctx context.Context, workspaceID, userID string) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetMember")
	defer span.End()

	if !validID(workspaceID) {
		return nil, ErrNotFound
	}

	var (
		m       types.Membership
		ownerID string
	)
	err := s.db.Statement(ctx).
		Select("m.workspace_id", "m.user_id", "m.role", "m.created_at", "w.owner_id").
		From("workspace_members m").
		Join("workspaces w ON w.id = m.workspace_id").
		Where(sq.Eq{"m.workspace_id": workspaceID, "m.user_id": userID}).
		QueryRowContext(ctx).
		Scan(&m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt, &ownerID)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	m.Role = types.EffectiveRole(m.UserID, ownerID, m.Role)

	return &m, nil
}

// AddMember is idempotent: an existing membership is left untouched.
func (s *Storage) AddMember(ctx context.Context, workspaceID, userID string, role types.Role) error {
	ctx, span := s.tracer.Start(ctx, "storage.AddMember")
	defer span.End()

	if !validID(workspaceID) {
		return ErrNotFound
	}

	_, err := s.db.Statement(ctx).
		Insert("workspace_members").
		Columns("workspace_id", "user_id", "role").
		Values(workspaceID, userID, string(role)).
		Suffix("ON CONFLICT (workspace_id, user_id) DO NOTHING").
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to add member: %w", translate(err))
	}

	return nil
}

func (s *Storage) UpdateMemberRole(ctx context.Context, workspaceID, userID string, role types.Role) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateMemberRole")
	defer span.End()

	if !validID(workspaceID) {
		return ErrNotFound
	}

	res, err := s.db.Statement(ctx).
		Update("workspace_members").
		Set("role", string(role)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{
			"workspace_id": workspaceID,
			"user_id":      userID,
		}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}

	return expectAffected(res)
}

func (s *Storage) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.RemoveMember")
	defer span.End()

	if !validID(workspaceID) {
		return ErrNotFound
	}

	res, err := s.db.Statement(ctx).
		Delete("workspace_members").
		Where(sq.Eq{
			"workspace_id": workspaceID,
			"user_id":      userID,
		}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return expectAffected(res)
}
