// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/nexus-app/workspace-service/internal/db"
	"github.com/nexus-app/workspace-service/internal/types"
)

var invitationColumns = []string{"id", "workspace_id", "email", "role", "token", "invited_by", "expires_at", "created_at"}

type scanner interface {
	Scan(...any) error
}

func scanInvitation(row scanner) (*types.Invitation, error) {
	inv := new(types.Invitation)
	err := row.Scan(&inv.ID, &inv.WorkspaceID, &inv.Email, &inv.Role, &inv.Token, &inv.InvitedBy, &inv.ExpiresAt, &inv.CreatedAt)

	return inv, err
}

// UpsertInvitation creates an invitation, or refreshes token, role and expiry
// of the pending invitation for the same email in the same workspace.
func (s *Storage) UpsertInvitation(ctx context.Context, inv *types.Invitation) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpsertInvitation")
	defer span.End()

	if !validID(inv.WorkspaceID) {
		return nil, ErrNotFound
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation ID: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("workspace_invitations").
		Columns("id", "workspace_id", "email", "role", "token", "invited_by", "expires_at").
		Values(id.String(), inv.WorkspaceID, inv.Email, string(inv.Role), inv.Token, inv.InvitedBy, inv.ExpiresAt).
		Suffix(
			"ON CONFLICT (workspace_id, email) DO UPDATE SET " +
				"role = EXCLUDED.role, token = EXCLUDED.token, invited_by = EXCLUDED.invited_by, " +
				"expires_at = EXCLUDED.expires_at, created_at = now() " +
				"RETURNING id, workspace_id, email, role, token, invited_by, expires_at, created_at",
		).
		QueryRowContext(ctx)

	created, err := scanInvitation(row)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to upsert invitation: %w", translate(err))
	}

	return created, nil
}

func (s *Storage) ListInvitations(ctx context.Context, workspaceID string) ([]*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListInvitations")
	defer span.End()

	if !validID(workspaceID) {
		return nil, ErrNotFound
	}

	rows, err := s.db.Statement(ctx).
		Select(invitationColumns...).
		From("workspace_invitations").
		Where(sq.Eq{"workspace_id": workspaceID}).
		OrderBy("created_at DESC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	invitations := make([]*types.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return invitations, nil
}

func (s *Storage) GetInvitationByToken(ctx context.Context, token string) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetInvitationByToken")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(invitationColumns...).
		From("workspace_invitations").
		Where(sq.Eq{"token": token}).
		QueryRowContext(ctx)

	inv, err := scanInvitation(row)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return inv, nil
}

func (s *Storage) DeleteInvitation(ctx context.Context, workspaceID, invitationID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteInvitation")
	defer span.End()

	if !validID(workspaceID) || !validID(invitationID) {
		return ErrNotFound
	}

	res, err := s.db.Statement(ctx).
		Delete("workspace_invitations").
		Where(sq.Eq{"id": invitationID, "workspace_id": workspaceID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}

	return expectAffected(res)
}

// AcceptInvitation consumes the invitation and grants its role to userID atomically.
// The delete runs first so concurrent acceptances of the same token race on
// the row lock and only one of them succeeds. An existing membership is kept as is.
func (s *Storage) AcceptInvitation(ctx context.Context, inv *types.Invitation, userID string) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.AcceptInvitation")
	defer span.End()

	var m *types.Membership

	err := s.db.WithTx(ctx, func(ctx context.Context) error {
		res, err := s.db.Statement(ctx).
			Delete("workspace_invitations").
			Where(sq.Eq{"id": inv.ID, "token": inv.Token}).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to consume invitation: %w", err)
		}

		if err := expectAffected(res); err != nil {
			return err
		}

		if err := s.AddMember(ctx, inv.WorkspaceID, userID, inv.Role); err != nil {
			return err
		}

		m, err = s.GetMember(ctx, inv.WorkspaceID, userID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}
