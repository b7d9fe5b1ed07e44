// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/nexus-app/workspace-service/internal/db"
	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/internal/types"
)

var _ StorageInterface = (*Storage)(nil)

var workspaceColumns = []string{"w.id", "w.name", "w.owner_id", "w.created_at", "w.updated_at"}

type Storage struct {
	db db.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func NewStorage(c db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Storage {
	s := new(Storage)

	s.db = c

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}

// validID rejects identifiers that cannot be a row key, so lookups with
// malformed ids behave like lookups of missing rows.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// CreateWorkspace inserts the workspace and the owner's membership in one transaction.
func (s *Storage) CreateWorkspace(ctx context.Context, w *types.Workspace) (*types.Workspace, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateWorkspace")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate workspace ID: %w", err)
	}

	created := new(types.Workspace)

	err = s.db.WithTx(ctx, func(ctx context.Context) error {
		err := s.db.Statement(ctx).
			Insert("workspaces").
			Columns("id", "name", "owner_id").
			Values(id.String(), w.Name, w.OwnerID).
			Suffix("RETURNING id, name, owner_id, created_at, updated_at").
			QueryRowContext(ctx).
			Scan(&created.ID, &created.Name, &created.OwnerID, &created.CreatedAt, &created.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert workspace: %w", translate(err))
		}

		_, err = s.db.Statement(ctx).
			Insert("workspace_members").
			Columns("workspace_id", "user_id", "role").
			Values(created.ID, created.OwnerID, string(types.RoleAdmin)).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to add workspace owner: %w", translate(err))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *Storage) GetWorkspace(ctx context.Context, id string) (*types.Workspace, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetWorkspace")
	defer span.End()

	if !validID(id) {
		return nil, ErrNotFound
	}

	var w types.Workspace
	err := s.db.Statement(ctx).
		Select(workspaceColumns...).
		From("workspaces w").
		Where(sq.Eq{"w.id": id}).
		QueryRowContext(ctx).
		Scan(&w.ID, &w.Name, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	return &w, nil
}

// ListWorkspacesByUserID returns the workspaces userID belongs to, with the caller's effective role.
func (s *Storage) ListWorkspacesByUserID(ctx context.Context, userID string) ([]*types.WorkspaceWithRole, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListWorkspacesByUserID")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select(append(workspaceColumns, "m.role")...).
		From("workspaces w").
		Join("workspace_members m ON m.workspace_id = w.id").
		Where(sq.Eq{"m.user_id": userID}).
		OrderBy("w.created_at", "w.id").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	workspaces := make([]*types.WorkspaceWithRole, 0)
	for rows.Next() {
		w := new(types.WorkspaceWithRole)
		if err := rows.Scan(&w.ID, &w.Name, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt, &w.Role); err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}

		w.Role = types.EffectiveRole(userID, w.OwnerID, w.Role)
		workspaces = append(workspaces, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return workspaces, nil
}

func (s *Storage) UpdateWorkspaceName(ctx context.Context, id, name string) (*types.Workspace, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateWorkspaceName")
	defer span.End()

	if !validID(id) {
		return nil, ErrNotFound
	}

	var w types.Workspace
	err := s.db.Statement(ctx).
		Update("workspaces").
		Set("name", name).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, name, owner_id, created_at, updated_at").
		QueryRowContext(ctx).
		Scan(&w.ID, &w.Name, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}

	return &w, nil
}

// DeleteWorkspace removes the workspace, members, invitations and subscription cascade with it.
func (s *Storage) DeleteWorkspace(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteWorkspace")
	defer span.End()

	if !validID(id) {
		return ErrNotFound
	}

	res, err := s.db.Statement(ctx).
		Delete("workspaces").
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	return expectAffected(res)
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func expectAffected(res rowsAffected) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}
