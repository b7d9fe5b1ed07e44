// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package workspace

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/nexus-app/workspace-service/internal/http/types"
	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/internal/types"
	"github.com/nexus-app/workspace-service/pkg/access"
	"github.com/nexus-app/workspace-service/pkg/authentication"
)

type API struct {
	service ServiceInterface
	guard   GuardInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewAPI(
	service ServiceInterface,
	guard GuardInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *API {
	return &API{
		service: service,
		guard:   guard,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

// RegisterEndpoints mounts the workspace routes. The router must already
// authenticate the caller.
func (a *API) RegisterEndpoints(r chi.Router) {
	r.Get("/workspaces", a.listWorkspaces)
	r.Post("/workspaces", a.createWorkspace)
	r.Post("/invitations/accept", a.acceptInvitation)

	r.Route("/workspaces/{id}", func(r chi.Router) {
		r.With(a.guard.RequireMember()).Get("/", a.getWorkspace)
		r.With(a.guard.RequireOwner()).Patch("/", a.updateWorkspace)
		r.With(a.guard.RequireOwner()).Delete("/", a.deleteWorkspace)

		r.With(a.guard.RequireMember()).Get("/members", a.listMembers)
		r.With(a.guard.RequireAdmin()).Patch("/members/{userId}", a.updateMember)
		r.With(a.guard.RequireAdmin()).Delete("/members/{userId}", a.removeMember)

		r.With(a.guard.RequireAdmin()).Post("/invite", a.inviteMember)
		r.With(a.guard.RequireAdmin()).Get("/invitations", a.listInvitations)
		r.With(a.guard.RequireAdmin()).Delete("/invitations/{invId}", a.cancelInvitation)

		r.With(a.guard.RequireMember()).Get("/subscription", a.getSubscription)
	})
}

func (a *API) listWorkspaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "workspace.API.listWorkspaces")
	defer span.End()

	identity, ok := authentication.IdentityFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, types.ErrUnauthenticated)
		return
	}

	workspaces, err := a.service.ListWorkspaces(ctx, identity)
	if err != nil {
		a.fail(w, err)
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, ListWorkspacesResponse{Workspaces: workspaces})
}

func (a *API) createWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "workspace.API.createWorkspace")
	defer span.End()

	identity, ok := authentication.IdentityFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, types.ErrUnauthenticated)
		return
	}

	var req CreateWorkspaceRequest
	if err := httptypes.DecodeJSON(r, &req); err != nil {
		httptypes.WriteError(w, err)
		return
	}

	created, err := a.service.CreateWorkspace(ctx, identity, req.Name)
	if err != nil {
		a.fail(w, err)
		return
	}

	httptypes.WriteJSON(w, http.StatusCreated, created)
}

func (a *API) getWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "workspace.API.getWorkspace")
	defer span.End()

	p, ok := access.PrincipalFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, types.ErrForbidden)
		return
	}

	ws, err := a.service.GetWorkspace(ctx, p)
	if err != nil {
		a.fail(w, err)
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, ws)
}

func (a *API) updateWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "workspace.API.updateWorkspace")
	defer span.End()

	p, ok := access.PrincipalFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, types.ErrForbidden)
		return
	}

	var req UpdateWorkspaceRequest
	if err := httptypes.DecodeJSON(r, &req); err != nil {
		httptypes.WriteError(w, err)
		return
	}

	ws, err := a.service.RenameWorkspace(ctx, p, req.Name)
	if err != nil {
		a.fail(w, err)
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, ws)
}

func (a *API) deleteWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "workspace.API.deleteWorkspace")
	defer span.End()

	p, ok := access.PrincipalFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, types.ErrForbidden)
		return
	}

	if err := a.service.DeleteWorkspace(ctx, p); err != nil {
		a.fail(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "workspace.API.listMembers")
	defer span.End()

	p, ok := access.PrincipalFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, types.ErrForbidden)
		return
	}

	members, err := a.service.ListMembers(ctx, p)
	if err != nil {
		a.fail(w, err)
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, ListMembersResponse{Members: members})
}

func (a *API) updateMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "workspace.API.updateMember")
	defer span.End()

	p, ok := access.PrincipalFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, types.ErrForbidden)
		return
	}

	if err := access.ProtectOwner(p, chi.URLParam(r, "userId")); err != nil {
		httptypes.WriteError(w, err)
		return
	}

	var req UpdateMemberRequest
	if err := httptypes.DecodeJSON(r, &req); err != nil {
		httptypes.WriteError(w, err)
		return
	}

	m, err := a.service.UpdateMemberRole(ctx, p, chi.URLParam(r, "userId"), types.Role(req.Role))
	if err != nil {
		a.fail(w, err)
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, m)
}

func (a *API) removeMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "workspace.API.removeMember")
	defer span.End()

	p, ok := access.PrincipalFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, types.ErrForbidden)
		return
	}

	if err := access.ProtectOwner(p, chi.URLParam(r, "userId")); err != nil {
		httptypes.WriteError(w, err)
		return
	}

	if err := a.service.RemoveMember(ctx, p, chi.URLParam(r, "userId")); err != nil {
		a.fail(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) inviteMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "workspace.API.inviteMember")
	defer span.End()

	p, ok := access.PrincipalFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, types.ErrForbidden)
		return
	}

	var req InviteMemberRequest
	if err := httptypes.DecodeJSON(r, &req); err != nil {
		httptypes.WriteError(w, err)
		return
	}

	inv, err := a.service.InviteMember(ctx, p, req.Email, types.Role(req.Role))
	if err != nil {
		a.fail(w, err)
		return
	}

	httptypes.WriteJSON(w, http.StatusCreated, inv)
}

func (a *API) listInvitations(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "workspace.API.listInvitations")
	defer span.End()

	p, ok := access.PrincipalFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, types.ErrForbidden)
		return
	}

	invitations, err := a.service.ListInvitations(ctx, p)
	if err != nil {
		a.fail(w, err)
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, ListInvitationsResponse{Invitations: invitations})
}

func (a *API) cancelInvitation(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "workspace.API.cancelInvitation")
	defer span.End()

	p, ok := access.PrincipalFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, types.ErrForbidden)
		return
	}

	if err := a.service.CancelInvitation(ctx, p, chi.URLParam(r, "invId")); err != nil {
		a.fail(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) acceptInvitation(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "workspace.API.acceptInvitation")
	defer span.End()

	identity, ok := authentication.IdentityFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, types.ErrUnauthenticated)
		return
	}

	var req AcceptInvitationRequest
	if err := httptypes.DecodeJSON(r, &req); err != nil {
		httptypes.WriteError(w, err)
		return
	}

	m, err := a.service.AcceptInvitation(ctx, identity, req.Token)
	if err != nil {
		a.fail(w, err)
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, m)
}

func (a *API) getSubscription(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "workspace.API.getSubscription")
	defer span.End()

	p, ok := access.PrincipalFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, types.ErrForbidden)
		return
	}

	sub, err := a.service.GetSubscription(ctx, p)
	if err != nil {
		a.fail(w, err)
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, sub)
}

func (a *API) fail(w http.ResponseWriter, err error) {
	if httptypes.StatusFromError(err) == http.StatusInternalServerError {
		a.logger.Errorf("request failed: %v", err)
	}

	httptypes.WriteError(w, err)
}
