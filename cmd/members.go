// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"net/http"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nexus-app/workspace-service/internal/types"
	"github.com/nexus-app/workspace-service/pkg/workspace"
)

var inviteRole string

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Manage workspace members and invitations",
}

var listMembersCmd = &cobra.Command{
	Use:   "list <workspace-id>",
	Short: "List the members of a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newAPIClient(cmd.Context(), endpoint, bearerToken)

		var resp workspace.ListMembersResponse
		if err := c.do(cmd.Context(), http.MethodGet, workspacePath(args[0])+"/members", nil, &resp); err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), resp, func(w *tabwriter.Writer) {
			row(w, "USER ID", "EMAIL", "ROLE", "JOINED")
			for _, m := range resp.Members {
				row(w, m.UserID, orDash(m.Email), m.Role, formatTime(m.CreatedAt))
			}
		})
	},
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role <workspace-id> <user-id> <role>",
	Short: "Change the role of a member",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newAPIClient(cmd.Context(), endpoint, bearerToken)

		var m types.Membership
		if err := c.do(cmd.Context(), http.MethodPatch, memberPath(args[0], args[1]), workspace.UpdateMemberRequest{Role: args[2]}, &m); err != nil {
			return err
		}

		return printMembership(cmd, &m)
	},
}

var removeMemberCmd = &cobra.Command{
	Use:   "remove <workspace-id> <user-id>",
	Short: "Remove a member from a workspace",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newAPIClient(cmd.Context(), endpoint, bearerToken)

		if err := c.do(cmd.Context(), http.MethodDelete, memberPath(args[0], args[1]), nil, nil); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "User %s removed from workspace %s\n", args[1], args[0])
		return nil
	},
}

var inviteCmd = &cobra.Command{
	Use:   "invite <workspace-id> <email>",
	Short: "Invite someone to a workspace by email",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newAPIClient(cmd.Context(), endpoint, bearerToken)

		var inv types.Invitation
		req := workspace.InviteMemberRequest{Email: args[1], Role: inviteRole}
		if err := c.do(cmd.Context(), http.MethodPost, workspacePath(args[0])+"/invite", req, &inv); err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), inv, func(w *tabwriter.Writer) {
			row(w, "ID", "EMAIL", "ROLE", "TOKEN", "EXPIRES")
			row(w, inv.ID, inv.Email, inv.Role, orDash(inv.Token), formatTime(inv.ExpiresAt))
		})
	},
}

var listInvitationsCmd = &cobra.Command{
	Use:   "invitations <workspace-id>",
	Short: "List pending invitations of a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newAPIClient(cmd.Context(), endpoint, bearerToken)

		var resp workspace.ListInvitationsResponse
		if err := c.do(cmd.Context(), http.MethodGet, workspacePath(args[0])+"/invitations", nil, &resp); err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), resp, func(w *tabwriter.Writer) {
			row(w, "ID", "EMAIL", "ROLE", "INVITED BY", "EXPIRES", "EXPIRED")
			for _, inv := range resp.Invitations {
				row(w, inv.ID, inv.Email, inv.Role, inv.InvitedBy, formatTime(inv.ExpiresAt), inv.Expired)
			}
		})
	},
}

var cancelInvitationCmd = &cobra.Command{
	Use:   "cancel-invite <workspace-id> <invitation-id>",
	Short: "Cancel a pending invitation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newAPIClient(cmd.Context(), endpoint, bearerToken)

		path := workspacePath(args[0]) + "/invitations/" + url.PathEscape(args[1])
		if err := c.do(cmd.Context(), http.MethodDelete, path, nil, nil); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Invitation %s canceled\n", args[1])
		return nil
	},
}

var acceptInvitationCmd = &cobra.Command{
	Use:   "accept <token>",
	Short: "Accept an invitation as the caller",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newAPIClient(cmd.Context(), endpoint, bearerToken)

		var m types.Membership
		if err := c.do(cmd.Context(), http.MethodPost, "/invitations/accept", workspace.AcceptInvitationRequest{Token: args[0]}, &m); err != nil {
			return err
		}

		return printMembership(cmd, &m)
	},
}

func memberPath(workspaceID, userID string) string {
	return workspacePath(workspaceID) + "/members/" + url.PathEscape(userID)
}

func printMembership(cmd *cobra.Command, m *types.Membership) error {
	return render(cmd.OutOrStdout(), m, func(w *tabwriter.Writer) {
		row(w, "WORKSPACE ID", "USER ID", "ROLE")
		row(w, m.WorkspaceID, m.UserID, m.Role)
	})
}

func init() {
	rootCmd.AddCommand(membersCmd)
	membersCmd.AddCommand(listMembersCmd)
	membersCmd.AddCommand(setRoleCmd)
	membersCmd.AddCommand(removeMemberCmd)
	membersCmd.AddCommand(inviteCmd)
	membersCmd.AddCommand(listInvitationsCmd)
	membersCmd.AddCommand(cancelInvitationCmd)
	membersCmd.AddCommand(acceptInvitationCmd)

	inviteCmd.Flags().StringVar(&inviteRole, "role", string(types.RoleMember), "Role granted on acceptance (member or admin)")
}
