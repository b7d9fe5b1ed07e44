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
	"github.com/nexus-app/workspace-service/pkg/billing"
	"github.com/nexus-app/workspace-service/pkg/workspace"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage workspaces",
}

var listWorkspacesCmd = &cobra.Command{
	Use:   "list",
	Short: "List the workspaces of the caller",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newAPIClient(cmd.Context(), endpoint, bearerToken)

		var resp workspace.ListWorkspacesResponse
		if err := c.do(cmd.Context(), http.MethodGet, "/workspaces", nil, &resp); err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), resp, func(w *tabwriter.Writer) {
			row(w, "ID", "NAME", "ROLE", "CREATED")
			for _, ws := range resp.Workspaces {
				row(w, ws.ID, ws.Name, ws.Role, formatTime(ws.CreatedAt))
			}
		})
	},
}

var createWorkspaceCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a workspace owned by the caller",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newAPIClient(cmd.Context(), endpoint, bearerToken)

		var ws types.Workspace
		if err := c.do(cmd.Context(), http.MethodPost, "/workspaces", workspace.CreateWorkspaceRequest{Name: args[0]}, &ws); err != nil {
			return err
		}

		return printWorkspace(cmd, &ws)
	},
}

var getWorkspaceCmd = &cobra.Command{
	Use:   "get <workspace-id>",
	Short: "Show a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newAPIClient(cmd.Context(), endpoint, bearerToken)

		var ws types.Workspace
		if err := c.do(cmd.Context(), http.MethodGet, workspacePath(args[0]), nil, &ws); err != nil {
			return err
		}

		return printWorkspace(cmd, &ws)
	},
}

var renameWorkspaceCmd = &cobra.Command{
	Use:   "rename <workspace-id> <name>",
	Short: "Rename a workspace",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newAPIClient(cmd.Context(), endpoint, bearerToken)

		var ws types.Workspace
		if err := c.do(cmd.Context(), http.MethodPatch, workspacePath(args[0]), workspace.UpdateWorkspaceRequest{Name: args[1]}, &ws); err != nil {
			return err
		}

		return printWorkspace(cmd, &ws)
	},
}

var deleteWorkspaceCmd = &cobra.Command{
	Use:   "delete <workspace-id>",
	Short: "Delete a workspace and everything it owns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newAPIClient(cmd.Context(), endpoint, bearerToken)

		if err := c.do(cmd.Context(), http.MethodDelete, workspacePath(args[0]), nil, nil); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Workspace %s deleted\n", args[0])
		return nil
	},
}

var subscriptionCmd = &cobra.Command{
	Use:   "subscription <workspace-id>",
	Short: "Show the subscription of a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newAPIClient(cmd.Context(), endpoint, bearerToken)

		var sub types.Subscription
		if err := c.do(cmd.Context(), http.MethodGet, workspacePath(args[0])+"/subscription", nil, &sub); err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), sub, func(w *tabwriter.Writer) {
			row(w, "PLAN", "STATUS", "PERIOD END", "CUSTOMER", "SUBSCRIPTION")
			row(w, sub.PlanID, sub.Status, formatOptionalTime(sub.CurrentPeriodEnd), orDash(sub.StripeCustomerID), orDash(sub.StripeSubscriptionID))
		})
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout <workspace-id> <plan-id>",
	Short: "Open a checkout session for a plan",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newAPIClient(cmd.Context(), endpoint, bearerToken)

		var resp billing.CreateCheckoutSessionResponse
		req := billing.CreateCheckoutSessionRequest{WorkspaceID: args[0], PlanID: args[1]}
		if err := c.do(cmd.Context(), http.MethodPost, "/billing/create-checkout-session", req, &resp); err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), resp, func(w *tabwriter.Writer) {
			row(w, "CHECKOUT URL")
			row(w, resp.URL)
		})
	},
}

func workspacePath(id string) string {
	return "/workspaces/" + url.PathEscape(id)
}

func printWorkspace(cmd *cobra.Command, ws *types.Workspace) error {
	return render(cmd.OutOrStdout(), ws, func(w *tabwriter.Writer) {
		row(w, "ID", "NAME", "OWNER", "CREATED", "UPDATED")
		row(w, ws.ID, ws.Name, ws.OwnerID, formatTime(ws.CreatedAt), formatTime(ws.UpdatedAt))
	})
}

func init() {
	rootCmd.AddCommand(workspaceCmd)
	workspaceCmd.AddCommand(listWorkspacesCmd)
	workspaceCmd.AddCommand(createWorkspaceCmd)
	workspaceCmd.AddCommand(getWorkspaceCmd)
	workspaceCmd.AddCommand(renameWorkspaceCmd)
	workspaceCmd.AddCommand(deleteWorkspaceCmd)
	workspaceCmd.AddCommand(subscriptionCmd)
	workspaceCmd.AddCommand(checkoutCmd)
}
