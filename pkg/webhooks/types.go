// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

// WorkspacesClaim is the token claim listing the caller's workspace ids.
const WorkspacesClaim = "workspaces"

// KratosIdentity is the identity posted by the Kratos after-registration hook.
type KratosIdentity struct {
	ID     string       `json:"id"`
	Traits KratosTraits `json:"traits"`
}

type KratosTraits struct {
	Email string `json:"email"`
}

type TokenHookSession struct {
	IDToken     map[string]interface{} `json:"id_token,omitempty"`
	AccessToken map[string]interface{} `json:"access_token,omitempty"`
}

// TokenHookResponse is merged by Hydra into the issued tokens.
type TokenHookResponse struct {
	Session TokenHookSession `json:"session"`
}

type RegistrationResponse struct {
	WorkspaceID string `json:"workspaceId"`
}
