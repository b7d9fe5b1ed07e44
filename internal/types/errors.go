// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package types

import "errors"

var (
	ErrUnauthenticated   = errors.New("Unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("invalid request")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrInvitationExpired = errors.New("invitation has expired")
)
