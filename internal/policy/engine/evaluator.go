// Package engine decides access to the admin panel with an OPA Rego policy.
package engine

import "context"

// Admin actions evaluated by the policy.
const (
	ActionListUsers  = "list_users"
	ActionDeleteUser = "delete_user"
)

// AdminInput is the policy input for one admin request.
type AdminInput struct {
	Authenticated bool
	SecretValid   bool
	Action        string
}

// Evaluator decides whether an admin request may proceed.
type Evaluator interface {
	AllowAdmin(ctx context.Context, in AdminInput) (bool, error)
}
