package engine

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

const adminQuery = "data.daily_logger.admin.allow"

// DefaultAdminPolicy allows the known admin actions to an authenticated caller
// holding the admin secret.
const DefaultAdminPolicy = `package daily_logger.admin

default allow = false

actions := {"list_users", "delete_user"}

allow if {
	input.authenticated
	input.secret_valid
	actions[input.action]
}
`

// OPAEvaluator evaluates the admin policy with an in-process Rego engine.
// The query is prepared once; evaluation is safe for concurrent use.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles policy (DefaultAdminPolicy when empty) and prepares the allow query.
func NewOPAEvaluator(ctx context.Context, policy string) (*OPAEvaluator, error) {
	if policy == "" {
		policy = DefaultAdminPolicy
	}
	q, err := rego.New(
		rego.Query(adminQuery),
		rego.Module("admin.rego", policy),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile admin policy: %w", err)
	}
	return &OPAEvaluator{query: q}, nil
}

// AllowAdmin evaluates the policy for in. An undefined result denies.
func (e *OPAEvaluator) AllowAdmin(ctx context.Context, in AdminInput) (bool, error) {
	rs, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}{
		"authenticated": in.Authenticated,
		"secret_valid":  in.SecretValid,
		"action":        in.Action,
	}))
	if err != nil {
		return false, fmt.Errorf("eval admin policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	return ok && allowed, nil
}

// HealthCheck evaluates a denied request to confirm the engine answers.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	if _, err := e.AllowAdmin(ctx, AdminInput{}); err != nil {
		return err
	}
	return nil
}
