package usecase

import (
	"context"
	"fmt"

	"panchayat-docstore/internal/shared/contextkeys"
	"panchayat-docstore/internal/shared/errors"

	"github.com/google/cel-go/cel"
)

// Operation names a store operation as seen by the access rules.
type Operation string

const (
	OperationList   Operation = "list"
	OperationGet    Operation = "get"
	OperationSet    Operation = "set"
	OperationUpdate Operation = "update"
	OperationCreate Operation = "create"
	OperationDelete Operation = "delete"
)

// IsWrite reports whether op changes stored data.
func (op Operation) IsWrite() bool {
	return op != OperationList && op != OperationGet
}

// AccessRules evaluates one CEL expression for reads and one for writes.
//
// Each expression sees:
//
//	auth        null, or {uid, role} of the verified caller
//	path        the request path
//	collection  the backend collection name
//	method      the operation (list, get, set, update, create, delete)
type AccessRules struct {
	read  cel.Program
	write cel.Program
}

func newRulesEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("auth", cel.DynType),
		cel.Variable("path", cel.StringType),
		cel.Variable("collection", cel.StringType),
		cel.Variable("method", cel.StringType),
	)
}

// NewAccessRules compiles the read and write expressions.
func NewAccessRules(readExpr, writeExpr string) (*AccessRules, error) {
	env, err := newRulesEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	read, err := compileRule(env, readExpr)
	if err != nil {
		return nil, fmt.Errorf("read rule: %w", err)
	}
	write, err := compileRule(env, writeExpr)
	if err != nil {
		return nil, fmt.Errorf("write rule: %w", err)
	}
	return &AccessRules{read: read, write: write}, nil
}

func compileRule(env *cel.Env, expr string) (cel.Program, error) {
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression %q yields %s, want bool", expr, out)
	}
	return env.Program(ast)
}

// Allow returns nil when the caller in ctx may perform op on path. A rule
// that errors or yields a non-bool denies.
func (r *AccessRules) Allow(ctx context.Context, op Operation, path, collection string) error {
	prg := r.read
	if op.IsWrite() {
		prg = r.write
	}

	out, _, err := prg.Eval(map[string]any{
		"auth":       principal(ctx),
		"path":       path,
		"collection": collection,
		"method":     string(op),
	})
	if err == nil {
		if allowed, ok := out.Value().(bool); ok && allowed {
			return nil
		}
	}

	denied := errors.NewAuthorizationError(fmt.Sprintf("%s on %s is not allowed", op, path)).
		WithDetail("collection", collection).
		WithCause(errors.ErrRuleDenied)
	if err != nil {
		denied = denied.WithDetail("evaluation", err.Error())
	}
	return denied
}

// principal returns the auth variable for ctx: nil when anonymous.
func principal(ctx context.Context) any {
	uid, _ := ctx.Value(contextkeys.UserIDKey).(string)
	if uid == "" {
		return nil
	}
	role, _ := ctx.Value(contextkeys.RoleKey).(string)
	return map[string]any{"uid": uid, "role": role}
}
