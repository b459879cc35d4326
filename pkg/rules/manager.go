package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// RuleManager gerencia a compilação e avaliação de expressões CEL.
type RuleManager struct {
	env *cel.Env
}

// NewRuleManager inicializa o ambiente CEL com as variáveis expostas às regras:
// "row" (linha canônica já enriquecida) e "source" (REAL ou SIMULATED).
func NewRuleManager() (*RuleManager, error) {
	env, err := cel.NewEnv(
		cel.Variable("row", cel.DynType),
		cel.Variable("source", cel.StringType),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("erro fatal CEL init: %w", err)
	}

	return &RuleManager{env: env}, nil
}

// CompileProgram compila expr no ambiente das regras de linha. Usado na
// montagem do RowRuleSet e pelo analisador de configuração.
func (rm *RuleManager) CompileProgram(expr string) (cel.Program, error) {
	ast, issues := rm.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("erro de compilação CEL '%s': %w", expr, issues.Err())
	}
	prg, err := rm.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar programa CEL: %w", err)
	}
	return prg, nil
}

func evalBool(prg cel.Program, ctx map[string]interface{}) (bool, error) {
	out, _, err := prg.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("erro execução CEL: %w", err)
	}
	if val, ok := out.Value().(bool); ok {
		return val, nil
	}
	return false, fmt.Errorf("resultado não é booleano: %T", out.Value())
}
