package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/raywall/healthdata-loader/pkg/config"
)

type compiledRule struct {
	id  string
	prg cel.Program
}

// RowRuleSet é um conjunto de regras pré-compiladas aplicadas a cada linha.
type RowRuleSet struct {
	rules []compiledRule
}

// CompileRowRules compila todas as regras na carga da configuração; uma
// expressão inválida é erro de configuração.
func (rm *RuleManager) CompileRowRules(defs []config.RowRule) (*RowRuleSet, error) {
	set := &RowRuleSet{}
	for _, d := range defs {
		prg, err := rm.CompileProgram(d.Expr)
		if err != nil {
			return nil, fmt.Errorf("regra '%s': %w", d.ID, err)
		}
		set.rules = append(set.rules, compiledRule{id: d.ID, prg: prg})
	}
	return set, nil
}

func (s *RowRuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Check avalia as regras em ordem e devolve o ID da primeira que reprovou a
// linha. Erro de avaliação também reprova, com o erro devolvido.
func (s *RowRuleSet) Check(row map[string]interface{}, source string) (string, error) {
	if s == nil {
		return "", nil
	}
	ctx := map[string]interface{}{"row": row, "source": source}
	for _, r := range s.rules {
		ok, err := evalBool(r.prg, ctx)
		if err != nil {
			return r.id, err
		}
		if !ok {
			return r.id, nil
		}
	}
	return "", nil
}
