package rules

import (
	"testing"

	"github.com/raywall/healthdata-loader/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRow() map[string]interface{} {
	return map[string]interface{}{
		"municipio":           "Recife",
		"uf":                  "PE",
		"tipo":                "CAPITAL",
		"populacao":           int64(1653461),
		"ocupacao_hospitalar": 81.5,
		"conectividade_mbps":  92.0,
	}
}

func TestCompileProgram(t *testing.T) {
	rm, err := NewRuleManager()
	require.NoError(t, err)
	ctx := map[string]interface{}{"row": sampleRow(), "source": "SIMULATED"}

	eval := func(expr string) (bool, error) {
		prg, err := rm.CompileProgram(expr)
		if err != nil {
			return false, err
		}
		return evalBool(prg, ctx)
	}

	t.Run("Comparação numérica e string", func(t *testing.T) {
		ok, err := eval("row.ocupacao_hospitalar <= 100.0 && row.uf == 'PE'")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Comparação entre int e double", func(t *testing.T) {
		ok, err := eval("row.populacao > 1000000.0 && row.conectividade_mbps > 90")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Variável source", func(t *testing.T) {
		ok, err := eval("source == 'SIMULATED'")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Resultado não booleano", func(t *testing.T) {
		_, err := eval("row.uf")
		assert.ErrorContains(t, err, "não é booleano")
	})

	t.Run("Sintaxe inválida", func(t *testing.T) {
		_, err := rm.CompileProgram("row.uf ==")
		assert.ErrorContains(t, err, "compilação CEL")
	})
}

func TestRowRuleSet(t *testing.T) {
	rm, _ := NewRuleManager()

	set, err := rm.CompileRowRules([]config.RowRule{
		{ID: "ocupacao_valida", Expr: "row.ocupacao_hospitalar >= 0.0 && row.ocupacao_hospitalar <= 100.0"},
		{ID: "somente_nordeste", Expr: "row.uf in ['AL','BA','CE','MA','PB','PE','PI','RN','SE']"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())

	t.Run("Linha aprovada", func(t *testing.T) {
		id, err := set.Check(sampleRow(), "REAL")
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("Primeira regra reprovada", func(t *testing.T) {
		row := sampleRow()
		row["uf"] = "SP"
		id, err := set.Check(row, "REAL")
		require.NoError(t, err)
		assert.Equal(t, "somente_nordeste", id)
	})

	t.Run("Campo ausente reprova com erro", func(t *testing.T) {
		row := sampleRow()
		delete(row, "ocupacao_hospitalar")
		id, err := set.Check(row, "REAL")
		assert.Error(t, err)
		assert.Equal(t, "ocupacao_valida", id)
	})

	t.Run("Regra inválida na compilação", func(t *testing.T) {
		_, err := rm.CompileRowRules([]config.RowRule{{ID: "x", Expr: "row.uf =="}})
		assert.Error(t, err)
	})

	t.Run("Conjunto nil aprova tudo", func(t *testing.T) {
		var empty *RowRuleSet
		id, err := empty.Check(sampleRow(), "REAL")
		assert.NoError(t, err)
		assert.Empty(t, id)
		assert.Zero(t, empty.Len())
	})
}
