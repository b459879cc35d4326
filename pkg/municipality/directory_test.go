package municipality

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	tests := map[string]string{
		"São Luís":                 "sao_luis",
		"JOÃO PESSOA":              "joao_pessoa",
		"  Feira  de   Santana ":   "feira_de_santana",
		"Maceió":                   "maceio",
		"nossa-senhora-do-socorro": "nossa_senhora_do_socorro",
		"Mossoró/RN":               "mossoro_rn",
		"":                         "",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Canonical(in))
		})
	}
}

func TestDirectory_Builtin(t *testing.T) {
	d := NewDirectory()

	assert.Equal(t, 18, d.Len())
	assert.Len(t, d.ByCategory(Capital), 9)
	assert.Len(t, d.ByCategory(Interior), 9)

	all := d.All()
	assert.Equal(t, "fortaleza", all[0].Key)
	assert.Equal(t, "nossa_senhora_do_socorro", all[17].Key)

	for _, r := range all {
		assert.Equal(t, r.Key, Canonical(r.Name), "chave deve ser o nome canônico")
		assert.Len(t, r.Code, 7)
		assert.Len(t, r.State, 2)
		assert.Positive(t, r.Population)
	}
}

func TestDirectory_Lookup(t *testing.T) {
	d := NewDirectory()

	t.Run("Nome acentuado", func(t *testing.T) {
		r, ok := d.Lookup("São Luís")
		require.True(t, ok)
		assert.Equal(t, "2111300", r.Code)
		assert.Equal(t, "MA", r.State)
		assert.Equal(t, Capital, r.Category)
	})

	t.Run("Por código", func(t *testing.T) {
		r, ok := d.ByCode("2504009")
		require.True(t, ok)
		assert.Equal(t, "Campina Grande", r.Name)
		assert.Equal(t, Interior, r.Category)
	})

	t.Run("Coordenadas de fallback", func(t *testing.T) {
		lat, lon, found := d.Coordinates("Juazeiro do Norte")
		assert.False(t, found)
		assert.Equal(t, FallbackLatitude, lat)
		assert.Equal(t, FallbackLongitude, lon)

		lat, lon, found = d.Coordinates("recife")
		assert.True(t, found)
		assert.Equal(t, -8.0476, lat)
		assert.Equal(t, -34.8770, lon)
	})

	t.Run("All devolve cópia", func(t *testing.T) {
		all := d.All()
		all[0].Name = "Alterado"
		r, _ := d.Lookup("fortaleza")
		assert.Equal(t, "Fortaleza", r.Name)
	})
}

func TestCategory(t *testing.T) {
	c, err := ParseCategory("capital")
	require.NoError(t, err)
	assert.Equal(t, Capital, c)

	_, err = ParseCategory("metropole")
	assert.Error(t, err)

	var decoded struct {
		Tipo Category `json:"tipo"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"tipo":"interior"}`), &decoded))
	assert.Equal(t, Interior, decoded.Tipo)

	out, _ := json.Marshal(decoded)
	assert.JSONEq(t, `{"tipo":"INTERIOR"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"tipo":"x"}`), &decoded))
}

func TestFromRecords_Dedup(t *testing.T) {
	d := FromRecords([]Record{{Name: "Recife", Code: "1"}, {Name: "RECIFE", Code: "2"}})
	assert.Equal(t, 1, d.Len())
	r, ok := d.Lookup("recife")
	require.True(t, ok)
	assert.Equal(t, "1", r.Code)
}
