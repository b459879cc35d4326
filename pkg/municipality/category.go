package municipality

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category classifica o município e define a distribuição usada na simulação.
type Category string

const (
	Capital  Category = "CAPITAL"
	Interior Category = "INTERIOR"
)

// ParseCategory aceita "capital" e "interior" em qualquer caixa.
func ParseCategory(s string) (Category, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Capital):
		return Capital, nil
	case string(Interior):
		return Interior, nil
	}
	return "", fmt.Errorf("categoria de município inválida: '%s'", s)
}

func (c *Category) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
