// Package municipality é a tabela estática de municípios atendidos pelo painel.
package municipality

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	FallbackLatitude  = -8.0
	FallbackLongitude = -35.0
)

// Record descreve um município da região atendida.
type Record struct {
	Key        string
	Name       string
	Code       string
	State      string
	Category   Category
	Latitude   float64
	Longitude  float64
	Population int
}

// Directory é imutável após a construção.
type Directory struct {
	records []Record
	byKey   map[string]int
	byCode  map[string]int
}

// NewDirectory usa a tabela embutida com 9 capitais e 9 municípios do interior.
func NewDirectory() *Directory {
	return FromRecords(builtin)
}

// FromRecords constrói um diretório a partir de registros arbitrários, preservando a ordem.
func FromRecords(records []Record) *Directory {
	d := &Directory{
		records: make([]Record, 0, len(records)),
		byKey:   make(map[string]int, len(records)),
		byCode:  make(map[string]int, len(records)),
	}
	for _, r := range records {
		if r.Key == "" {
			r.Key = Canonical(r.Name)
		}
		if _, dup := d.byKey[r.Key]; dup {
			continue
		}
		d.byKey[r.Key] = len(d.records)
		if r.Code != "" {
			d.byCode[r.Code] = len(d.records)
		}
		d.records = append(d.records, r)
	}
	return d
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Canonical normaliza um nome: remove acentos, converte para minúsculas ASCII
// e troca qualquer sequência de separadores por "_".
// "São Luís" -> "sao_luis", "Feira de Santana" -> "feira_de_santana".
func Canonical(name string) string {
	t := transform.Chain(norm.NFD, stripMarks, norm.NFC)
	plain, _, err := transform.String(t, name)
	if err != nil {
		plain = name
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(plain) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// Lookup busca pelo nome em qualquer grafia (com ou sem acento, caixa, espaços).
func (d *Directory) Lookup(name string) (Record, bool) {
	i, ok := d.byKey[Canonical(name)]
	if !ok {
		return Record{}, false
	}
	return d.records[i], true
}

// ByCode busca pelo código IBGE de 7 dígitos.
func (d *Directory) ByCode(code string) (Record, bool) {
	i, ok := d.byCode[strings.TrimSpace(code)]
	if !ok {
		return Record{}, false
	}
	return d.records[i], true
}

// All devolve uma cópia dos registros na ordem fixa da tabela.
func (d *Directory) All() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

func (d *Directory) ByCategory(c Category) []Record {
	var out []Record
	for _, r := range d.records {
		if r.Category == c {
			out = append(out, r)
		}
	}
	return out
}

func (d *Directory) Len() int {
	return len(d.records)
}

// Coordinates retorna a coordenada do município ou a coordenada de fallback.
func (d *Directory) Coordinates(name string) (lat, lon float64, found bool) {
	if r, ok := d.Lookup(name); ok {
		return r.Latitude, r.Longitude, true
	}
	return FallbackLatitude, FallbackLongitude, false
}
