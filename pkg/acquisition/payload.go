package acquisition

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Metadata é o bloco "metadata" da resposta do backend de agregação.
type Metadata struct {
	TotalMunicipalities int      `json:"total_municipalities"`
	DataSources         []string `json:"data_sources"`
}

// Payload é a resposta bem-formada do backend.
type Payload struct {
	Data     []map[string]interface{}
	Metadata Metadata
}

// ParsePayload valida o contrato: "data" precisa ser um array de objetos e
// "metadata" precisa conter total_municipalities e data_sources. Números são
// mantidos como json.Number.
func ParsePayload(body []byte) (*Payload, error) {
	var envelope map[string]json.RawMessage
	if err := decode(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: corpo não é um objeto JSON: %v", ErrMalformedPayload, err)
	}

	rawData, ok := envelope["data"]
	if !ok {
		return nil, fmt.Errorf("%w: campo 'data' ausente", ErrMalformedPayload)
	}
	var data []map[string]interface{}
	if err := decode(rawData, &data); err != nil || data == nil {
		return nil, fmt.Errorf("%w: 'data' não é um array de objetos", ErrMalformedPayload)
	}

	rawMeta, ok := envelope["metadata"]
	if !ok {
		return nil, fmt.Errorf("%w: campo 'metadata' ausente", ErrMalformedPayload)
	}
	var metaFields map[string]json.RawMessage
	if err := decode(rawMeta, &metaFields); err != nil || metaFields == nil {
		return nil, fmt.Errorf("%w: 'metadata' não é um objeto", ErrMalformedPayload)
	}

	var meta Metadata
	total, ok := metaFields["total_municipalities"]
	if !ok {
		return nil, fmt.Errorf("%w: 'metadata.total_municipalities' ausente", ErrMalformedPayload)
	}
	if err := json.Unmarshal(total, &meta.TotalMunicipalities); err != nil {
		return nil, fmt.Errorf("%w: 'metadata.total_municipalities' não é inteiro", ErrMalformedPayload)
	}
	sources, ok := metaFields["data_sources"]
	if !ok {
		return nil, fmt.Errorf("%w: 'metadata.data_sources' ausente", ErrMalformedPayload)
	}
	if err := json.Unmarshal(sources, &meta.DataSources); err != nil || meta.DataSources == nil {
		return nil, fmt.Errorf("%w: 'metadata.data_sources' não é lista de strings", ErrMalformedPayload)
	}

	return &Payload{Data: data, Metadata: meta}, nil
}

func decode(b []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}
