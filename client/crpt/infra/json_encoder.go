package infra

import (
	"bytes"
	"encoding/json"
)

// JSONEncoder é a forma canônica usada pela API: JSON compacto,
// sem escape de HTML (assinaturas e base64 passam intactos).
type JSONEncoder struct{}

func (JSONEncoder) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// json.Encoder sempre termina com '\n'
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (JSONEncoder) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
