package domain

import "context"

// Encoder serializa o documento/envelope na forma canônica (JSON) e lê de volta.
type Encoder interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// TokenProvider entrega a credencial Bearer. O cliente trata a chamada como
// síncrona e sem efeitos colaterais.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapta uma função para TokenProvider.
type TokenFunc func(ctx context.Context) (string, error)

func (fn TokenFunc) Token(ctx context.Context) (string, error) { return fn(ctx) }

type Request struct {
	Method string
	URL    string
	Header map[string]string
	Body   []byte
}

type Response struct {
	StatusCode int
	Body       []byte
	// Truncated indica que o corpo passou do limite do transporte e foi cortado.
	Truncated bool
}

// Transport faz exatamente uma troca HTTP. Erro só para falha de rede;
// qualquer status HTTP volta em Response.
type Transport interface {
	Do(ctx context.Context, req Request) (Response, error)
}
