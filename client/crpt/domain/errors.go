package domain

import (
	"errors"
	"fmt"
)

// Tipos de erro do cliente. Use errors.Is com os sentinelas abaixo
// ou errors.As com os tipos concretos.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
	ErrEncoding      = errors.New("encoding error")
	ErrNetwork       = errors.New("network error")
	ErrAPIRejection  = errors.New("api rejection")
	ErrToken         = errors.New("token error")

	// ErrBadResponse marca EncodingError vindo da resposta da API, falha do
	// lado de lá, e não do documento enviado.
	ErrBadResponse = errors.New("bad api response")
)

// Operações de EncodingError.
const (
	OpEncodeDocument = "encode document"
	OpEncodeEnvelope = "encode envelope"
	OpDecodeResponse = "decode response"
)

// ConfigError: argumento de construção inválido. Fatal, sem recuperação.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

// ValidationError: documento malformado. Nenhum recurso de rede foi usado.
// Err costuma ser um *multierror.Error com um item por produto inválido.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "malformed document: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error        { return e.Err }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// EncodingError: falha ao serializar o documento/envelope ou ao ler a resposta.
type EncodingError struct {
	Op  string
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding failed (%s): %v", e.Op, e.Err)
}

func (e *EncodingError) Unwrap() error        { return e.Err }
func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding || (target == ErrBadResponse && e.Op == OpDecodeResponse)
}

// NetworkError: falha de transporte (conexão, timeout, cancelamento).
// A causa original continua acessível via errors.Is/As (ex.: context.Canceled).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string        { return "network failure: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error        { return e.Err }
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// APIError: a API respondeu com status fora de {200, 201, 202}.
// Body é o corpo cru da resposta, sem interpretação; Truncated indica que o
// transporte cortou o corpo no seu limite (1 MiB no HTTPTransport).
type APIError struct {
	StatusCode int
	Body       string
	Truncated  bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("crpt api rejected request (status %d): %s", e.StatusCode, e.Body)
}

func (e *APIError) Is(target error) bool { return target == ErrAPIRejection }

// TokenError: o provedor de credencial falhou.
type TokenError struct {
	Err error
}

func (e *TokenError) Error() string        { return "token provider failed: " + e.Err.Error() }
func (e *TokenError) Unwrap() error        { return e.Err }
func (e *TokenError) Is(target error) bool { return target == ErrToken }

// ErrAdmissionTimeout: o gate não liberou permissão dentro do AcquireTimeout
// configurado (o contexto do chamador ainda estava vivo).
var ErrAdmissionTimeout = errors.New("admission timeout")
