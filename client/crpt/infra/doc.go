// Package infra contém as implementações concretas dos contratos do pacote domain.
//
// Exemplos:
//   - WindowGate: gate de admissão com devolução da permissão por timer
//   - JSONEncoder: forma canônica (JSON) do documento e do envelope
//   - HTTPTransport: uma troca HTTP por envio (net/http)
//   - OAuth2Tokens: credencial Bearer a partir de um oauth2.TokenSource
//   - CallerStore: token bucket por chamador usando golang.org/x/time/rate
//   - MemoryStatsStore / RedisStatsStore: contadores de resultado dos envios
package infra
