// Package domain define os tipos e contratos do cliente CRPT (Честный знак / ISMP).
//
// Este pacote não depende de net/http nem de implementações concretas.
// Aqui ficam o documento enviado, o envelope, as enumerações do contrato da API,
// os tipos de erro e as interfaces das capacidades externas (encoder, token,
// transporte, gate de admissão, estatísticas).
package domain
