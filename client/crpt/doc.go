// Package crpt é o cliente da API do CRPT (ISMP, "Честный знак") para criação de
// documentos de introdução de mercadorias, com cota de chamadas por janela de tempo.
//
// Visão geral (camadas):
//
//   - domain: tipos, enumerações do contrato, erros e interfaces (sem net/http)
//   - application: casos de uso (preparo, admissão, envio) sem net/http
//   - infra: implementações concretas (gate por janela, JSON, HTTP, oauth2, x/time/rate, redis)
//   - crpt (este pacote): Client (fachada), handler HTTP de relay e middleware por chamador
//
// Fluxo de um envio:
//
//  1. Valida o documento e monta o envelope (falha rápido, sem tocar no gate)
//  2. Espera uma permissão do gate; ela volta sozinha depois da janela
//  3. Busca o token Bearer
//  4. Faz um único POST em {baseURL}/lk/documents/send?pg={grupo}
//  5. 200/201/202 devolve o "value" da resposta; qualquer outro status vira *domain.APIError
//
// Uso mínimo:
//
//	client, err := crpt.NewClient(crpt.Options{
//		TimeUnit:     time.Second,
//		RequestLimit: 10,
//		Tokens:       infra.StaticTokens(os.Getenv("CRPT_TOKEN")),
//	})
//	id, err := client.CreateDocument(ctx, &doc, signature, domain.Milk)
package crpt
