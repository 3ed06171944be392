// Package application contém os casos de uso do cliente CRPT.
//
// Ele depende do pacote domain (mais validação e log) e não conhece o transporte concreto:
//   - PrepareService.Prepare valida o documento e monta o envelope
//   - AdmissionService.Acquire espera a permissão do gate, com timeout opcional
//   - SubmitService.Submit orquestra preparo, admissão, token, transporte e classificação
//   - CallerLimitService.Decide aplica o limite por chamador do gateway
package application
