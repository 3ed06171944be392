// crpt-falso imita /lk/documents/send para testes manuais do gateway.
//
//	go run ./teste-validacao/crpt-falso
//	CRPT_BASE_URL=http://localhost:8081 CRPT_TOKEN=x go run ./cmd/crpt-gateway
package main

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"crpt-gateway/client/crpt/domain"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

func main() {
	log := hclog.New(&hclog.LoggerOptions{Name: "crpt-falso"})

	http.HandleFunc("POST /lk/documents/send", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			http.Error(w, `{"error_message":"unauthorized"}`, http.StatusUnauthorized)
			return
		}

		var env domain.Envelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			http.Error(w, `{"error_message":"invalid body"}`, http.StatusBadRequest)
			return
		}
		if _, err := base64.StdEncoding.DecodeString(env.ProductDocument); err != nil || env.ProductGroup != r.URL.Query().Get("pg") {
			http.Error(w, `{"error_message":"invalid document"}`, http.StatusBadRequest)
			return
		}

		id := uuid.NewString()
		log.Info("documento recebido", "pg", env.ProductGroup, "type", env.Type, "value", id)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"value": id})
	})

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}
	log.Info("servidor rodando", "addr", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error("erro ao subir o servidor", "error", err)
		os.Exit(1)
	}
}
