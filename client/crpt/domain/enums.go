package domain

import (
	"sort"
	"strings"
	"time"
)

// Todas as strings que vão para o fio ficam nestas tabelas.
// Nada de switch espalhado pelo código: o contrato da API fica auditável aqui.

type ProductGroup int

const (
	ProductGroupUnknown ProductGroup = iota
	Clothes
	Shoes
	Tobacco
	Perfumery
	Tires
	Electronics
	Pharma
	Milk
	Bicycle
	Wheelchairs
)

var productGroupNames = map[ProductGroup]string{
	Clothes:     "clothes",
	Shoes:       "shoes",
	Tobacco:     "tobacco",
	Perfumery:   "perfumery",
	Tires:       "tires",
	Electronics: "electronics",
	Pharma:      "pharma",
	Milk:        "milk",
	Bicycle:     "bicycle",
	Wheelchairs: "wheelchairs",
}

// String devolve o nome canônico em minúsculas (como vai no ?pg= e no envelope).
func (g ProductGroup) String() string { return productGroupNames[g] }

func (g ProductGroup) Valid() bool {
	_, ok := productGroupNames[g]
	return ok
}

// ParseProductGroup aceita o nome em qualquer caixa ("MILK", "milk", " Milk ").
func ParseProductGroup(s string) (ProductGroup, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for g, name := range productGroupNames {
		if name == s {
			return g, true
		}
	}
	return ProductGroupUnknown, false
}

// ProductGroupNames lista os nomes válidos em ordem alfabética (útil em mensagens de ajuda).
func ProductGroupNames() []string {
	out := make([]string, 0, len(productGroupNames))
	for _, name := range productGroupNames {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

type DocumentFormat int

const (
	FormatManual DocumentFormat = iota
	FormatXML
	FormatCSV
)

var documentFormatNames = map[DocumentFormat]string{
	FormatManual: "MANUAL",
	FormatXML:    "XML",
	FormatCSV:    "CSV",
}

func (f DocumentFormat) String() string { return documentFormatNames[f] }

type OperationType int

const (
	LPIntroduceGoods OperationType = iota
)

var operationTypeNames = map[OperationType]string{
	LPIntroduceGoods: "LP_INTRODUCE_GOODS",
}

func (t OperationType) String() string { return operationTypeNames[t] }

// Unidades de tempo aceitas na configuração do gate (CRPT_TIME_UNIT).
var timeUnits = map[string]time.Duration{
	"millisecond": time.Millisecond,
	"second":      time.Second,
	"minute":      time.Minute,
	"hour":        time.Hour,
	"day":         24 * time.Hour,
}

// ParseTimeUnit converte "second", "Minutes", "HOUR"... em time.Duration.
// O plural é aceito.
func ParseTimeUnit(s string) (time.Duration, bool) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	d, ok := timeUnits[s]
	return d, ok
}
