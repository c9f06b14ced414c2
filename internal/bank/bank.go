// Package bank defines the closed set of card issuers the extractor knows about.
package bank

import "strings"

// ID identifies an invoice issuer. The zero value is not a valid ID; use Generic
// for documents whose issuer is unknown.
type ID string

const (
	Generic       ID = "generic"
	BancoDoBrasil ID = "banco_do_brasil"
	Nubank        ID = "nubank"
	Itau          ID = "itau"
	Bradesco      ID = "bradesco"
	Santander     ID = "santander"
)

// known holds every issuer in detection order.
var known = []ID{BancoDoBrasil, Nubank, Itau, Bradesco, Santander}

var displayNames = map[ID]string{
	Generic:       "Genérico",
	BancoDoBrasil: "Banco do Brasil",
	Nubank:        "Nubank",
	Itau:          "Itaú",
	Bradesco:      "Bradesco",
	Santander:     "Santander",
}

// Known returns the issuers in detection order. The returned slice is a copy.
func Known() []ID {
	out := make([]ID, len(known))
	copy(out, known)
	return out
}

// Parse converts a string into an ID. It accepts any ID in Known plus Generic,
// ignoring case and surrounding whitespace.
func Parse(s string) (ID, bool) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	if id == Generic {
		return Generic, true
	}
	for _, k := range known {
		if id == k {
			return k, true
		}
	}
	return "", false
}

// DisplayName returns the human readable issuer name.
func (id ID) DisplayName() string {
	if name, ok := displayNames[id]; ok {
		return name
	}
	return string(id)
}

// IsGeneric reports whether id is the fallback issuer.
func (id ID) IsGeneric() bool {
	return id == Generic
}

func (id ID) String() string {
	return string(id)
}
