package pricing

import (
	"regexp"
	"strings"

	"github.com/aurum/jewelstore/internal/domain/shared"
)

// Metal is the precious metal a piece is made of
type Metal string

const (
	MetalGold     Metal = "gold"
	MetalSilver   Metal = "silver"
	MetalPlatinum Metal = "platinum"
)

// AllMetals lists supported metals
var AllMetals = []Metal{MetalGold, MetalSilver, MetalPlatinum}

// IsValid reports whether the metal is supported
func (m Metal) IsValid() bool {
	switch m {
	case MetalGold, MetalSilver, MetalPlatinum:
		return true
	}
	return false
}

// ParseMetal normalizes and validates a metal name
func ParseMetal(s string) (Metal, error) {
	m := Metal(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", shared.NewDomainError("INVALID_METAL", "Metal must be one of gold, silver, platinum")
	}
	return m, nil
}

// purityPattern accepts karat grades (24K, 22K, 18K ...) and millesimal fineness (999, 925, 950 ...)
var purityPattern = regexp.MustCompile(`^([1-9]|1[0-9]|2[0-4])K$|^[1-9][0-9]{2}$`)

// NormalizePurity uppercases a purity grade and validates its shape
func NormalizePurity(s string) (string, error) {
	p := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	p = strings.TrimSuffix(p, "T") // 22KT -> 22K
	if !purityPattern.MatchString(p) {
		return "", shared.NewDomainError("INVALID_PURITY", "Purity must be a karat grade like 22K or a fineness like 925")
	}
	return p, nil
}
