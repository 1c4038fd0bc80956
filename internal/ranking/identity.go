package ranking

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// IdentityKey dérive la clé d'identité d'un restaurant à partir du nom et
// des coordonnées arrondies à 4 décimales. Deux reviews partageant cette clé
// désignent le même restaurant physique.
//
// Fonction totale : des coordonnées NaN/Inf sont ramenées à zéro plutôt que
// d'échouer — le regroupement dégrade alors en collision par nom seul.
func IdentityKey(name string, lat, lng float64) string {
	return fmt.Sprintf("%s|%.4f|%.4f", strings.TrimSpace(name), round4(lat), round4(lng))
}

// FranchiseKey regroupe par nom seul — toutes les adresses d'une même
// enseigne tombent dans le même bucket
func FranchiseKey(name string) string {
	return strings.TrimSpace(name)
}

// ParseCoord parse une coordonnée texte, zéro si invalide
func ParseCoord(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return sanitizeCoord(v)
}

func sanitizeCoord(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// round4 arrondit à 4 décimales en neutralisant le zéro négatif, pour que
// -0.00001 et +0.00001 produisent la même clé
func round4(v float64) float64 {
	r := math.Round(sanitizeCoord(v)*1e4) / 1e4
	if r == 0 {
		return 0
	}
	return r
}
