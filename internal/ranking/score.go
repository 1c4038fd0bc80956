package ranking

import "math"

// Bornes du score cardinal dérivé du classement personnel
const (
	MinScore     = 1.0
	MaxScore     = 10.0
	NeutralScore = 5.0 // toute première review : rien à comparer
)

// ScoreFromRank convertit une position 0-based dans le classement personnel
// en score cardinal [1.0, 10.0].
//
// Les N items classés sont traités comme des statistiques d'ordre d'une loi
// normale standard : on calcule le quantile supérieur p = (N-i-0.5)/N puis
// le z-score via l'inverse de la CDF normale, et on remet à l'échelle
// linéairement entre minZ et maxZ. Le score est arrondi à une décimale
// avant persistance.
func ScoreFromRank(rankIndex, totalCount int) float64 {
	if totalCount <= 0 {
		// Non défini par le modèle — l'appelant doit traiter la première
		// review avant d'appeler cette fonction
		return NeutralScore
	}
	if totalCount == 1 {
		return MaxScore
	}

	if rankIndex < 0 {
		rankIndex = 0
	}
	if rankIndex >= totalCount {
		rankIndex = totalCount - 1
	}

	z := zScoreAt(rankIndex, totalCount)
	maxZ := zScoreAt(0, totalCount)
	minZ := zScoreAt(totalCount-1, totalCount)

	// Garde contre une plage dégénérée
	if maxZ-minZ < 1e-12 {
		return roundScore(NeutralScore)
	}

	score := MinScore + (z-minZ)*(MaxScore-MinScore)/(maxZ-minZ)
	return roundScore(score)
}

// zScoreAt retourne le z-score de l'item en position i (0 = meilleur) parmi n
func zScoreAt(i, n int) float64 {
	p := (float64(n) - float64(i) - 0.5) / float64(n)
	return probit(p)
}

// probit inverse la CDF de la loi normale standard
func probit(p float64) float64 {
	return math.Sqrt2 * erfinv(2*p-1)
}

// erfinv — approximation de Winitzki de l'inverse de la fonction d'erreur.
// Précision ~3 chiffres significatifs, suffisante pour le modèle de score.
func erfinv(x float64) float64 {
	if x >= 1 {
		x = 1 - 1e-9
	}
	if x <= -1 {
		x = -1 + 1e-9
	}

	const a = 0.147
	ln := math.Log(1 - x*x)
	t1 := 2/(math.Pi*a) + ln/2
	t2 := ln / a

	r := math.Sqrt(math.Sqrt(t1*t1-t2) - t1)
	if x < 0 {
		return -r
	}
	return r
}

// roundScore arrondit à une décimale (forme persistée)
func roundScore(v float64) float64 {
	return math.Round(v*10) / 10
}
