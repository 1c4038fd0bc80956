package ranking

import (
	"math"
	"sort"

	"matzip_back_end/internal/models"
)

// ViewMode : politique statistique appliquée au leaderboard
type ViewMode string

const (
	ModeMy        ViewMode = "my"
	ModeGlobal    ViewMode = "global"
	ModeFriends   ViewMode = "friends"
	ModeWishlist  ViewMode = "wishlist"
	ModeFranchise ViewMode = "franchise"
)

const (
	// Shrinkage bayésien : moyenne a priori et force de l'a priori
	priorMean     = 5.0
	priorStrength = 5.0

	// En mode global, un restaurant avec moins de 3 avis est exclu
	globalMinReviews = 3
)

// AggregatedRestaurant : entité dérivée, reconstruite à chaque lecture,
// jamais persistée ni mutée en place.
type AggregatedRestaurant struct {
	Key          string          `json:"key"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Address      string          `json:"address"`
	Lat          float64         `json:"lat"`
	Lng          float64         `json:"lng"`
	DisplayScore float64         `json:"display_score"`
	ReviewCount  int             `json:"review_count"`
	Reviews      []models.Review `json:"reviews,omitempty"`

	// Somme des poids de fiabilité des contributeurs — sert de tie-break
	WeightSum float64 `json:"-"`
}

// SeedEntry : entrée wishlist sans review brute ; son score pré-calculé
// sert directement de moyenne R dans le bucket (passthrough)
type SeedEntry struct {
	Key      string
	Name     string
	Category string
	Address  string
	Lat      float64
	Lng      float64
	Score    float64
}

// ReliabilityWeights calcule le poids de fiabilité de chaque utilisateur
// à partir du corpus complet (non filtré) : les reviewers actifs pèsent
// plus lourd. Fonction en escalier volontairement non continue pour ne pas
// être optimisable par un utilisateur.
func ReliabilityWeights(corpus []models.Review) map[string]float64 {
	counts := make(map[string]int, len(corpus))
	for _, r := range corpus {
		counts[r.UserID]++
	}

	weights := make(map[string]float64, len(counts))
	for userID, n := range counts {
		weights[userID] = reliabilityWeight(n)
	}
	return weights
}

func reliabilityWeight(reviewCount int) float64 {
	switch {
	case reviewCount <= 2:
		return 0.3
	case reviewCount < 10:
		return 0.7
	default:
		return 1.0
	}
}

// Aggregate regroupe les reviews du scope courant par identité de restaurant
// et calcule un score d'affichage par bucket selon le mode de vue.
// Le corpus complet sert uniquement au calcul des poids de fiabilité.
func Aggregate(scoped []models.Review, corpus []models.Review, mode ViewMode, friendCount int) []AggregatedRestaurant {
	return AggregateWithSeeds(scoped, nil, corpus, mode, friendCount)
}

// AggregateWithSeeds ajoute des entrées wishlist sans review (passthrough)
// aux buckets issus des reviews.
func AggregateWithSeeds(scoped []models.Review, seeds []SeedEntry, corpus []models.Review, mode ViewMode, friendCount int) []AggregatedRestaurant {
	weights := ReliabilityWeights(corpus)

	type bucket struct {
		agg       AggregatedRestaurant
		scoreSum  float64 // Σ(score brut × poids)
		weightSum float64 // Σ(poids)
		maxScore  float64
		fallback  float64 // score passthrough (wishlist)
		hasFB     bool
	}

	buckets := make(map[string]*bucket)
	order := make([]string, 0)

	keyOf := func(name string, lat, lng float64) string {
		if mode == ModeFranchise {
			return FranchiseKey(name)
		}
		return IdentityKey(name, lat, lng)
	}

	for _, r := range scoped {
		key := keyOf(r.Name, r.Lat, r.Lng)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{agg: AggregatedRestaurant{
				Key:      key,
				Name:     r.Name,
				Category: r.Category,
				Address:  r.Address,
				Lat:      r.Lat,
				Lng:      r.Lng,
			}}
			buckets[key] = b
			order = append(order, key)
		}

		w, ok := weights[r.UserID]
		if !ok {
			// Review orpheline d'un utilisateur sans corpus : tier le plus bas
			w = reliabilityWeight(0)
		}

		b.agg.Reviews = append(b.agg.Reviews, r)
		b.scoreSum += r.GlobalScore * w
		b.weightSum += w
		if r.GlobalScore > b.maxScore {
			b.maxScore = r.GlobalScore
		}
	}

	for _, s := range seeds {
		if _, ok := buckets[s.Key]; ok {
			continue
		}
		buckets[s.Key] = &bucket{
			agg: AggregatedRestaurant{
				Key:      s.Key,
				Name:     s.Name,
				Category: s.Category,
				Address:  s.Address,
				Lat:      s.Lat,
				Lng:      s.Lng,
			},
			fallback: s.Score,
			hasFB:    true,
		}
		order = append(order, s.Key)
	}

	results := make([]AggregatedRestaurant, 0, len(buckets))
	for _, key := range order {
		b := buckets[key]
		v := len(b.agg.Reviews)

		// Moyenne brute pondérée R — pleine précision, l'arrondi n'intervient
		// qu'à l'affichage
		var rawAvg float64
		switch {
		case b.weightSum > 0:
			rawAvg = b.scoreSum / b.weightSum
		case b.hasFB:
			rawAvg = b.fallback
		}

		var display float64
		switch mode {
		case ModeMy:
			// Vue personnelle : exactement ce que l'utilisateur a classé
			display = b.maxScore
		case ModeGlobal, ModeWishlist:
			display = bayesianShrink(rawAvg, float64(v), priorStrength)
		case ModeFriends:
			m := math.Min(priorStrength, float64(friendCount))
			display = bayesianShrink(rawAvg, float64(v), m)
		default:
			display = rawAvg
		}

		if mode == ModeGlobal && v < globalMinReviews {
			// Entrée non corroborée : exclue du leaderboard public
			continue
		}

		b.agg.DisplayScore = roundDisplay(display)
		b.agg.ReviewCount = v
		b.agg.WeightSum = b.weightSum
		results = append(results, b.agg)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].DisplayScore != results[j].DisplayScore {
			return results[i].DisplayScore > results[j].DisplayScore
		}
		// À score égal, le bucket le mieux corroboré passe devant
		if results[i].WeightSum != results[j].WeightSum {
			return results[i].WeightSum > results[j].WeightSum
		}
		return results[i].Key < results[j].Key
	})

	return results
}

// bayesianShrink tire une moyenne petit-échantillon vers l'a priori C=5.0 :
// (R·v + C·m) / (v + m). Avec m=0, retourne R tel quel.
func bayesianShrink(rawAvg, sampleSize, strength float64) float64 {
	if sampleSize+strength == 0 {
		return rawAvg
	}
	return (rawAvg*sampleSize + priorMean*strength) / (sampleSize + strength)
}

func roundDisplay(v float64) float64 {
	return math.Round(v*100) / 100
}
