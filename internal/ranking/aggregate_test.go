package ranking

import (
	"fmt"
	"testing"

	"matzip_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mkReview fabrique une review minimale pour les tests d'agrégation
func mkReview(userID, name string, lat, lng, score float64) models.Review {
	return models.Review{
		UserID:      userID,
		Name:        name,
		Lat:         lat,
		Lng:         lng,
		GlobalScore: score,
	}
}

// corpusFor donne à un utilisateur `n` reviews de remplissage pour fixer son
// poids de fiabilité
func corpusFor(userID string, n int) []models.Review {
	out := make([]models.Review, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, mkReview(userID, fmt.Sprintf("filler-%s-%d", userID, i), float64(i), float64(i), 5.0))
	}
	return out
}

func TestReliabilityWeights_StepFunction(t *testing.T) {
	tests := []struct {
		reviews int
		weight  float64
	}{
		{1, 0.3},
		{2, 0.3},
		{3, 0.7},
		{9, 0.7},
		{10, 1.0},
		{40, 1.0},
	}

	for _, tt := range tests {
		corpus := corpusFor("u", tt.reviews)
		w := ReliabilityWeights(corpus)
		assert.Equal(t, tt.weight, w["u"], "%d reviews", tt.reviews)
	}
}

func TestAggregate_GroupsByIdentity(t *testing.T) {
	scoped := []models.Review{
		mkReview("u1", "국밥집", 37.5665, 126.9780, 8.0),
		mkReview("u2", "국밥집", 37.56650001, 126.9780, 6.0), // bruit sous le seuil → même bucket
		mkReview("u3", "국밥집", 37.60, 126.9780, 9.0),        // autre adresse → autre bucket
	}

	out := Aggregate(scoped, scoped, ModeFriends, 0)
	require.Len(t, out, 2)
}

func TestAggregate_MyModeUsesRawMax(t *testing.T) {
	scoped := []models.Review{
		mkReview("me", "초밥집", 37.1, 127.1, 9.5),
	}
	out := Aggregate(scoped, scoped, ModeMy, 0)
	require.Len(t, out, 1)
	assert.Equal(t, 9.5, out[0].DisplayScore)
}

func TestAggregate_GlobalThresholdExcludesThinBuckets(t *testing.T) {
	scoped := []models.Review{
		mkReview("u1", "한우집", 37.2, 127.2, 10.0),
		mkReview("u2", "한우집", 37.2, 127.2, 9.8),
	}
	out := Aggregate(scoped, scoped, ModeGlobal, 0)
	assert.Empty(t, out, "v=2 < 3 doit être exclu du leaderboard public")
}

func TestAggregate_GlobalSeedWithoutReviewsExcluded(t *testing.T) {
	seeds := []SeedEntry{{Key: "k", Name: "카페", Score: 8.0}}
	out := AggregateWithSeeds(nil, seeds, nil, ModeGlobal, 0)
	assert.Empty(t, out, "bucket v=0 exclu en mode global")
}

func TestAggregate_BayesianShrinkageLimits(t *testing.T) {
	// R fixé à 9.0, on fait varier v : le score doit converger de C=5 vers R
	buildScoped := func(v int) []models.Review {
		out := make([]models.Review, 0, v)
		for i := 0; i < v; i++ {
			out = append(out, mkReview(fmt.Sprintf("u%d", i), "양꼬치집", 37.3, 127.3, 9.0))
		}
		return out
	}

	tests := []struct {
		v        int
		expected float64
	}{
		{1, (9.0*1 + 5.0*5) / 6},   // 5.67 — dominé par l'a priori
		{5, (9.0*5 + 5.0*5) / 10},  // 7.0
		{50, (9.0*50 + 5.0*5) / 55}, // 8.64 — proche de R
	}

	for _, tt := range tests {
		scoped := buildScoped(tt.v)
		out := Aggregate(scoped, scoped, ModeWishlist, 0)
		require.Len(t, out, 1, "v=%d", tt.v)
		assert.InDelta(t, tt.expected, out[0].DisplayScore, 0.01, "v=%d", tt.v)
	}
}

func TestAggregate_FriendsModeZeroFriendsNoCorrection(t *testing.T) {
	// friendCount=0 ⇒ m=0 ⇒ displayScore == R exactement, quel que soit v
	scoped := []models.Review{
		mkReview("u1", "포차", 37.4, 127.4, 8.0),
		mkReview("u2", "포차", 37.4, 127.4, 8.0),
	}
	out := Aggregate(scoped, scoped, ModeFriends, 0)
	require.Len(t, out, 1)
	assert.Equal(t, 8.0, out[0].DisplayScore)
}

func TestAggregate_FriendsModeScalesWithFriendCount(t *testing.T) {
	scoped := []models.Review{
		mkReview("u1", "치킨집", 37.5, 127.5, 9.0),
		mkReview("u2", "치킨집", 37.5, 127.5, 9.0),
	}

	// m = min(5, friendCount) : 2 amis → correction partielle
	out := Aggregate(scoped, scoped, ModeFriends, 2)
	require.Len(t, out, 1)
	assert.InDelta(t, (9.0*2+5.0*2)/4, out[0].DisplayScore, 0.01)

	// 12 amis → plafonné à m=5, identique au mode global
	out = Aggregate(scoped, scoped, ModeFriends, 12)
	require.Len(t, out, 1)
	assert.InDelta(t, (9.0*2+5.0*5)/7, out[0].DisplayScore, 0.01)
}

func TestAggregate_WeightedAverageScenario(t *testing.T) {
	// Restaurant "X" : 9.5 d'un reviewer fiable (≥10 reviews, poids 1.0) et
	// 9.0 d'un débutant (poids 0.3) → R ≈ 9.38 ; shrinkage v=2 → ≈ 6.25
	corpus := corpusFor("fiable", 10)
	corpus = append(corpus, mkReview("novice", "X", 37.6, 127.6, 9.0))

	rA := mkReview("fiable", "X", 37.6, 127.6, 9.5)
	rB := mkReview("novice", "X", 37.6, 127.6, 9.0)
	corpus = append(corpus, rA)

	scoped := []models.Review{rA, rB}
	out := Aggregate(scoped, corpus, ModeWishlist, 0)
	require.Len(t, out, 1)
	assert.InDelta(t, 6.25, out[0].DisplayScore, 0.01)

	// Le même bucket est invisible en mode global (v=2 < 3)
	assert.Empty(t, Aggregate(scoped, corpus, ModeGlobal, 0))
}

func TestAggregate_OrphanReviewerGetsLowestTier(t *testing.T) {
	// Review dont l'auteur est absent du corpus : tier de confiance minimal,
	// l'agrégation n'échoue jamais
	scoped := []models.Review{mkReview("fantôme", "곱창집", 37.7, 127.7, 10.0)}
	out := Aggregate(scoped, nil, ModeFriends, 0)
	require.Len(t, out, 1)
	assert.Equal(t, 10.0, out[0].DisplayScore)
	assert.Equal(t, 0.3, out[0].WeightSum)
}

func TestAggregate_TieBreakByWeightSum(t *testing.T) {
	corpus := corpusFor("fiable", 10)
	corpus = append(corpus, corpusFor("novice", 1)...)

	scoped := []models.Review{
		mkReview("novice", "가게B", 37.8, 127.8, 8.0),
		mkReview("fiable", "가게A", 37.9, 127.9, 8.0),
	}

	out := Aggregate(scoped, corpus, ModeMy, 0)
	require.Len(t, out, 2)
	// Scores d'affichage égaux : le contributeur le mieux pondéré passe devant
	assert.Equal(t, "가게A", out[0].Name)
	assert.Equal(t, "가게B", out[1].Name)
}

func TestAggregate_SortedDescending(t *testing.T) {
	scoped := []models.Review{
		mkReview("u1", "별로집", 37.1, 127.0, 3.0),
		mkReview("u1", "최고집", 37.2, 127.0, 9.9),
		mkReview("u1", "보통집", 37.3, 127.0, 6.0),
	}
	out := Aggregate(scoped, scoped, ModeMy, 0)
	require.Len(t, out, 3)
	assert.Equal(t, "최고집", out[0].Name)
	assert.Equal(t, "보통집", out[1].Name)
	assert.Equal(t, "별로집", out[2].Name)
}

func TestAggregate_FranchiseGroupsByNameOnly(t *testing.T) {
	scoped := []models.Review{
		mkReview("u1", "맘스터치", 37.1, 127.0, 8.0),
		mkReview("u2", "맘스터치", 35.1, 129.0, 6.0), // autre ville, même enseigne
	}
	out := Aggregate(scoped, scoped, ModeFranchise, 0)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].ReviewCount)
	// Mode hors politique connue : moyenne brute sans correction
	assert.InDelta(t, 7.0, out[0].DisplayScore, 0.01)
}

func TestAggregate_WishlistSeedPassthrough(t *testing.T) {
	// Seed sans review : R = score pré-calculé, v=0 → shrinkage complet vers C
	seeds := []SeedEntry{{Key: "k", Name: "노포", Score: 9.0}}
	out := AggregateWithSeeds(nil, seeds, nil, ModeWishlist, 0)
	require.Len(t, out, 1)
	assert.InDelta(t, 5.0, out[0].DisplayScore, 0.001)
	assert.Equal(t, 0, out[0].ReviewCount)
}
