package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreFromRank_SingleItem(t *testing.T) {
	assert.Equal(t, 10.0, ScoreFromRank(0, 1))
}

func TestScoreFromRank_TopStrictlyAboveBottom(t *testing.T) {
	for _, n := range []int{2, 3, 5, 10, 50, 100, 1000} {
		top := ScoreFromRank(0, n)
		bottom := ScoreFromRank(n-1, n)
		assert.Greater(t, top, bottom, "N=%d", n)
	}
}

func TestScoreFromRank_Extremes(t *testing.T) {
	// La remise à l'échelle linéaire envoie exactement les positions
	// extrêmes sur les bornes
	for _, n := range []int{2, 7, 30} {
		assert.Equal(t, 10.0, ScoreFromRank(0, n), "N=%d", n)
		assert.Equal(t, 1.0, ScoreFromRank(n-1, n), "N=%d", n)
	}
}

func TestScoreFromRank_MonotoneNonIncreasing(t *testing.T) {
	for _, n := range []int{2, 4, 25, 200} {
		prev := ScoreFromRank(0, n)
		for i := 1; i < n; i++ {
			cur := ScoreFromRank(i, n)
			assert.LessOrEqual(t, cur, prev, "N=%d i=%d", n, i)
			prev = cur
		}
	}
}

func TestScoreFromRank_Bounds(t *testing.T) {
	for _, n := range []int{1, 2, 3, 9, 40, 500} {
		for i := 0; i < n; i++ {
			s := ScoreFromRank(i, n)
			assert.GreaterOrEqual(t, s, 1.0, "N=%d i=%d", n, i)
			assert.LessOrEqual(t, s, 10.0, "N=%d i=%d", n, i)
		}
	}
}

func TestScoreFromRank_MiddleClustersNearCenter(t *testing.T) {
	// Les quantiles normaux resserrent le milieu : la position médiane d'une
	// longue liste doit tomber près du centre de la plage
	mid := ScoreFromRank(50, 101)
	assert.InDelta(t, 5.5, mid, 0.2)
}

func TestScoreFromRank_OutOfRangeInputs(t *testing.T) {
	// Fonction totale : les entrées hors bornes sont ramenées aux extrêmes
	assert.Equal(t, ScoreFromRank(0, 10), ScoreFromRank(-3, 10))
	assert.Equal(t, ScoreFromRank(9, 10), ScoreFromRank(42, 10))
	assert.Equal(t, NeutralScore, ScoreFromRank(0, 0))
}

func TestErfinv_KnownValues(t *testing.T) {
	// erf(0.5) ≈ 0.5205 ; l'approximation de Winitzki doit inverser à ~3
	// chiffres significatifs
	assert.InDelta(t, 0.5, erfinv(0.5205), 0.005)
	assert.InDelta(t, -0.5, erfinv(-0.5205), 0.005)
	assert.InDelta(t, 0.0, erfinv(0), 1e-9)
}
