package review

import (
	"testing"
	"time"

	"matzip_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mkRanked construit un classement trié dont les rangs stockés sont donnés
// (trous et doublons permis) ; les dates de création croissent avec l'index
func mkRanked(indexes ...int) []models.Review {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Review, 0, len(indexes))
	for i, idx := range indexes {
		out = append(out, models.Review{
			ID:        gocql.TimeUUID(),
			RankIndex: idx,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

func TestPlaceAt_ClampsPosition(t *testing.T) {
	reviews := mkRanked(0, 1, 2)

	pos, idx := placeAt(reviews, -3)
	assert.Equal(t, 0, pos)
	assert.Equal(t, 0, idx)

	// Une session peut viser un rang devenu hors liste (suppression depuis
	// un autre appareil) : la position est rebornée, jamais de débordement
	pos, idx = placeAt(reviews, 99)
	assert.Equal(t, 3, pos)
	assert.Equal(t, 3, idx)

	pos, idx = placeAt(nil, 7)
	assert.Equal(t, 0, pos)
	assert.Equal(t, 0, idx)
}

func TestPlaceAt_InsertsWithoutRewritingOtherRanks(t *testing.T) {
	// Rangs stockés avec trous, hérités d'anciennes suppressions
	reviews := mkRanked(2, 3, 7)

	pos, idx := placeAt(reviews, 1)
	require.Equal(t, 1, pos)
	assert.Equal(t, 3, idx)

	// Le nouvel item reprend l'index de l'occupant ; plus récent, il passe
	// devant au tri sans qu'aucun autre rang ne soit réécrit
	inserted := models.Review{ID: gocql.TimeUUID(), RankIndex: idx, CreatedAt: time.Now()}
	all := append(append([]models.Review{}, reviews...), inserted)
	sortByRank(all)

	assert.Equal(t, inserted.ID, all[pos].ID)
	assert.Equal(t, 2, all[0].RankIndex)
	assert.Equal(t, 7, all[3].RankIndex)
}

func TestPlaceAt_AppendsAfterLast(t *testing.T) {
	reviews := mkRanked(0, 4, 9)

	pos, idx := placeAt(reviews, 3)
	assert.Equal(t, 3, pos)
	assert.Equal(t, 10, idx)
}

func TestSortByRank_TieNewestFirst(t *testing.T) {
	older := models.Review{ID: gocql.TimeUUID(), RankIndex: 5,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := models.Review{ID: gocql.TimeUUID(), RankIndex: 5,
		CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}

	all := []models.Review{older, newer}
	sortByRank(all)

	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, older.ID, all[1].ID)
}
