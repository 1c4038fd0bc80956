package ranking

import (
	"fmt"
	"testing"

	"matzip_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommend_ScoresByOverlap(t *testing.T) {
	me := "me"
	candidates := []models.User{
		{ID: "a", Nickname: "gourmand_a"},
		{ID: "b", Nickname: "gourmand_b"},
	}

	allReviews := []models.Review{
		{UserID: me, Name: "국밥집"},
		{UserID: me, Name: "초밥집"},
		{UserID: "a", Name: "국밥집"}, // 1 review commune
		{UserID: "b", Name: "국밥집"}, // 1 review commune
		{UserID: "b", Name: "초밥집"}, // 2 reviews communes
	}

	wishlists := map[string][]string{
		me:  {"노포", "카페"},
		"a": {"노포"}, // 1 wishlist commune
	}

	out := Recommend(me, candidates, allReviews, wishlists, nil, 10)
	require.Len(t, out, 2)

	// a : 3.0×1 + 1.0×1 = 4.0 ; b : 1.0×2 = 2.0
	assert.Equal(t, "a", out[0].User.ID)
	assert.Equal(t, 4.0, out[0].Score)
	assert.Equal(t, "b", out[1].User.ID)
	assert.Equal(t, 2.0, out[1].Score)
}

func TestRecommend_DropsZeroScoreAndExcluded(t *testing.T) {
	me := "me"
	candidates := []models.User{
		{ID: "me"},       // soi-même
		{ID: "followed"}, // déjà suivi
		{ID: "stranger"}, // aucun recouvrement
		{ID: "match"},
	}

	allReviews := []models.Review{
		{UserID: me, Name: "국밥집"},
		{UserID: "followed", Name: "국밥집"},
		{UserID: "match", Name: "국밥집"},
		{UserID: "stranger", Name: "떡볶이집"},
	}

	out := Recommend(me, candidates, allReviews, nil, map[string]bool{"followed": true}, 10)
	require.Len(t, out, 1)
	assert.Equal(t, "match", out[0].User.ID)
}

func TestRecommend_DuplicateNamesCountOnce(t *testing.T) {
	me := "me"
	candidates := []models.User{{ID: "a"}}

	// Le candidat a visité deux adresses du même nom : l'intersection se
	// fait sur les noms distincts
	allReviews := []models.Review{
		{UserID: me, Name: "맘스터치"},
		{UserID: "a", Name: "맘스터치"},
		{UserID: "a", Name: "맘스터치"},
	}

	out := Recommend(me, candidates, allReviews, nil, nil, 10)
	require.Len(t, out, 1)
	assert.Equal(t, 1.0, out[0].Score)
}

func TestRecommend_CapsAndOrdersDeterministically(t *testing.T) {
	me := "me"
	var candidates []models.User
	allReviews := []models.Review{{UserID: me, Name: "국밥집"}}

	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("cand%02d", i)
		candidates = append(candidates, models.User{ID: id})
		allReviews = append(allReviews, models.Review{UserID: id, Name: "국밥집"})
	}

	out := Recommend(me, candidates, allReviews, nil, nil, 0) // 0 → limite par défaut
	require.Len(t, out, 10)

	// Scores égaux → ordre stable par identifiant
	for i := 0; i < len(out)-1; i++ {
		assert.Less(t, out[i].User.ID, out[i+1].User.ID)
	}
}
