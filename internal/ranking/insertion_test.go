package ranking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkItems(n int) []SelectorItem {
	items := make([]SelectorItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, SelectorItem{ReviewID: fmt.Sprintf("r%d", i), Label: fmt.Sprintf("restaurant %d", i)})
	}
	return items
}

func ids(items []SelectorItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ReviewID)
	}
	return out
}

func TestStartSelector_RejectsBadGroupSize(t *testing.T) {
	_, err := StartSelector(mkItems(3), 0)
	assert.ErrorIs(t, err, ErrBadGroupSize)
}

func TestStartSelector_ShortListIsFlat(t *testing.T) {
	// L ≤ 2k : vue flat directe, tous les gaps sont des points d'insertion
	st, err := StartSelector(mkItems(4), 2)
	require.NoError(t, err)
	assert.Equal(t, SelectorFlat, st.Mode)
	assert.Len(t, st.Items, 4)

	// Les L+1 gaps donnent des rangs distincts et correctement décalés
	seen := make(map[int]bool)
	for gap := 0; gap <= 4; gap++ {
		pos, err := GapPosition(st, gap)
		require.NoError(t, err)
		assert.Equal(t, gap, pos)
		assert.False(t, seen[pos])
		seen[pos] = true
	}

	// Gap hors limites refusé
	_, err = GapPosition(st, 5)
	assert.ErrorIs(t, err, ErrGapOutOfRange)
}

func TestStartSelector_LongListDrills(t *testing.T) {
	// L > 2k : ⌈L/k⌉ chunks au premier niveau
	st, err := StartSelector(mkItems(11), 2)
	require.NoError(t, err)
	require.Equal(t, SelectorDrilling, st.Mode)
	assert.Len(t, st.Chunks, 6) // ⌈11/2⌉

	// Chaque chunk est ancré sur son premier item, le dernier est plus court
	assert.Equal(t, "r0", st.Chunks[0].Anchor.ReviewID)
	assert.Equal(t, 8, st.Chunks[4].Offset)
	assert.Equal(t, 1, st.Chunks[5].Size)

	// GapPosition refuse un état drilling
	_, err = GapPosition(st, 0)
	assert.ErrorIs(t, err, ErrNotFlat)
}

func TestDrill_LastGapYieldsOffsetPlusLength(t *testing.T) {
	candidates := mkItems(11)
	st, err := StartSelector(candidates, 2)
	require.NoError(t, err)

	for i, c := range st.Chunks {
		sub, err := Drill(candidates, 2, st, i)
		require.NoError(t, err, "chunk %d", i)
		require.Equal(t, SelectorFlat, sub.Mode)

		pos, err := GapPosition(sub, len(sub.Items))
		require.NoError(t, err)
		assert.Equal(t, c.Offset+c.Size, pos, "chunk %d", i)
	}
}

func TestDrill_Errors(t *testing.T) {
	candidates := mkItems(11)
	st, _ := StartSelector(candidates, 2)

	_, err := Drill(candidates, 2, st, 9)
	assert.Error(t, err)

	flat, _ := StartSelector(mkItems(3), 2)
	_, err = Drill(mkItems(3), 2, flat, 0)
	assert.ErrorIs(t, err, ErrNotDrilling)
}

func TestFocusRank_JumpsToContainingChunk(t *testing.T) {
	// Auto-focus : rééditer la review au rang 5 saute directement au chunk
	// qui la contient, sans renavigation
	candidates := mkItems(11)
	st, err := FocusRank(candidates, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, SelectorFlat, st.Mode)
	assert.Equal(t, 4, st.Base)
	assert.Equal(t, "r4", st.Items[0].ReviewID)

	// Liste courte : flat complet quel que soit le rang
	st, err = FocusRank(mkItems(3), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Base)
	assert.Len(t, st.Items, 3)
}

func TestBoundFromPosition(t *testing.T) {
	catIDs := []string{"r2", "r5", "r9"}

	b, err := BoundFromPosition(catIDs, 0)
	require.NoError(t, err)
	assert.True(t, b.Top)

	b, err = BoundFromPosition(catIDs, 2)
	require.NoError(t, err)
	assert.Equal(t, "r5", b.AfterReviewID)

	_, err = BoundFromPosition(catIDs, 4)
	assert.ErrorIs(t, err, ErrGapOutOfRange)
}

func TestGlobalInterval_CategoryTop(t *testing.T) {
	global := ids(mkItems(20))
	catIDs := []string{"r2", "r5", "r9", "r14"}

	lo, hi, err := GlobalInterval(global, catIDs, CategoryBound{Top: true})
	require.NoError(t, err)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 2, hi) // doit passer strictement devant l'ancien top (rang 2)
}

func TestGlobalInterval_CategoryTopAlreadyFirst(t *testing.T) {
	// L'ancien top de catégorie est déjà rang global 0 : intervalle vide,
	// rang forcé sans autre comparaison
	global := ids(mkItems(5))
	lo, hi, err := GlobalInterval(global, []string{"r0", "r3"}, CategoryBound{Top: true})
	require.NoError(t, err)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 0, hi)
	assert.Equal(t, 0, FinalRank(lo, hi, 99))
}

func TestGlobalInterval_EmptyCategory(t *testing.T) {
	global := ids(mkItems(5))
	lo, hi, err := GlobalInterval(global, nil, CategoryBound{Top: true})
	require.NoError(t, err)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 0, hi)
}

func TestGlobalInterval_AfterLastCategoryItem(t *testing.T) {
	// X dernier de sa catégorie : la fin de liste (rang N) reste atteignable
	global := ids(mkItems(20))
	catIDs := []string{"r2", "r5", "r9", "r14"}

	lo, hi, err := GlobalInterval(global, catIDs, CategoryBound{AfterReviewID: "r14"})
	require.NoError(t, err)
	assert.Equal(t, 15, lo)
	assert.Equal(t, 21, hi)
	assert.Equal(t, 20, FinalRank(lo, hi, 20))
}

func TestGlobalInterval_UnknownItem(t *testing.T) {
	global := ids(mkItems(5))
	_, _, err := GlobalInterval(global, []string{"r1"}, CategoryBound{AfterReviewID: "zz"})
	assert.Error(t, err)
}

func TestIntervalCandidates(t *testing.T) {
	global := mkItems(20)

	// [6, 9) : les items aux rangs 6 et 7 suffisent — 3 gaps pour 3 rangs
	cands := IntervalCandidates(global, 6, 9)
	require.Len(t, cands, 2)
	assert.Equal(t, "r6", cands[0].ReviewID)

	// Intervalle dégénéré : aucune comparaison à présenter
	assert.Empty(t, IntervalCandidates(global, 7, 7))
	assert.Empty(t, IntervalCandidates(global, 7, 8))
}

func TestInsertion_EndToEndKoreanCategory(t *testing.T) {
	// L'utilisateur a 20 reviews, dont 4 en "한식" aux rangs globaux
	// [2, 5, 9, 14]. Il insère un nouveau lieu 한식 « après » l'item de rang
	// catégorie 1 (rang global 5).
	global := mkItems(20)
	globalIDs := ids(global)
	catIDs := []string{"r2", "r5", "r9", "r14"}

	// Phase A : position 2 dans la catégorie = après r5
	bound, err := BoundFromPosition(catIDs, 2)
	require.NoError(t, err)

	// Phase B : intervalle [6, 9)
	lo, hi, err := GlobalInterval(globalIDs, catIDs, bound)
	require.NoError(t, err)
	require.Equal(t, 6, lo)
	require.Equal(t, 9, hi)

	cands := IntervalCandidates(global, lo, hi)
	require.Len(t, cands, 2)

	st, err := StartSelectorAt(cands, lo, 5)
	require.NoError(t, err)
	require.Equal(t, SelectorFlat, st.Mode)

	// Chaque gap de la vue flat donne un rang 6, 7 ou 8, et le score induit
	// sur l'échelle à 21 items tombe strictement entre ceux des rangs 5 et 9
	upper := ScoreFromRank(5, 21)
	lower := ScoreFromRank(9, 21)
	for gap := 0; gap <= len(cands); gap++ {
		pos, err := GapPosition(st, gap)
		require.NoError(t, err)
		rank := FinalRank(lo, hi, pos)
		assert.Equal(t, 6+gap, rank)

		score := ScoreFromRank(rank, 21)
		assert.Greater(t, score, lower, "gap %d", gap)
		assert.Less(t, score, upper, "gap %d", gap)
	}
}

func TestFinalRank_Clamps(t *testing.T) {
	assert.Equal(t, 4, FinalRank(4, 4, 0)) // dégénéré → min
	assert.Equal(t, 4, FinalRank(4, 9, 2))
	assert.Equal(t, 8, FinalRank(4, 9, 12))
	assert.Equal(t, 6, FinalRank(4, 9, 6))
}

func TestFocusRank_FullRangeReachableAfterReopen(t *testing.T) {
	items := mkItems(50)

	// La vue auto-focalisée ne couvre que le groupe de l'ancien rang
	st, err := FocusRank(items, 5, 42)
	require.NoError(t, err)
	assert.Equal(t, SelectorFlat, st.Mode)
	assert.Equal(t, 40, st.Base)

	first, err := GapPosition(st, 0)
	require.NoError(t, err)
	assert.Equal(t, 40, first)

	// Réouverture complète (action "widen") : tous les rangs redeviennent
	// atteignables, y compris le rang 0 et la fin de liste
	full, err := StartSelectorAt(items, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, SelectorDrilling, full.Mode)

	sub, err := Drill(items, 5, full, 0)
	require.NoError(t, err)
	pos, err := GapPosition(sub, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)

	sub, err = Drill(items, 5, full, len(full.Chunks)-1)
	require.NoError(t, err)
	pos, err = GapPosition(sub, len(sub.Items))
	require.NoError(t, err)
	assert.Equal(t, 50, pos)
}
