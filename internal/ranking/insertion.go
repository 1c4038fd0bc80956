package ranking

import (
	"errors"
	"fmt"
)

// Protocole d'insertion hiérarchique : localiser le point d'insertion d'un
// nouvel item dans une liste ordonnée de taille arbitraire en O(log n)
// interactions, sans jamais présenter plus de ⌈N/k⌉ choix à la fois.
//
// L'état du sélecteur est une variante taguée sérialisable — aucun état
// ambiant de composant UI, l'algorithme se teste indépendamment du front.

var (
	ErrNotFlat       = errors.New("le sélecteur n'est pas en mode flat")
	ErrNotDrilling   = errors.New("le sélecteur n'est pas en mode drilling")
	ErrGapOutOfRange = errors.New("position de gap hors limites")
	ErrBadGroupSize  = errors.New("la taille de groupe doit être >= 1")
)

type SelectorMode string

const (
	SelectorFlat     SelectorMode = "flat"
	SelectorDrilling SelectorMode = "drilling"
)

// SelectorItem : un item existant présenté à l'utilisateur pour comparaison
type SelectorItem struct {
	ReviewID string `json:"review_id"`
	Label    string `json:"label"`
}

// Chunk : tranche contiguë de la liste candidate, représentée par son
// premier item (ancre)
type Chunk struct {
	Offset int          `json:"offset"`
	Size   int          `json:"size"`
	Anchor SelectorItem `json:"anchor"`
}

// SelectorState : état sérialisable du group-drill.
// En mode flat, Base est l'offset de Items dans la liste candidate complète.
type SelectorState struct {
	Mode   SelectorMode   `json:"mode"`
	Base   int            `json:"base"`
	Items  []SelectorItem `json:"items,omitempty"`
	Chunks []Chunk        `json:"chunks,omitempty"`
}

// StartSelector construit l'état initial du group-drill sur une liste
// candidate déjà ordonnée. Liste courte (≤ 2k) : vue flat directe. Sinon,
// découpage en chunks de taille k (le dernier peut être plus court).
//
// Une liste candidate vide doit être court-circuitée vers le rang 0 par
// l'appelant avant d'invoquer le protocole.
func StartSelector(candidates []SelectorItem, groupSize int) (SelectorState, error) {
	return StartSelectorAt(candidates, 0, groupSize)
}

// StartSelectorAt démarre le sélecteur sur une tranche dont le premier item
// occupe le rang `base` dans la liste complète (phase B : base = min de
// l'intervalle, pour que les positions retournées soient des rangs globaux).
func StartSelectorAt(candidates []SelectorItem, base, groupSize int) (SelectorState, error) {
	if groupSize < 1 {
		return SelectorState{}, ErrBadGroupSize
	}
	return startAt(candidates, base, groupSize), nil
}

func startAt(candidates []SelectorItem, base, groupSize int) SelectorState {
	if len(candidates) <= 2*groupSize {
		return SelectorState{Mode: SelectorFlat, Base: base, Items: candidates}
	}

	chunks := make([]Chunk, 0, (len(candidates)+groupSize-1)/groupSize)
	for off := 0; off < len(candidates); off += groupSize {
		size := groupSize
		if off+size > len(candidates) {
			size = len(candidates) - off
		}
		chunks = append(chunks, Chunk{
			Offset: base + off,
			Size:   size,
			Anchor: candidates[off],
		})
	}
	return SelectorState{Mode: SelectorDrilling, Base: base, Chunks: chunks}
}

// Drill descend dans le chunk choisi et retourne le sous-sélecteur, l'offset
// du chunk étant reporté dans Base.
func Drill(candidates []SelectorItem, groupSize int, st SelectorState, chunkIndex int) (SelectorState, error) {
	if st.Mode != SelectorDrilling {
		return SelectorState{}, ErrNotDrilling
	}
	if chunkIndex < 0 || chunkIndex >= len(st.Chunks) {
		return SelectorState{}, fmt.Errorf("chunk %d inexistant (%d chunks)", chunkIndex, len(st.Chunks))
	}

	c := st.Chunks[chunkIndex]
	local := c.Offset - st.Base
	sub := candidates[local : local+c.Size]
	return startAt(sub, c.Offset, groupSize), nil
}

// FocusRank : point d'entrée auto-focus — pour rééditer une review existante,
// présélectionne le chunk contenant son rang et saute directement à la vue
// flat, sans renavigation de la hiérarchie.
func FocusRank(candidates []SelectorItem, groupSize, rank int) (SelectorState, error) {
	if groupSize < 1 {
		return SelectorState{}, ErrBadGroupSize
	}
	if len(candidates) <= 2*groupSize {
		return SelectorState{Mode: SelectorFlat, Base: 0, Items: candidates}, nil
	}
	if rank < 0 {
		rank = 0
	}
	if rank >= len(candidates) {
		rank = len(candidates) - 1
	}

	off := (rank / groupSize) * groupSize
	size := groupSize
	if off+size > len(candidates) {
		size = len(candidates) - off
	}
	return SelectorState{Mode: SelectorFlat, Base: off, Items: candidates[off : off+size]}, nil
}

// GapPosition traduit un gap local de la vue flat en position d'insertion
// absolue dans la liste candidate complète. gap=0 insère avant le premier
// item affiché, gap=len(Items) après le dernier.
func GapPosition(st SelectorState, gap int) (int, error) {
	if st.Mode != SelectorFlat {
		return 0, ErrNotFlat
	}
	if gap < 0 || gap > len(st.Items) {
		return 0, ErrGapOutOfRange
	}
	return st.Base + gap, nil
}

// --- Composition phase A (catégorie) → phase B (intervalle global) ---

// CategoryBound : résultat de la phase A sur le sous-ensemble catégorie
type CategoryBound struct {
	Top           bool   `json:"top"`                 // inséré avant tous les items de la catégorie
	AfterReviewID string `json:"after_review_id,omitempty"` // sinon : inséré après cet item
}

// BoundFromPosition convertit la position d'insertion absolue de la phase A
// (0..C) en borne de catégorie.
func BoundFromPosition(categoryIDs []string, position int) (CategoryBound, error) {
	if position < 0 || position > len(categoryIDs) {
		return CategoryBound{}, ErrGapOutOfRange
	}
	if position == 0 {
		return CategoryBound{Top: true}, nil
	}
	return CategoryBound{AfterReviewID: categoryIDs[position-1]}, nil
}

// GlobalInterval traduit la borne de catégorie en intervalle [min, max) de
// rangs globaux valides pour le nouvel item.
//
// Convention : les items encadrants ne sont jamais déplacés — l'item doit se
// glisser strictement entre eux. max = N+1 quand la borne est la fin de liste
// (un ajout après le dernier item reste possible).
func GlobalInterval(globalIDs, categoryIDs []string, bound CategoryBound) (int, int, error) {
	pos := make(map[string]int, len(globalIDs))
	for i, id := range globalIDs {
		pos[id] = i
	}

	if bound.Top {
		if len(categoryIDs) == 0 {
			return 0, 0, nil
		}
		top, ok := pos[categoryIDs[0]]
		if !ok {
			return 0, 0, fmt.Errorf("item de catégorie %s absent de la liste globale", categoryIDs[0])
		}
		return 0, top, nil
	}

	after, ok := pos[bound.AfterReviewID]
	if !ok {
		return 0, 0, fmt.Errorf("item %s absent de la liste globale", bound.AfterReviewID)
	}

	catIdx := -1
	for i, id := range categoryIDs {
		if id == bound.AfterReviewID {
			catIdx = i
			break
		}
	}
	if catIdx < 0 {
		return 0, 0, fmt.Errorf("item %s absent de la catégorie", bound.AfterReviewID)
	}

	lo := after + 1
	if catIdx+1 < len(categoryIDs) {
		next, ok := pos[categoryIDs[catIdx+1]]
		if !ok {
			return 0, 0, fmt.Errorf("item de catégorie %s absent de la liste globale", categoryIDs[catIdx+1])
		}
		return lo, next, nil
	}
	// Dernier de sa catégorie : la fin de liste est atteignable
	return lo, len(globalIDs) + 1, nil
}

// IntervalCandidates extrait les items présentés en phase B : ceux qui
// occupent les rangs min..max-2. n items ⇒ n+1 gaps ⇒ exactement les rangs
// finaux {min, …, max-1}. Intervalle dégénéré (min ≥ max) ⇒ liste vide, le
// rang est forcé à min sans autre comparaison.
func IntervalCandidates(global []SelectorItem, min, max int) []SelectorItem {
	hi := max - 1
	if hi > len(global) {
		hi = len(global)
	}
	if min >= hi {
		return nil
	}
	return global[min:hi]
}

// FinalRank résout le rang final de la phase B : intervalle vide ⇒ min,
// sinon position d'insertion absolue issue du sélecteur (déjà exprimée en
// rang global puisque Base = min).
func FinalRank(min, max, position int) int {
	if min >= max {
		return min
	}
	if position < min {
		return min
	}
	if position >= max {
		return max - 1
	}
	return position
}
