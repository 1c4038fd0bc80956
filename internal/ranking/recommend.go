package ranking

import (
	"sort"
	"sync"

	"matzip_back_end/internal/models"
)

const (
	// La wishlist pèse trois fois plus qu'une review : vouloir les mêmes
	// adresses est un signal de goût plus fort que les avoir visitées
	wishlistOverlapWeight = 3.0
	reviewOverlapWeight   = 1.0

	defaultRecommendLimit = 10
	recommendBatchSize    = 16
)

// Recommendation : candidat à suivre, avec son score de similarité de goût
type Recommendation struct {
	User  models.User `json:"user"`
	Score float64     `json:"score"`
}

// Recommend calcule la similarité de goût entre l'utilisateur courant et
// chaque candidat à partir du recouvrement des noms de restaurants
// (wishlist et reviews). Les candidats déjà suivis, soi-même, et les scores
// nuls sont écartés. Scan O(users × reviews moyennes), sans index —
// acceptable uniquement pour des populations petites à moyennes.
func Recommend(currentUserID string, candidates []models.User, allReviews []models.Review, wishlists map[string][]string, excludeIDs map[string]bool, limit int) []Recommendation {
	if limit <= 0 {
		limit = defaultRecommendLimit
	}

	reviewedBy := make(map[string]map[string]bool)
	for _, r := range allReviews {
		set, ok := reviewedBy[r.UserID]
		if !ok {
			set = make(map[string]bool)
			reviewedBy[r.UserID] = set
		}
		set[r.Name] = true
	}

	myReviewed := reviewedBy[currentUserID]
	myWishlist := make(map[string]bool, len(wishlists[currentUserID]))
	for _, name := range wishlists[currentUserID] {
		myWishlist[name] = true
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []Recommendation
	)

	// Évaluation par lots parallèles — chaque candidat est indépendant
	for start := 0; start < len(candidates); start += recommendBatchSize {
		end := start + recommendBatchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		wg.Add(1)
		go func(batch []models.User) {
			defer wg.Done()

			local := make([]Recommendation, 0, len(batch))
			for _, cand := range batch {
				if cand.ID == currentUserID || excludeIDs[cand.ID] {
					continue
				}

				score := wishlistOverlapWeight*float64(overlapCount(myWishlist, wishlists[cand.ID])) +
					reviewOverlapWeight*float64(overlapSet(myReviewed, reviewedBy[cand.ID]))
				if score <= 0 {
					continue
				}
				local = append(local, Recommendation{User: cand, Score: score})
			}

			mu.Lock()
			results = append(results, local...)
			mu.Unlock()
		}(candidates[start:end])
	}
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].User.ID < results[j].User.ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func overlapCount(mine map[string]bool, theirs []string) int {
	seen := make(map[string]bool, len(theirs))
	n := 0
	for _, name := range theirs {
		if mine[name] && !seen[name] {
			seen[name] = true
			n++
		}
	}
	return n
}

func overlapSet(mine, theirs map[string]bool) int {
	n := 0
	for name := range theirs {
		if mine[name] {
			n++
		}
	}
	return n
}
