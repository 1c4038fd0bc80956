package review

import (
	"log"
	"sort"
	"time"

	"matzip_back_end/internal/database"
	"matzip_back_end/internal/models"
	"matzip_back_end/internal/ranking"

	"github.com/gocql/gocql"
)

// reviewsSession raccourci vers la session du keyspace reviews
func reviewsSession() (*gocql.Session, error) {
	return database.GetReviewsSession()
}

// loadUserReviews lit le classement complet d'un utilisateur, trié par rang.
// À rang égal (écriture concurrente perdue), la review la plus récente passe
// devant — l'ordre reste total et déterministe.
func loadUserReviews(userID string) ([]models.Review, error) {
	session, err := database.GetReviewsSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`
		SELECT review_id, name, category, address, lat, lng, comment, rank_index, global_score, created_at
		FROM reviews_by_user WHERE user_id = ?
	`, userID).Iter()

	var reviews []models.Review
	var r models.Review
	for iter.Scan(&r.ID, &r.Name, &r.Category, &r.Address, &r.Lat, &r.Lng, &r.Comment, &r.RankIndex, &r.GlobalScore, &r.CreatedAt) {
		r.UserID = userID
		reviews = append(reviews, r)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	sortByRank(reviews)
	return reviews, nil
}

// sortByRank ordonne un classement par rang stocké ; à rang égal la review la
// plus récente passe devant. C'est ce départage qui permet d'insérer sans
// réécrire les rangs des autres reviews.
func sortByRank(reviews []models.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		if reviews[i].RankIndex != reviews[j].RankIndex {
			return reviews[i].RankIndex < reviews[j].RankIndex
		}
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}

// categoryOf filtre le classement sur une catégorie, ordre global préservé
func categoryOf(reviews []models.Review, category string) []models.Review {
	var out []models.Review
	for _, r := range reviews {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// reviewIDs projette une liste de reviews sur leurs identifiants
func reviewIDs(reviews []models.Review) []string {
	out := make([]string, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, r.ID.String())
	}
	return out
}

// selectorItems construit les items présentés au client pendant le protocole
func selectorItems(reviews []models.Review) []ranking.SelectorItem {
	out := make([]ranking.SelectorItem, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, ranking.SelectorItem{ReviewID: r.ID.String(), Label: r.Name})
	}
	return out
}

// itemsByID retrouve les reviews d'un snapshot d'identifiants, dans l'ordre
func itemsByID(reviews []models.Review, ids []string) []ranking.SelectorItem {
	byID := make(map[string]models.Review, len(reviews))
	for _, r := range reviews {
		byID[r.ID.String()] = r
	}
	out := make([]ranking.SelectorItem, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, ranking.SelectorItem{ReviewID: r.ID.String(), Label: r.Name})
		}
	}
	return out
}

// placeAt borne la position d'insertion dans [0, N] et calcule le rank_index
// à stocker pour cette position. Aucun autre rang stocké n'est réécrit : le
// nouvel item reprend l'index de l'occupant de la position visée (le
// départage par date de sortByRank le place devant), ou dernier index + 1 en
// fin de liste. Une seule écriture par insertion, quel que soit N.
func placeAt(reviews []models.Review, pos int) (int, int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(reviews) {
		pos = len(reviews)
	}

	switch {
	case len(reviews) == 0:
		return pos, 0
	case pos < len(reviews):
		return pos, reviews[pos].RankIndex
	default:
		return pos, reviews[len(reviews)-1].RankIndex + 1
	}
}

// insertReviewAt insère la review à la position donnée. Seules les lignes de
// la nouvelle review sont écrites ; son score est un instantané calculé sur
// l'échelle à N+1 items. Retourne le classement résultant et la position
// réellement attribuée (bornée sur la liste rechargée).
func insertReviewAt(userID string, newReview models.Review, pos int) ([]models.Review, int, error) {
	reviews, err := loadUserReviews(userID)
	if err != nil {
		return nil, 0, err
	}

	pos, rankIdx := placeAt(reviews, pos)

	session, err := database.GetReviewsSession()
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	newReview.UserID = userID
	newReview.CreatedAt = now
	newReview.RankIndex = rankIdx
	newReview.GlobalScore = ranking.ScoreFromRank(pos, len(reviews)+1)

	err = session.Query(`
		INSERT INTO reviews (review_id, user_id, name, category, address, lat, lng, comment, rank_index, global_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, newReview.ID, userID, newReview.Name, newReview.Category, newReview.Address,
		newReview.Lat, newReview.Lng, newReview.Comment, rankIdx, newReview.GlobalScore, now).Exec()
	if err != nil {
		return nil, 0, err
	}

	err = session.Query(`
		INSERT INTO reviews_by_user (user_id, review_id, name, category, address, lat, lng, comment, rank_index, global_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, userID, newReview.ID, newReview.Name, newReview.Category, newReview.Address,
		newReview.Lat, newReview.Lng, newReview.Comment, rankIdx, newReview.GlobalScore, now).Exec()
	if err != nil {
		log.Printf("⚠️ Erreur index reviews_by_user: %v", err)
	}

	ranked := make([]models.Review, 0, len(reviews)+1)
	ranked = append(ranked, reviews[:pos]...)
	ranked = append(ranked, newReview)
	ranked = append(ranked, reviews[pos:]...)
	return ranked, pos, nil
}

// moveReviewTo déplace une review existante vers une nouvelle position. Seule
// la review déplacée est réécrite (rang et score re-instantanés), les rangs
// stockés des autres ne bougent pas.
func moveReviewTo(userID string, reviewID gocql.UUID, pos int) ([]models.Review, int, error) {
	reviews, err := loadUserReviews(userID)
	if err != nil {
		return nil, 0, err
	}

	var moved *models.Review
	rest := make([]models.Review, 0, len(reviews))
	for _, r := range reviews {
		if r.ID == reviewID {
			cp := r
			moved = &cp
			continue
		}
		rest = append(rest, r)
	}
	if moved == nil {
		return nil, 0, gocql.ErrNotFound
	}

	pos, rankIdx := placeAt(rest, pos)
	moved.RankIndex = rankIdx
	moved.GlobalScore = ranking.ScoreFromRank(pos, len(reviews))

	session, err := database.GetReviewsSession()
	if err != nil {
		return nil, 0, err
	}

	if err := session.Query(`UPDATE reviews SET rank_index = ?, global_score = ? WHERE review_id = ?`,
		rankIdx, moved.GlobalScore, reviewID).Exec(); err != nil {
		return nil, 0, err
	}
	if err := session.Query(`UPDATE reviews_by_user SET rank_index = ?, global_score = ? WHERE user_id = ? AND review_id = ?`,
		rankIdx, moved.GlobalScore, userID, reviewID).Exec(); err != nil {
		log.Printf("⚠️ Erreur index reviews_by_user: %v", err)
	}

	ranked := make([]models.Review, 0, len(reviews))
	ranked = append(ranked, rest[:pos]...)
	ranked = append(ranked, *moved)
	ranked = append(ranked, rest[pos:]...)
	return ranked, pos, nil
}

// removeReview supprime une review. Les rangs stockés des reviews restantes
// ne sont pas réécrits : le trou laissé se résorbe à la lecture (sortByRank).
func removeReview(userID string, reviewID gocql.UUID) error {
	reviews, err := loadUserReviews(userID)
	if err != nil {
		return err
	}

	found := false
	for _, r := range reviews {
		if r.ID == reviewID {
			found = true
			break
		}
	}
	if !found {
		return gocql.ErrNotFound
	}

	session, err := database.GetReviewsSession()
	if err != nil {
		return err
	}

	if err := session.Query("DELETE FROM reviews WHERE review_id = ?", reviewID).Exec(); err != nil {
		return err
	}
	if err := session.Query("DELETE FROM reviews_by_user WHERE user_id = ? AND review_id = ?", userID, reviewID).Exec(); err != nil {
		log.Printf("⚠️ Erreur suppression index reviews_by_user: %v", err)
	}
	return nil
}
