package review

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"matzip_back_end/internal/cache"
	"matzip_back_end/internal/config"
	"matzip_back_end/internal/models"
	"matzip_back_end/internal/ranking"
	"matzip_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

const maxCommentRunes = 30

// StartRankingSession démarre une session d'insertion : le lieu est validé,
// puis le protocole de comparaison commence (phase catégorie d'abord).
// Une session déjà en cours est remplacée sans confirmation.
func StartRankingSession(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Name     string  `json:"name" binding:"required"`
		Category string  `json:"category"`
		Address  string  `json:"address"`
		Lat      float64 `json:"lat"`
		Lng      float64 `json:"lng"`
		Comment  string  `json:"comment" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	if strings.TrimSpace(req.Comment) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Commentaire requis"})
		return
	}
	if utf8.RuneCountInString(req.Comment) > maxCommentRunes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Commentaire trop long (30 caractères max)"})
		return
	}

	reviews, err := loadUserReviews(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture classement"})
		return
	}

	// Un même lieu ne peut être classé qu'une fois
	newKey := ranking.IdentityKey(req.Name, req.Lat, req.Lng)
	for _, r := range reviews {
		if ranking.IdentityKey(r.Name, r.Lat, r.Lng) == newKey {
			c.JSON(http.StatusConflict, gin.H{"error": "Ce lieu est déjà dans votre classement"})
			return
		}
	}

	// Première review de l'utilisateur : pas de comparaison possible,
	// score neutre attribué directement
	if len(reviews) == 0 {
		finalizeFirstReview(c, userID, req.Name, req.Category, req.Address, req.Lat, req.Lng, req.Comment)
		return
	}

	sess := &cache.RankingSession{
		UserID:      userID,
		Mode:        "insert",
		Name:        req.Name,
		Category:    req.Category,
		Address:     req.Address,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Comment:     req.Comment,
		GlobalIDs:   reviewIDs(reviews),
		CategoryIDs: reviewIDs(categoryOf(reviews, req.Category)),
		CreatedAt:   time.Now(),
	}

	// Catégorie vide : la borne catégorie est triviale (top), on passe
	// directement à l'intervalle global
	if len(sess.CategoryIDs) == 0 {
		enterGlobalPhase(c, sess, ranking.CategoryBound{Top: true})
		return
	}

	// Phase A : comparaison au sein de la catégorie
	catItems := itemsByID(reviews, sess.CategoryIDs)
	st, err := ranking.StartSelector(catItems, config.GroupSize())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur démarrage du classement"})
		return
	}

	sess.Phase = "category"
	if !saveSelector(c, sess, st) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "in_progress",
		"phase":    sess.Phase,
		"selector": st,
	})
}

// RankingSessionStep avance le protocole : "chunk" descend dans un groupe,
// "gap" choisit un point d'insertion, "widen" rouvre le sélecteur sur toute
// la liste candidate (sortie de la vue auto-focalisée d'un re-classement)
func RankingSessionStep(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Action string `json:"action" binding:"required,oneof=chunk gap widen"`
		Index  int    `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	sess, err := cache.GetRankingSession(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture session"})
		return
	}
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucune session de classement en cours"})
		return
	}

	var st ranking.SelectorState
	if err := json.Unmarshal(sess.Selector, &st); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session corrompue"})
		return
	}

	reviews, err := loadUserReviews(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture classement"})
		return
	}

	switch sess.Phase {
	case "category":
		stepCategory(c, sess, reviews, st, req.Action, req.Index)
	case "global":
		stepGlobal(c, sess, reviews, st, req.Action, req.Index)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session corrompue"})
	}
}

// CancelRankingSession abandonne la session en cours
func CancelRankingSession(c *gin.Context) {
	userID := c.GetString("user_id")
	if err := cache.DeleteRankingSession(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session abandonnée"})
}

// --- Étapes du protocole ---

func stepCategory(c *gin.Context, sess *cache.RankingSession, reviews []models.Review, st ranking.SelectorState, action string, index int) {
	catItems := itemsByID(reviews, sess.CategoryIDs)

	if action == "widen" {
		full, err := ranking.StartSelector(catItems, config.GroupSize())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sélecteur"})
			return
		}
		if !saveSelector(c, sess, full) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "in_progress", "phase": sess.Phase, "selector": full})
		return
	}

	if action == "chunk" {
		sub, err := ranking.Drill(catItems, config.GroupSize(), st, index)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Groupe invalide"})
			return
		}
		if !saveSelector(c, sess, sub) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "in_progress", "phase": sess.Phase, "selector": sub})
		return
	}

	// gap : la position dans la catégorie devient une borne pour la phase globale
	pos, err := ranking.GapPosition(st, index)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Position invalide"})
		return
	}

	bound, err := ranking.BoundFromPosition(sess.CategoryIDs, pos)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Position invalide"})
		return
	}

	enterGlobalPhase(c, sess, bound)
}

func stepGlobal(c *gin.Context, sess *cache.RankingSession, reviews []models.Review, st ranking.SelectorState, action string, index int) {
	candidates := ranking.IntervalCandidates(itemsByID(reviews, sess.GlobalIDs), sess.MinPos, sess.MaxPos)

	if action == "widen" {
		// Depuis une vue auto-focalisée, tout l'intervalle redevient navigable
		full, err := ranking.StartSelectorAt(candidates, sess.MinPos, config.GroupSize())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sélecteur"})
			return
		}
		if !saveSelector(c, sess, full) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "in_progress", "phase": sess.Phase, "selector": full})
		return
	}

	if action == "chunk" {
		sub, err := ranking.Drill(candidates, config.GroupSize(), st, index)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Groupe invalide"})
			return
		}
		if !saveSelector(c, sess, sub) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "in_progress", "phase": sess.Phase, "selector": sub})
		return
	}

	pos, err := ranking.GapPosition(st, index)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Position invalide"})
		return
	}

	finalizeSession(c, sess, ranking.FinalRank(sess.MinPos, sess.MaxPos, pos))
}

// enterGlobalPhase traduit la borne catégorie en intervalle global et lance la
// phase B. Un intervalle sans comparaison possible finalise immédiatement.
func enterGlobalPhase(c *gin.Context, sess *cache.RankingSession, bound ranking.CategoryBound) {
	lo, hi, err := ranking.GlobalInterval(sess.GlobalIDs, sess.CategoryIDs, bound)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur calcul d'intervalle"})
		return
	}

	sess.MinPos = lo
	sess.MaxPos = hi

	reviews, err := loadUserReviews(sess.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture classement"})
		return
	}

	allItems := itemsByID(reviews, sess.GlobalIDs)
	candidates := ranking.IntervalCandidates(allItems, lo, hi)
	if len(candidates) == 0 {
		// Rang déjà déterminé par les comparaisons de catégorie
		finalizeSession(c, sess, ranking.FinalRank(lo, hi, lo))
		return
	}

	st, err := ranking.StartSelectorAt(candidates, lo, config.GroupSize())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur démarrage phase globale"})
		return
	}

	sess.Phase = "global"
	if !saveSelector(c, sess, st) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "in_progress",
		"phase":    sess.Phase,
		"selector": st,
		"interval": gin.H{"min": lo, "max": hi},
	})
}

// --- Finalisation ---

func finalizeFirstReview(c *gin.Context, userID, name, category, address string, lat, lng float64, comment string) {
	reviewID := gocql.TimeUUID()
	now := time.Now()

	session, err := reviewsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	err = session.Query(`
		INSERT INTO reviews (review_id, user_id, name, category, address, lat, lng, comment, rank_index, global_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, reviewID, userID, name, category, address, lat, lng, comment, 0, ranking.NeutralScore, now).Exec()
	if err != nil {
		log.Printf("❌ Erreur création review: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création review"})
		return
	}

	err = session.Query(`
		INSERT INTO reviews_by_user (user_id, review_id, name, category, address, lat, lng, comment, rank_index, global_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, userID, reviewID, name, category, address, lat, lng, comment, 0, ranking.NeutralScore, now).Exec()
	if err != nil {
		log.Printf("⚠️ Erreur index reviews_by_user: %v", err)
	}

	afterRankingWrite(userID, name, category, address, lat, lng)

	log.Printf("⭐ Première review de %s: %s (score neutre)", userID, name)
	c.JSON(http.StatusCreated, gin.H{
		"status": "completed",
		"review": models.Review{
			ID: reviewID, UserID: userID, Name: name, Category: category,
			Address: address, Lat: lat, Lng: lng, Comment: comment,
			RankIndex: 0, GlobalScore: ranking.NeutralScore, CreatedAt: now,
		},
	})
}

func finalizeSession(c *gin.Context, sess *cache.RankingSession, rank int) {
	userID := sess.UserID

	if sess.Mode == "rerank" {
		editID, err := gocql.ParseUUID(sess.EditReviewID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Session corrompue"})
			return
		}
		ranked, pos, err := moveReviewTo(userID, editID, rank)
		if err != nil {
			log.Printf("❌ Erreur re-classement: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur re-classement"})
			return
		}
		cache.DeleteRankingSession(userID)
		cache.InvalidateUserLeaderboards(userID)

		log.Printf("⭐ Review %s déplacée au rang %d pour %s", sess.EditReviewID, pos, userID)
		c.JSON(http.StatusOK, gin.H{"status": "completed", "rank": pos, "total": len(ranked)})
		return
	}

	newReview := models.Review{
		ID:       gocql.TimeUUID(),
		Name:     sess.Name,
		Category: sess.Category,
		Address:  sess.Address,
		Lat:      sess.Lat,
		Lng:      sess.Lng,
		Comment:  sess.Comment,
	}

	// La position est rebornée par le store sur la liste rechargée : le
	// classement a pu raccourcir depuis le snapshot de la session (suppression
	// depuis un autre appareil), le rang de la session peut donc déborder.
	ranked, pos, err := insertReviewAt(userID, newReview, rank)
	if err != nil {
		log.Printf("❌ Erreur insertion review: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur insertion review"})
		return
	}

	cache.DeleteRankingSession(userID)
	afterRankingWrite(userID, sess.Name, sess.Category, sess.Address, sess.Lat, sess.Lng)

	log.Printf("⭐ Review insérée au rang %d/%d pour %s: %s", pos, len(ranked), userID, sess.Name)
	c.JSON(http.StatusCreated, gin.H{
		"status": "completed",
		"rank":   pos,
		"total":  len(ranked),
		"review": ranked[pos],
	})
}

// afterRankingWrite : effets de bord communs à toute écriture de classement
func afterRankingWrite(userID, name, category, address string, lat, lng float64) {
	cache.InvalidateUserLeaderboards(userID)
	services.IndexPlace(models.Place{Name: name, Category: category, Address: address, Lat: lat, Lng: lng})

	// Classer un lieu le retire de la wishlist
	key := ranking.IdentityKey(name, lat, lng)
	if session, err := reviewsSession(); err == nil {
		if err := session.Query("DELETE FROM wishlist_by_user WHERE user_id = ? AND place_key = ?", userID, key).Exec(); err == nil {
			cache.DeleteCache("wishlist:" + userID)
		}
	}
}

func saveSelector(c *gin.Context, sess *cache.RankingSession, st ranking.SelectorState) bool {
	data, err := json.Marshal(st)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur session"})
		return false
	}
	sess.Selector = data

	if err := cache.SaveRankingSession(sess, config.SessionTTL()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde session"})
		return false
	}
	return true
}
