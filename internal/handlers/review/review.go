package review

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"matzip_back_end/internal/cache"
	"matzip_back_end/internal/config"
	"matzip_back_end/internal/ranking"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// GetMyReviews retourne le classement complet de l'utilisateur connecté
func GetMyReviews(c *gin.Context) {
	userID := c.GetString("user_id")

	reviews, err := loadUserReviews(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture classement"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// GetUserReviews retourne le classement public d'un autre utilisateur
func GetUserReviews(c *gin.Context) {
	targetID := c.Param("id")

	reviews, err := loadUserReviews(targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture classement"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// UpdateReview modifie le commentaire d'une review, et peut relancer un
// re-classement ciblé (la review est extraite puis réinsérée par comparaison)
func UpdateReview(c *gin.Context) {
	userID := c.GetString("user_id")
	reviewID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID review invalide"})
		return
	}

	var req struct {
		Comment *string `json:"comment"`
		Rerank  bool    `json:"rerank"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	// Validation avant tout accès base, comme à la création
	if req.Comment != nil {
		if strings.TrimSpace(*req.Comment) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Commentaire requis"})
			return
		}
		if utf8.RuneCountInString(*req.Comment) > maxCommentRunes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Commentaire trop long (30 caractères max)"})
			return
		}
	}

	reviews, err := loadUserReviews(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture classement"})
		return
	}

	// Position courante dans la liste ordonnée (pas le rank_index stocké,
	// qui peut avoir des trous)
	currentPos := -1
	for i, r := range reviews {
		if r.ID == reviewID {
			currentPos = i
			break
		}
	}
	if currentPos < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review introuvable"})
		return
	}

	if req.Comment != nil {
		session, err := reviewsSession()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
			return
		}

		if err := session.Query("UPDATE reviews SET comment = ? WHERE review_id = ?", *req.Comment, reviewID).Exec(); err != nil {
			log.Printf("❌ Erreur mise à jour commentaire: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour"})
			return
		}
		if err := session.Query("UPDATE reviews_by_user SET comment = ? WHERE user_id = ? AND review_id = ?",
			*req.Comment, userID, reviewID).Exec(); err != nil {
			log.Printf("⚠️ Erreur index reviews_by_user: %v", err)
		}
	}

	if !req.Rerank {
		c.JSON(http.StatusOK, gin.H{"message": "Review mise à jour"})
		return
	}

	// Re-classement : la review sort du classement, le sélecteur s'ouvre
	// directement sur le groupe qui contenait son ancien rang. L'action
	// "widen" du step rouvre l'intervalle complet si la nouvelle place est
	// ailleurs.
	rest := make([]ranking.SelectorItem, 0, len(reviews)-1)
	for _, r := range reviews {
		if r.ID != reviewID {
			rest = append(rest, ranking.SelectorItem{ReviewID: r.ID.String(), Label: r.Name})
		}
	}

	if len(rest) == 0 {
		// Seule review du classement : rien à comparer
		c.JSON(http.StatusOK, gin.H{"message": "Review mise à jour", "status": "completed"})
		return
	}

	focus := currentPos
	if focus > len(rest) {
		focus = len(rest)
	}
	st, err := ranking.FocusRank(rest, config.GroupSize(), focus)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur démarrage re-classement"})
		return
	}

	restIDs := make([]string, 0, len(rest))
	for _, it := range rest {
		restIDs = append(restIDs, it.ReviewID)
	}

	sess := &cache.RankingSession{
		UserID:       userID,
		Mode:         "rerank",
		EditReviewID: reviewID.String(),
		Phase:        "global",
		MinPos:       0,
		MaxPos:       len(rest) + 1, // tous les rangs 0..len(rest) restent atteignables
		GlobalIDs:    restIDs,
		CreatedAt:    time.Now(),
	}

	data, err := json.Marshal(st)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur session"})
		return
	}
	sess.Selector = data

	if err := cache.SaveRankingSession(sess, config.SessionTTL()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "in_progress",
		"phase":    sess.Phase,
		"selector": st,
	})
}

// DeleteReview retire une review du classement ; les rangs stockés des
// reviews restantes ne bougent pas, l'ordre se resserre à la lecture
func DeleteReview(c *gin.Context) {
	userID := c.GetString("user_id")
	reviewID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID review invalide"})
		return
	}

	if err := removeReview(userID, reviewID); err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review introuvable"})
			return
		}
		log.Printf("❌ Erreur suppression review: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression review"})
		return
	}

	cache.InvalidateUserLeaderboards(userID)

	log.Printf("🗑️ Review %s supprimée pour %s", reviewID, userID)
	c.JSON(http.StatusOK, gin.H{"message": "Review supprimée"})
}
