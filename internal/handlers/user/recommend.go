package user

import (
	"log"
	"net/http"

	"matzip_back_end/internal/database"
	"matzip_back_end/internal/models"
	"matzip_back_end/internal/ranking"

	"github.com/gin-gonic/gin"
)

// RecommendUsers suggère des comptes à suivre d'après le recouvrement des
// goûts : wishlists et lieux classés en commun
func RecommendUsers(c *gin.Context) {
	userID := c.GetString("user_id")

	usersSession, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}
	reviewsSession, err := database.GetReviewsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Candidats : tous les comptes
	iter := usersSession.Query("SELECT user_id, name, nickname, photo_url FROM users").Iter()
	var candidates []models.User
	var u models.User
	for iter.Scan(&u.ID, &u.Name, &u.Nickname, &u.PhotoURL) {
		candidates = append(candidates, u)
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur scan users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture utilisateurs"})
		return
	}

	// Les comptes déjà suivis sont exclus des suggestions
	excluded := make(map[string]bool)
	iter = usersSession.Query("SELECT target_id FROM following WHERE user_id = ?", userID).Iter()
	var targetID string
	for iter.Scan(&targetID) {
		excluded[targetID] = true
	}
	iter.Close()

	// Corpus de reviews
	iter = reviewsSession.Query("SELECT user_id, name FROM reviews").Iter()
	var allReviews []models.Review
	var r models.Review
	for iter.Scan(&r.UserID, &r.Name) {
		allReviews = append(allReviews, r)
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur scan reviews: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture reviews"})
		return
	}

	// Wishlists de tout le monde
	wishlists := make(map[string][]string)
	iter = reviewsSession.Query("SELECT user_id, name FROM wishlist_by_user").Iter()
	var wUserID, wName string
	for iter.Scan(&wUserID, &wName) {
		wishlists[wUserID] = append(wishlists[wUserID], wName)
	}
	iter.Close()

	recs := ranking.Recommend(userID, candidates, allReviews, wishlists, excluded, 0)

	out := make([]gin.H, 0, len(recs))
	for _, rec := range recs {
		out = append(out, gin.H{
			"userId":   rec.User.ID,
			"name":     rec.User.Name,
			"nickname": rec.User.Nickname,
			"photoUrl": rec.User.PhotoURL,
			"score":    rec.Score,
		})
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": out, "total": len(out)})
}
