package user

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"matzip_back_end/internal/cache"
	"matzip_back_end/internal/database"
	"matzip_back_end/internal/models"
	"matzip_back_end/internal/ranking"

	"github.com/gin-gonic/gin"
)

// GetWishlist récupère la liste des lieux à visiter
func GetWishlist(c *gin.Context) {
	userID := c.GetString("user_id")

	// Récupérer depuis Redis d'abord
	cacheKey := "wishlist:" + userID
	if cached, err := cache.GetCache(cacheKey); err == nil {
		var items []models.WishlistItem
		if json.Unmarshal([]byte(cached), &items) == nil {
			c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
			return
		}
	}

	// Sinon depuis ScyllaDB
	session, err := database.GetReviewsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`
		SELECT place_key, name, category, address, lat, lng, added_at
		FROM wishlist_by_user WHERE user_id = ?
	`, userID).Iter()

	var items []models.WishlistItem
	var it models.WishlistItem
	for iter.Scan(&it.PlaceKey, &it.Name, &it.Category, &it.Address, &it.Lat, &it.Lng, &it.AddedAt) {
		it.UserID = userID
		items = append(items, it)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture wishlist"})
		return
	}

	if items == nil {
		items = []models.WishlistItem{}
	}

	// Mettre en cache
	if data, err := json.Marshal(items); err == nil {
		cache.SetCache(cacheKey, data, 10*time.Minute)
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// AddToWishlist ajoute un lieu à visiter. Un lieu déjà classé est refusé —
// on ne met pas en wishlist ce qu'on a déjà noté.
func AddToWishlist(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Name     string  `json:"name" binding:"required"`
		Category string  `json:"category"`
		Address  string  `json:"address"`
		Lat      float64 `json:"lat"`
		Lng      float64 `json:"lng"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	session, err := database.GetReviewsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	placeKey := ranking.IdentityKey(req.Name, req.Lat, req.Lng)

	// Déjà dans le classement ?
	iter := session.Query("SELECT name, lat, lng FROM reviews_by_user WHERE user_id = ?", userID).Iter()
	var name string
	var lat, lng float64
	for iter.Scan(&name, &lat, &lng) {
		if ranking.IdentityKey(name, lat, lng) == placeKey {
			iter.Close()
			c.JSON(http.StatusConflict, gin.H{"error": "Ce lieu est déjà dans votre classement"})
			return
		}
	}
	iter.Close()

	err = session.Query(`
		INSERT INTO wishlist_by_user (user_id, place_key, name, category, address, lat, lng, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, userID, placeKey, req.Name, req.Category, req.Address, req.Lat, req.Lng, time.Now()).Exec()
	if err != nil {
		log.Printf("❌ Erreur ajout wishlist: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout à la wishlist"})
		return
	}

	// Invalider les caches dépendants
	cache.DeleteCache("wishlist:" + userID)
	cache.DeleteCache("leaderboard:wishlist:" + userID)

	log.Printf("⭐ Lieu %s ajouté à la wishlist de %s", req.Name, userID)
	c.JSON(http.StatusOK, gin.H{
		"message":   "Lieu ajouté à la wishlist",
		"place_key": placeKey,
	})
}

// RemoveFromWishlist retire un lieu de la wishlist
func RemoveFromWishlist(c *gin.Context) {
	userID := c.GetString("user_id")
	placeKey := c.Param("placeKey")

	session, err := database.GetReviewsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	err = session.Query("DELETE FROM wishlist_by_user WHERE user_id = ? AND place_key = ?",
		userID, placeKey).Exec()
	if err != nil {
		log.Printf("❌ Erreur suppression wishlist: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression de la wishlist"})
		return
	}

	cache.DeleteCache("wishlist:" + userID)
	cache.DeleteCache("leaderboard:wishlist:" + userID)

	log.Printf("🗑️ Lieu %s retiré de la wishlist de %s", placeKey, userID)
	c.JSON(http.StatusOK, gin.H{"message": "Lieu retiré de la wishlist"})
}
