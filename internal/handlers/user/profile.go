package user

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"matzip_back_end/internal/cache"
	"matzip_back_end/internal/database"
	"matzip_back_end/internal/models"
	"matzip_back_end/internal/services"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

// Me retourne le profil de l'utilisateur connecté, compteurs sociaux compris
func Me(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	user.ID = userID
	err := database.GetPreparedGetUserByID().Bind(userID).Scan(
		&user.Email, &user.Password, &user.Name, &user.Nickname,
		&user.Provider, &user.ProviderID, &user.PhotoURL,
	)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	followers, following := liveCounts(userID)

	photoURL := ""
	if user.PhotoURL != "" {
		if u, err := services.PresignedPhotoURL(user.PhotoURL); err == nil {
			photoURL = u
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":         user.ID,
		"name":           user.Name,
		"nickname":       user.Nickname,
		"email":          user.Email,
		"provider":       user.Provider,
		"photoUrl":       photoURL,
		"followerCount":  followers,
		"followingCount": following,
	})
}

// GetUserProfile retourne le profil public d'un autre utilisateur
func GetUserProfile(c *gin.Context) {
	targetID := c.Param("id")

	var user models.User
	user.ID = targetID
	err := database.GetPreparedGetUserByID().Bind(targetID).Scan(
		&user.Email, &user.Password, &user.Name, &user.Nickname,
		&user.Provider, &user.ProviderID, &user.PhotoURL,
	)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	followers, following := liveCounts(targetID)

	photoURL := ""
	if user.PhotoURL != "" {
		if u, err := services.PresignedPhotoURL(user.PhotoURL); err == nil {
			photoURL = u
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":         user.ID,
		"name":           user.Name,
		"nickname":       user.Nickname,
		"photoUrl":       photoURL,
		"followerCount":  followers,
		"followingCount": following,
	})
}

// UpdateProfile modifie nom et/ou pseudo (unicité du pseudo vérifiée)
func UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		Name     string `json:"name"`
		Nickname string `json:"nickname"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var user models.User
	user.ID = userID
	err = database.GetPreparedGetUserByID().Bind(userID).Scan(
		&user.Email, &user.Password, &user.Name, &user.Nickname,
		&user.Provider, &user.ProviderID, &user.PhotoURL,
	)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	if input.Name != "" {
		user.Name = input.Name
	}

	if input.Nickname != "" && input.Nickname != user.Nickname {
		var takenBy string
		if err := database.GetPreparedGetUserByNickname().Bind(input.Nickname).Scan(&takenBy); err == nil && takenBy != userID {
			c.JSON(http.StatusConflict, gin.H{"error": "Ce pseudo est déjà utilisé"})
			return
		}

		// Migrer l'index de pseudo
		session.Query("DELETE FROM users_by_nickname WHERE nickname = ?", user.Nickname).Exec()
		session.Query("INSERT INTO users_by_nickname (nickname, user_id) VALUES (?, ?)",
			input.Nickname, userID).Exec()
		user.Nickname = input.Nickname
	}

	err = database.GetPreparedUpdateUser().Bind(
		user.Name, user.Nickname, user.PhotoURL, time.Now(), userID,
	).Exec()
	if err != nil {
		log.Printf("❌ Erreur mise à jour profil: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour profil"})
		return
	}

	services.IndexUserNickname(userID, user.Nickname, user.Name, user.PhotoURL)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Profil mis à jour",
		"name":     user.Name,
		"nickname": user.Nickname,
	})
}

// UploadProfilePhoto stocke la photo de profil dans MinIO
func UploadProfilePhoto(c *gin.Context) {
	userID := c.GetString("user_id")

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo manquante"})
		return
	}

	objectName, err := services.UploadProfilePhoto(userID, file)
	if err != nil {
		log.Printf("❌ Erreur upload photo: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload photo"})
		return
	}

	session, err := database.GetUsersSession()
	if err == nil {
		session.Query("UPDATE users SET photo_url = ?, updated_at = ? WHERE user_id = ?",
			objectName, time.Now(), userID).Exec()
	}

	photoURL, _ := services.PresignedPhotoURL(objectName)

	log.Printf("📸 Photo de profil mise à jour pour %s", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Photo mise à jour", "photoUrl": photoURL})
}

// ProfileQR génère un QR code PNG pointant vers le profil public — pour
// partager son classement en vrai, au restaurant
func ProfileQR(c *gin.Context) {
	userID := c.GetString("user_id")

	frontend := os.Getenv("FRONTEND_URL")
	if frontend == "" {
		frontend = "http://localhost:5173"
	}

	png, err := qrcode.Encode(fmt.Sprintf("%s/users/%s", frontend, userID), qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération QR"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// DeleteAccount supprime le compte et toutes ses données
func DeleteAccount(c *gin.Context) {
	userID := c.GetString("user_id")

	usersSession, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var user models.User
	user.ID = userID
	err = database.GetPreparedGetUserByID().Bind(userID).Scan(
		&user.Email, &user.Password, &user.Name, &user.Nickname,
		&user.Provider, &user.ProviderID, &user.PhotoURL,
	)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	// Reviews et wishlist
	reviewsSession, err := database.GetReviewsSession()
	if err == nil {
		iter := reviewsSession.Query("SELECT review_id FROM reviews_by_user WHERE user_id = ?", userID).Iter()
		var reviewID string
		for iter.Scan(&reviewID) {
			reviewsSession.Query("DELETE FROM reviews WHERE review_id = ?", reviewID).Exec()
		}
		iter.Close()
		reviewsSession.Query("DELETE FROM reviews_by_user WHERE user_id = ?", userID).Exec()
		reviewsSession.Query("DELETE FROM wishlist_by_user WHERE user_id = ?", userID).Exec()
	}

	// Edges de follow dans les deux sens
	iter := usersSession.Query("SELECT target_id FROM following WHERE user_id = ?", userID).Iter()
	var targetID string
	for iter.Scan(&targetID) {
		usersSession.Query("DELETE FROM followers WHERE user_id = ? AND target_id = ?", targetID, userID).Exec()
	}
	iter.Close()
	iter = usersSession.Query("SELECT target_id FROM followers WHERE user_id = ?", userID).Iter()
	for iter.Scan(&targetID) {
		usersSession.Query("DELETE FROM following WHERE user_id = ? AND target_id = ?", targetID, userID).Exec()
	}
	iter.Close()
	usersSession.Query("DELETE FROM following WHERE user_id = ?", userID).Exec()
	usersSession.Query("DELETE FROM followers WHERE user_id = ?", userID).Exec()

	// Index et profil
	usersSession.Query("DELETE FROM users_by_email WHERE email = ?", user.Email).Exec()
	usersSession.Query("DELETE FROM users_by_nickname WHERE nickname = ?", user.Nickname).Exec()
	usersSession.Query("DELETE FROM users WHERE user_id = ?", userID).Exec()

	services.DeleteProfilePhoto(user.PhotoURL)
	services.DeleteUserFromIndex(userID)
	cache.DeleteRankingSession(userID)
	cache.InvalidateUserLeaderboards(userID)
	cache.DeleteCache("wishlist:" + userID)

	log.Printf("🗑️ Compte supprimé: %s", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Compte supprimé"})
}

// liveCounts lit les compteurs sociaux directement depuis les edges. Les
// compteurs Cassandra peuvent dériver après un batch partiel : les edges
// font foi, les counters ne servent qu'aux stats internes.
func liveCounts(userID string) (followers int, following int) {
	session, err := database.GetUsersSession()
	if err != nil {
		return 0, 0
	}

	if err := session.Query("SELECT COUNT(*) FROM followers WHERE user_id = ?", userID).Scan(&followers); err != nil {
		followers = 0
	}
	if err := session.Query("SELECT COUNT(*) FROM following WHERE user_id = ?", userID).Scan(&following); err != nil {
		following = 0
	}
	return followers, following
}
