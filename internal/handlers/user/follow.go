package user

import (
	"log"
	"net/http"
	"time"

	"matzip_back_end/internal/cache"
	"matzip_back_end/internal/database"
	"matzip_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// FollowUser crée la relation de suivi. Les deux edges (following/followers)
// partent dans un batch logged : soit les deux existent, soit aucun. Les
// compteurs partent dans un batch counter séparé — Cassandra interdit de
// mélanger counters et écritures normales.
func FollowUser(c *gin.Context) {
	userID := c.GetString("user_id")
	targetID := c.Param("id")

	if targetID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Impossible de se suivre soi-même"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// La cible existe ?
	var target models.User
	target.ID = targetID
	err = database.GetPreparedGetUserByID().Bind(targetID).Scan(
		&target.Email, &target.Password, &target.Name, &target.Nickname,
		&target.Provider, &target.ProviderID, &target.PhotoURL,
	)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	// Déjà suivi ?
	var existing string
	if err := session.Query("SELECT target_id FROM following WHERE user_id = ? AND target_id = ?",
		userID, targetID).Scan(&existing); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Vous suivez déjà cet utilisateur"})
		return
	}

	// Profil du suiveur pour dénormaliser l'edge followers
	var me models.User
	me.ID = userID
	database.GetPreparedGetUserByID().Bind(userID).Scan(
		&me.Email, &me.Password, &me.Name, &me.Nickname,
		&me.Provider, &me.ProviderID, &me.PhotoURL,
	)

	now := time.Now()

	batch := session.NewBatch(gocql.LoggedBatch)
	batch.Query(`INSERT INTO following (user_id, target_id, name, nickname, photo_url, followed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, targetID, target.Name, target.Nickname, target.PhotoURL, now)
	batch.Query(`INSERT INTO followers (user_id, target_id, name, nickname, photo_url, followed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		targetID, userID, me.Name, me.Nickname, me.PhotoURL, now)

	if err := session.ExecuteBatch(batch); err != nil {
		log.Printf("❌ Erreur follow: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur follow"})
		return
	}

	counterBatch := session.NewBatch(gocql.CounterBatch)
	counterBatch.Query("UPDATE user_counters SET following_count = following_count + 1 WHERE user_id = ?", userID)
	counterBatch.Query("UPDATE user_counters SET follower_count = follower_count + 1 WHERE user_id = ?", targetID)
	if err := session.ExecuteBatch(counterBatch); err != nil {
		log.Printf("⚠️ Erreur compteurs follow: %v", err)
	}

	// Le leaderboard "friends" du suiveur change de périmètre
	cache.DeleteCache("leaderboard:friends:" + userID)

	log.Printf("👥 %s suit maintenant %s", userID, targetID)
	c.JSON(http.StatusOK, gin.H{"message": "Utilisateur suivi"})
}

// UnfollowUser retire la relation, mêmes garanties que FollowUser
func UnfollowUser(c *gin.Context) {
	userID := c.GetString("user_id")
	targetID := c.Param("id")

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var existing string
	if err := session.Query("SELECT target_id FROM following WHERE user_id = ? AND target_id = ?",
		userID, targetID).Scan(&existing); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vous ne suivez pas cet utilisateur"})
		return
	}

	batch := session.NewBatch(gocql.LoggedBatch)
	batch.Query("DELETE FROM following WHERE user_id = ? AND target_id = ?", userID, targetID)
	batch.Query("DELETE FROM followers WHERE user_id = ? AND target_id = ?", targetID, userID)

	if err := session.ExecuteBatch(batch); err != nil {
		log.Printf("❌ Erreur unfollow: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur unfollow"})
		return
	}

	counterBatch := session.NewBatch(gocql.CounterBatch)
	counterBatch.Query("UPDATE user_counters SET following_count = following_count - 1 WHERE user_id = ?", userID)
	counterBatch.Query("UPDATE user_counters SET follower_count = follower_count - 1 WHERE user_id = ?", targetID)
	if err := session.ExecuteBatch(counterBatch); err != nil {
		log.Printf("⚠️ Erreur compteurs unfollow: %v", err)
	}

	cache.DeleteCache("leaderboard:friends:" + userID)

	log.Printf("👥 %s ne suit plus %s", userID, targetID)
	c.JSON(http.StatusOK, gin.H{"message": "Utilisateur retiré"})
}

// GetFollowing liste les utilisateurs suivis
func GetFollowing(c *gin.Context) {
	listEdges(c, "following")
}

// GetFollowers liste les suiveurs
func GetFollowers(c *gin.Context) {
	listEdges(c, "followers")
}

func listEdges(c *gin.Context, table string) {
	userID := c.GetString("user_id")

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(
		"SELECT target_id, name, nickname, photo_url, followed_at FROM "+table+" WHERE user_id = ?",
		userID).Iter()

	var edges []models.FollowEdge
	var e models.FollowEdge
	for iter.Scan(&e.TargetID, &e.Name, &e.Nickname, &e.PhotoURL, &e.FollowedAt) {
		e.UserID = userID
		edges = append(edges, e)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture " + table})
		return
	}

	if edges == nil {
		edges = []models.FollowEdge{}
	}
	c.JSON(http.StatusOK, gin.H{table: edges, "total": len(edges)})
}
