package review

import (
	"context"
	"log"
	"net/http"
	"time"

	"matzip_back_end/internal/cache"
	"matzip_back_end/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// LeaderboardWebSocket pousse une notification à chaque fois qu'un classement
// change (review créée, modifiée ou supprimée). Le client relance ensuite un
// GET /api/leaderboard — le serveur n'envoie jamais le classement complet.
func LeaderboardWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(401, gin.H{"error": "Non authentifié"})
		return
	}

	// Upgrade vers WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := context.Background()

	pubsub := database.Redis.Subscribe(ctx, cache.LeaderboardChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	conn.WriteJSON(map[string]interface{}{
		"type":    "connected",
		"message": "Flux temps réel des classements activé",
	})

	// Boucle d'écoute
	for {
		select {
		case msg := <-ch:
			response := map[string]interface{}{
				"type":    "leaderboard_updated",
				"user_id": msg.Payload, // auteur de l'écriture qui a invalidé
			}
			if err := conn.WriteJSON(response); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-time.After(30 * time.Second):
			// Ping pour garder la connexion active
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
