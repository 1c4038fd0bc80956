package cache

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// LeaderboardChannel : canal pub/sub notifié à chaque écriture qui invalide
// un classement (création, édition, suppression de review)
const LeaderboardChannel = "leaderboard:updated"

func leaderboardKey(mode, viewerID string) string {
	return fmt.Sprintf("leaderboard:%s:%s", mode, viewerID)
}

// GetLeaderboard lit un leaderboard agrégé en cache, ok=false si absent
func GetLeaderboard(mode, viewerID string, dest interface{}) bool {
	data, err := RedisClient.Get(ctx, leaderboardKey(mode, viewerID)).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		log.Printf("⚠️ Erreur lecture cache leaderboard: %v", err)
		return false
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		log.Printf("⚠️ Cache leaderboard corrompu, on recalcule: %v", err)
		return false
	}
	return true
}

// SetLeaderboard met en cache un leaderboard agrégé
func SetLeaderboard(mode, viewerID string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := RedisClient.Set(ctx, leaderboardKey(mode, viewerID), data, ttl).Err(); err != nil {
		log.Printf("⚠️ Erreur écriture cache leaderboard: %v", err)
	}
}

// InvalidateUserLeaderboards purge les classements du scripteur et le
// classement public, puis notifie les clients websocket connectés.
// Les caches friends/wishlist/franchise des autres viewers ne sont pas
// purgés ici : ils expirent par TTL (60s par défaut), et l'événement pub/sub
// permet aux clients live de recharger avant l'expiration.
func InvalidateUserLeaderboards(userID string) {
	keys := []string{
		leaderboardKey("my", userID),
		leaderboardKey("friends", userID),
		leaderboardKey("wishlist", userID),
		leaderboardKey("franchise", userID),
		leaderboardKey("global", "public"),
	}
	if err := RedisClient.Del(ctx, keys...).Err(); err != nil {
		log.Printf("⚠️ Erreur invalidation leaderboard: %v", err)
	}

	if err := RedisClient.Publish(ctx, LeaderboardChannel, userID).Err(); err != nil {
		log.Printf("⚠️ Erreur publication %s: %v", LeaderboardChannel, err)
	}
}
