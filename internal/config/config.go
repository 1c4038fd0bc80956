package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func Load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
}

// --- Réglages du protocole de classement ---

// GroupSize retourne la taille de groupe k du group-drill (≥ 1).
// En dessous de 2k items la liste est présentée à plat.
func GroupSize() int {
	v, err := strconv.Atoi(os.Getenv("RANKING_GROUP_SIZE"))
	if err != nil || v < 1 {
		return 5
	}
	return v
}

// SessionTTL : durée de vie d'une session d'insertion abandonnée dans Redis
func SessionTTL() time.Duration {
	v, err := strconv.Atoi(os.Getenv("RANKING_SESSION_TTL_MINUTES"))
	if err != nil || v < 1 {
		return 30 * time.Minute
	}
	return time.Duration(v) * time.Minute
}

// LeaderboardTTL : durée de cache d'un leaderboard agrégé
func LeaderboardTTL() time.Duration {
	v, err := strconv.Atoi(os.Getenv("LEADERBOARD_CACHE_SECONDS"))
	if err != nil || v < 1 {
		return 60 * time.Second
	}
	return time.Duration(v) * time.Second
}
