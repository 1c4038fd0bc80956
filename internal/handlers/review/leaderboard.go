package review

import (
	"log"
	"net/http"

	"matzip_back_end/internal/cache"
	"matzip_back_end/internal/config"
	"matzip_back_end/internal/database"
	"matzip_back_end/internal/models"
	"matzip_back_end/internal/ranking"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard calcule le classement agrégé pour un mode de vue donné.
// Le corpus complet est lu une seule fois par requête : les poids de
// fiabilité et les buckets reposent sur le même instantané.
func GetLeaderboard(c *gin.Context) {
	userID := c.GetString("user_id")

	mode := ranking.ViewMode(c.DefaultQuery("mode", string(ranking.ModeGlobal)))
	switch mode {
	case ranking.ModeMy, ranking.ModeGlobal, ranking.ModeFriends, ranking.ModeWishlist, ranking.ModeFranchise:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Mode de classement inconnu"})
		return
	}

	// Le classement public est le même pour tout le monde
	viewer := userID
	if mode == ranking.ModeGlobal {
		viewer = "public"
	}

	var cached []ranking.AggregatedRestaurant
	if cache.GetLeaderboard(string(mode), viewer, &cached) {
		c.JSON(http.StatusOK, gin.H{"mode": mode, "entries": cached, "cached": true})
		return
	}

	corpus, err := loadAllReviews()
	if err != nil {
		log.Printf("❌ Erreur lecture corpus: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture reviews"})
		return
	}

	var (
		scoped      []models.Review
		seeds       []ranking.SeedEntry
		friendCount int
	)

	switch mode {
	case ranking.ModeMy:
		scoped = filterByUsers(corpus, map[string]bool{userID: true})

	case ranking.ModeGlobal, ranking.ModeFranchise:
		scoped = corpus

	case ranking.ModeFriends:
		following, err := loadFollowing(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture abonnements"})
			return
		}
		friendCount = len(following)

		allowed := map[string]bool{userID: true}
		for _, f := range following {
			allowed[f.TargetID] = true
		}
		scoped = filterByUsers(corpus, allowed)

	case ranking.ModeWishlist:
		items, err := loadWishlist(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture wishlist"})
			return
		}

		wanted := make(map[string]bool, len(items))
		for _, it := range items {
			wanted[it.PlaceKey] = true
		}
		for _, r := range corpus {
			if wanted[ranking.IdentityKey(r.Name, r.Lat, r.Lng)] {
				scoped = append(scoped, r)
			}
		}

		// Les lieux de la wishlist sans aucune review apparaissent quand
		// même, au score neutre
		covered := make(map[string]bool)
		for _, r := range scoped {
			covered[ranking.IdentityKey(r.Name, r.Lat, r.Lng)] = true
		}
		for _, it := range items {
			if !covered[it.PlaceKey] {
				seeds = append(seeds, ranking.SeedEntry{
					Key: it.PlaceKey, Name: it.Name, Category: it.Category,
					Address: it.Address, Lat: it.Lat, Lng: it.Lng,
					Score: ranking.NeutralScore,
				})
			}
		}
	}

	entries := ranking.AggregateWithSeeds(scoped, seeds, corpus, mode, friendCount)
	if entries == nil {
		entries = []ranking.AggregatedRestaurant{}
	}

	cache.SetLeaderboard(string(mode), viewer, entries, config.LeaderboardTTL())

	c.JSON(http.StatusOK, gin.H{"mode": mode, "entries": entries})
}

// loadAllReviews scanne la table reviews (corpus complet)
func loadAllReviews() ([]models.Review, error) {
	session, err := reviewsSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`
		SELECT review_id, user_id, name, category, address, lat, lng, comment, rank_index, global_score, created_at
		FROM reviews
	`).Iter()

	var reviews []models.Review
	var r models.Review
	for iter.Scan(&r.ID, &r.UserID, &r.Name, &r.Category, &r.Address, &r.Lat, &r.Lng, &r.Comment, &r.RankIndex, &r.GlobalScore, &r.CreatedAt) {
		reviews = append(reviews, r)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return reviews, nil
}

func filterByUsers(corpus []models.Review, allowed map[string]bool) []models.Review {
	var out []models.Review
	for _, r := range corpus {
		if allowed[r.UserID] {
			out = append(out, r)
		}
	}
	return out
}

// loadFollowing lit les abonnements de l'utilisateur (keyspace users)
func loadFollowing(userID string) ([]models.FollowEdge, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`
		SELECT target_id, name, nickname, photo_url, followed_at
		FROM following WHERE user_id = ?
	`, userID).Iter()

	var edges []models.FollowEdge
	var e models.FollowEdge
	for iter.Scan(&e.TargetID, &e.Name, &e.Nickname, &e.PhotoURL, &e.FollowedAt) {
		e.UserID = userID
		edges = append(edges, e)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return edges, nil
}

// loadWishlist lit la wishlist de l'utilisateur (keyspace reviews)
func loadWishlist(userID string) ([]models.WishlistItem, error) {
	session, err := reviewsSession()
	if err != nil {
		return nil, err
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
		return nil, err
	}
	return items, nil
}
