package routes

import (
	"os"
	"strings"
	"time"

	"matzip_back_end/internal/handlers/place"
	"matzip_back_end/internal/handlers/review"
	"matzip_back_end/internal/handlers/user"
	"matzip_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// CORS
	origins := strings.Split(os.Getenv("CORS_ORIGINS"), ",")
	if len(origins) == 1 && origins[0] == "" {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// --- Auth ---
	api.POST("/auth/register", middleware.RegisterRateLimit(), user.Register)
	api.POST("/auth/login", middleware.LoginRateLimit(), user.Login)
	api.POST("/auth/refresh", user.RefreshToken)
	api.POST("/auth/logout", middleware.AuthRequired(), user.Logout)
	api.GET("/oauth/:provider", user.BeginAuth)
	api.GET("/oauth/:provider/callback", user.CallbackAuth)

	// --- Profil de l'utilisateur connecté ---
	me := api.Group("/me", middleware.AuthRequired())
	{
		me.GET("", user.Me)
		me.PATCH("", user.UpdateProfile)
		me.DELETE("", user.DeleteAccount)
		me.POST("/photo", user.UploadProfilePhoto)
		me.GET("/qr", user.ProfileQR)
	}

	// --- Profils publics & follow ---
	users := api.Group("/users", middleware.AuthRequired())
	{
		users.GET("/:id", user.GetUserProfile)
		users.GET("/:id/reviews", review.GetUserReviews)
		users.POST("/:id/follow", user.FollowUser)
		users.DELETE("/:id/follow", user.UnfollowUser)
	}

	social := api.Group("", middleware.AuthRequired())
	{
		social.GET("/following", user.GetFollowing)
		social.GET("/followers", user.GetFollowers)
		social.GET("/recommendations", user.RecommendUsers)
	}

	// --- Recherche ---
	search := api.Group("/search", middleware.SearchRateLimit())
	{
		search.GET("/places", place.SearchPlaces)
		search.GET("/users", middleware.AuthRequired(), user.SearchUsers)
	}

	// --- Wishlist ---
	wishlist := api.Group("/wishlist", middleware.AuthRequired())
	{
		wishlist.GET("", user.GetWishlist)
		wishlist.POST("", user.AddToWishlist)
		wishlist.DELETE("/:placeKey", user.RemoveFromWishlist)
	}

	// --- Classement personnel ---
	reviews := api.Group("/reviews", middleware.AuthRequired())
	{
		reviews.GET("", review.GetMyReviews)
		reviews.PUT("/:id", review.UpdateReview)
		reviews.DELETE("/:id", review.DeleteReview)
	}

	rankings := api.Group("/rankings", middleware.AuthRequired())
	{
		rankings.POST("/session", middleware.RankingRateLimit(), review.StartRankingSession)
		rankings.POST("/session/step", review.RankingSessionStep)
		rankings.DELETE("/session", review.CancelRankingSession)
	}

	// --- Leaderboards ---
	leaderboard := api.Group("/leaderboard", middleware.AuthRequired())
	{
		leaderboard.GET("", review.GetLeaderboard)
		leaderboard.GET("/live", review.LeaderboardWebSocket)
	}
}
