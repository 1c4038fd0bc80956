package user

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"matzip_back_end/internal/cache"
	"matzip_back_end/internal/database"
	"matzip_back_end/internal/models"
	"matzip_back_end/internal/services"
	"matzip_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
)

// ================== AUTH LOCALE ==================

const refreshTokenTTL = 30 * 24 * time.Hour

// issueRefreshToken génère et stocke le refresh token opaque de l'utilisateur
// (un seul actif par compte, le précédent est écrasé)
func issueRefreshToken(userID string) string {
	rt := uuid.New().String()
	if err := cache.StoreRefreshToken(userID, rt, refreshTokenTTL); err != nil {
		log.Printf("⚠️ Erreur stockage refresh token: %v", err)
		return ""
	}
	return rt
}

func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Nickname string `json:"nickname" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// email déjà pris ?
	var existingID string
	if err := database.GetPreparedGetUserByEmail().Bind(input.Email).Scan(&existingID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}

	// pseudo déjà pris ?
	if err := database.GetPreparedGetUserByNickname().Bind(input.Nickname).Scan(&existingID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ce pseudo est déjà utilisé"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	now := time.Now()
	user := models.User{
		ID:       uuid.New().String(),
		Name:     input.Name,
		Nickname: input.Nickname,
		Email:    input.Email,
		Password: hashedPassword,
		Provider: "local",
	}

	err = database.GetPreparedInsertUser().Bind(
		user.ID, user.Email, user.Password, user.Name, user.Nickname,
		user.Provider, "", "", now, now,
	).Exec()
	if err != nil {
		log.Printf("❌ Erreur création utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	if err := database.GetPreparedInsertUserByEmail().Bind(user.Email, user.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur index users_by_email: %v", err)
	}
	if err := session.Query("INSERT INTO users_by_nickname (nickname, user_id) VALUES (?, ?)",
		user.Nickname, user.ID).Exec(); err != nil {
		log.Printf("⚠️ Erreur index users_by_nickname: %v", err)
	}

	services.IndexUserNickname(user.ID, user.Nickname, user.Name, "")

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	log.Printf("🆕 Utilisateur créé: %s (%s)", user.Nickname, user.Email)
	c.JSON(http.StatusCreated, gin.H{
		"token":        token,
		"refreshToken": issueRefreshToken(user.ID),
		"userId":       user.ID,
		"email":        user.Email,
		"name":         user.Name,
		"nickname":     user.Nickname,
	})
}

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var userID string
	if err := database.GetPreparedGetUserByEmail().Bind(input.Email).Scan(&userID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	var user models.User
	user.ID = userID
	err := database.GetPreparedGetUserByID().Bind(userID).Scan(
		&user.Email, &user.Password, &user.Name, &user.Nickname,
		&user.Provider, &user.ProviderID, &user.PhotoURL,
	)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, user.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":        token,
		"refreshToken": issueRefreshToken(user.ID),
		"userId":       user.ID,
		"email":        user.Email,
		"name":         user.Name,
		"nickname":     user.Nickname,
	})
}

// RefreshToken échange un refresh token valide contre un nouveau couple
// JWT + refresh token (rotation : l'ancien devient inutilisable)
func RefreshToken(c *gin.Context) {
	var input struct {
		UserID       string `json:"userId" binding:"required"`
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := cache.GetRefreshToken(input.UserID)
	if err != nil || stored != input.RefreshToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token invalide"})
		return
	}

	var user models.User
	user.ID = input.UserID
	err = database.GetPreparedGetUserByID().Bind(input.UserID).Scan(
		&user.Email, &user.Password, &user.Name, &user.Nickname,
		&user.Provider, &user.ProviderID, &user.PhotoURL,
	)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token invalide"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":        token,
		"refreshToken": issueRefreshToken(user.ID),
	})
}

// Logout révoque le JWT courant (blacklist jusqu'à son expiration) et
// invalide le refresh token
func Logout(c *gin.Context) {
	userID := c.GetString("user_id")

	if jti := c.GetString("jti"); jti != "" {
		ttl := 24 * time.Hour
		if exp := c.GetInt64("token_exp"); exp > 0 {
			ttl = time.Until(time.Unix(exp, 0))
		}
		if ttl > 0 {
			if err := cache.BlacklistToken(jti, ttl); err != nil {
				log.Printf("⚠️ Erreur blacklist token: %v", err)
			}
		}
	}

	if err := cache.DeleteRefreshToken(userID); err != nil {
		log.Printf("⚠️ Erreur suppression refresh token: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Déconnecté"})
}

// ================== AUTH SOCIALE (WEB) ==================

func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider != "google" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provider non supporté"})
		return
	}

	redirectURL := c.Query("redirect_url")
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	callbackURL := baseURL + "/api/oauth/" + provider + "/callback"

	goth.UseProviders(google.New(
		os.Getenv("GOOGLE_CLIENT_ID"),
		os.Getenv("GOOGLE_CLIENT_SECRET"),
		callbackURL,
	))

	state := generateRandomState()
	if redirectURL != "" {
		_ = cache.SetCache("oauth_redirect:"+state, redirectURL, 10*time.Minute)
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	q.Set("state", state)
	c.Request.URL.RawQuery = q.Encode()
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

func generateRandomState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	state := c.Query("state")
	code := c.Query("code")
	if provider != "google" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètres OAuth invalides"})
		return
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	data := url.Values{}
	data.Set("code", code)
	data.Set("client_id", os.Getenv("GOOGLE_CLIENT_ID"))
	data.Set("client_secret", os.Getenv("GOOGLE_CLIENT_SECRET"))
	data.Set("redirect_uri", baseURL+"/api/oauth/google/callback")
	data.Set("grant_type", "authorization_code")

	resp, err := http.PostForm("https://oauth2.googleapis.com/token", data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur échange OAuth"})
		return
	}
	defer resp.Body.Close()
	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	json.NewDecoder(resp.Body).Decode(&tokenResp)

	userResp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + tokenResp.AccessToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur profil Google"})
		return
	}
	defer userResp.Body.Close()
	var gu struct{ ID, Email, Name string }
	json.NewDecoder(userResp.Body).Decode(&gu)

	handleOAuthUser(c, provider, gu.ID, gu.Email, gu.Name, state)
}

// ================== UTILITAIRES ==================

func findOrCreateOAuthUser(provider, providerID, email, name string) models.User {
	var user models.User

	// 1. Recherche par email
	var userID string
	err := database.GetPreparedGetUserByEmail().Bind(email).Scan(&userID)
	if err == nil {
		user.ID = userID
		scanErr := database.GetPreparedGetUserByID().Bind(userID).Scan(
			&user.Email, &user.Password, &user.Name, &user.Nickname,
			&user.Provider, &user.ProviderID, &user.PhotoURL,
		)
		if scanErr == nil {
			// Compte existant : on rattache le provider
			if user.Provider != provider || user.ProviderID != providerID {
				session, sErr := database.GetUsersSession()
				if sErr == nil {
					session.Query("UPDATE users SET provider = ?, provider_id = ? WHERE user_id = ?",
						provider, providerID, userID).Exec()
				}
				log.Printf("🔄 Compte existant fusionné avec provider %s : %s", provider, email)
			}
			return user
		}
	}

	// 2. Création d'un nouvel utilisateur OAuth. Le pseudo provisoire dérive
	// de l'email, l'utilisateur le changera via PATCH /api/users/me
	now := time.Now()
	nickname := strings.SplitN(email, "@", 2)[0] + "_" + uuid.New().String()[:6]
	user = models.User{
		ID:         uuid.New().String(),
		Email:      email,
		Name:       name,
		Nickname:   nickname,
		Provider:   provider,
		ProviderID: providerID,
	}

	if err := database.GetPreparedInsertUser().Bind(
		user.ID, user.Email, "", user.Name, user.Nickname,
		user.Provider, user.ProviderID, "", now, now,
	).Exec(); err != nil {
		log.Printf("❌ Erreur création utilisateur OAuth: %v", err)
		return user
	}
	database.GetPreparedInsertUserByEmail().Bind(user.Email, user.ID).Exec()
	if session, sErr := database.GetUsersSession(); sErr == nil {
		session.Query("INSERT INTO users_by_nickname (nickname, user_id) VALUES (?, ?)",
			user.Nickname, user.ID).Exec()
	}

	services.IndexUserNickname(user.ID, user.Nickname, user.Name, "")
	log.Printf("🆕 Utilisateur OAuth créé (%s) : %s", provider, email)
	return user
}

func handleOAuthUser(c *gin.Context, provider, providerID, email, name, state string) {
	user := findOrCreateOAuthUser(provider, providerID, email, name)
	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	redirectURI, _ := cache.GetCache("oauth_redirect:" + state)
	_ = cache.DeleteCache("oauth_redirect:" + state)

	if redirectURI == "" {
		redirectURI = os.Getenv("FRONTEND_URL")
		if redirectURI == "" {
			redirectURI = "http://localhost:5173"
		}
	}

	// Deep link mobile si user-agent iOS/Android
	if !strings.HasPrefix(redirectURI, "matzip://") {
		ua := strings.ToLower(c.Request.UserAgent())
		if strings.Contains(ua, "iphone") || strings.Contains(ua, "android") || strings.Contains(ua, "mobile") {
			if v := os.Getenv("MOBILE_REDIRECT_URL"); v != "" {
				redirectURI = v
			} else {
				redirectURI = "matzip://auth/callback"
			}
		}
	}

	allowed := strings.Split(os.Getenv("OAUTH_ALLOWED_REDIRECTS"), ",")
	allowed = append(allowed, "http://localhost:5173", "http://localhost:3000", "matzip://auth/callback")
	valid := false
	for _, o := range allowed {
		if o != "" && strings.HasPrefix(redirectURI, o) {
			valid = true
			break
		}
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Redirect url non autorisé"})
		return
	}

	sep := "?"
	if strings.Contains(redirectURI, "?") {
		sep = "&"
	}
	c.Redirect(http.StatusTemporaryRedirect, redirectURI+sep+"token="+url.QueryEscape(token))
}
