package user

import (
	"net/http"

	"matzip_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

// SearchUsers cherche des utilisateurs par préfixe de pseudo (Elasticsearch)
func SearchUsers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis"})
		return
	}

	results, err := services.SearchUsersByPrefix(query)
	if err != nil {
		// La recherche se dégrade en liste vide plutôt qu'en erreur
		c.JSON(http.StatusOK, gin.H{"users": []interface{}{}, "total": 0})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": results, "total": len(results)})
}
