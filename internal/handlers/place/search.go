package place

import (
	"net/http"
	"strconv"

	"matzip_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

// SearchPlaces cherche des lieux : d'abord dans l'index interne (lieux déjà
// classés par la communauté), complété par le géocodeur externe. Les pannes
// des deux côtés se dégradent en liste vide — jamais en erreur.
func SearchPlaces(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis"})
		return
	}

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	hasLocation := latErr == nil && lngErr == nil

	known, err := services.SearchPlaces(query, lat, lng, hasLocation)
	if err != nil {
		known = []map[string]interface{}{}
	}

	external := services.GeocodePlaces(query)

	c.JSON(http.StatusOK, gin.H{
		"known":    known,
		"external": external,
	})
}
