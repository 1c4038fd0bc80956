package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"matzip_back_end/internal/models"
	"matzip_back_end/internal/ranking"
)

var geocodeHTTP = &http.Client{Timeout: 5 * time.Second}

// GeocodePlaces interroge le fournisseur de géocodage externe configuré
// (GEOCODE_API_URL) pour compléter une recherche de lieux. Toute erreur se
// dégrade en liste vide : la recherche ne doit jamais échouer pour autant.
func GeocodePlaces(query string) []models.Place {
	base := os.Getenv("GEOCODE_API_URL")
	if base == "" || query == "" {
		return nil
	}

	reqURL := fmt.Sprintf("%s?q=%s&format=json&limit=10", base, url.QueryEscape(query))
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil
	}
	if key := os.Getenv("GEOCODE_API_KEY"); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	res, err := geocodeHTTP.Do(req)
	if err != nil {
		log.Printf("⚠️ Géocodage indisponible: %v", err)
		return nil
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		log.Printf("⚠️ Géocodage a renvoyé %d", res.StatusCode)
		return nil
	}

	var raw []struct {
		DisplayName string `json:"display_name"`
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		Category    string `json:"category"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil
	}

	out := make([]models.Place, 0, len(raw))
	for _, r := range raw {
		out = append(out, models.Place{
			Name:     r.DisplayName,
			Address:  r.DisplayName,
			Category: r.Category,
			Lat:      ranking.ParseCoord(r.Lat),
			Lng:      ranking.ParseCoord(r.Lon),
		})
	}
	return out
}
