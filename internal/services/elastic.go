package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"matzip_back_end/internal/database"
	"matzip_back_end/internal/models"
	"matzip_back_end/internal/ranking"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

//
// --- INDEXATION DANS ELASTICSEARCH ---
//

// Indexe un lieu dans Elasticsearch (alimenté à chaque review créée)
func IndexPlace(p models.Place) {
	if database.Elastic == nil {
		log.Println("⚠️ Elastic non initialisé, impossible d'indexer:", p.Name)
		return
	}

	doc := map[string]interface{}{
		"name":     p.Name,
		"category": p.Category,
		"address":  p.Address,
		"location": map[string]float64{"lat": p.Lat, "lon": p.Lng},
	}

	data, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      "places",
		DocumentID: ranking.IdentityKey(p.Name, p.Lat, p.Lng), // même lieu → même document
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}

	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Erreur envoi Elastic:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elastic a renvoyé une erreur pour %s: %s", p.Name, res.String())
	}
}

// IndexUserNickname indexe un pseudo pour la recherche par préfixe
func IndexUserNickname(userID, nickname, name, photoURL string) {
	if database.Elastic == nil {
		return
	}

	doc := map[string]interface{}{
		"user_id":   userID,
		"nickname":  nickname,
		"name":      name,
		"photo_url": photoURL,
	}

	data, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      "users",
		DocumentID: userID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}

	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Erreur indexation pseudo:", err)
		return
	}
	defer res.Body.Close()
}

// DeleteUserFromIndex retire un utilisateur de l'index (suppression de compte)
func DeleteUserFromIndex(userID string) {
	if database.Elastic == nil {
		return
	}

	req := esapi.DeleteRequest{Index: "users", DocumentID: userID}
	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("⚠️ Erreur suppression index user:", err)
		return
	}
	defer res.Body.Close()
}

//
// --- RECHERCHE DANS ELASTICSEARCH ---
//

// SearchPlaces cherche des lieux par nom/catégorie/adresse, triés par
// proximité si lat/lng sont fournis
func SearchPlaces(query string, lat, lng float64, hasLocation bool) ([]map[string]interface{}, error) {
	if database.Elastic == nil {
		return nil, errors.New("client Elasticsearch non initialisé")
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"name^3", "category", "address"},
			},
		},
	}

	// Tri par distance quand le client envoie sa position
	if hasLocation {
		q["sort"] = []interface{}{
			"_score",
			map[string]interface{}{
				"_geo_distance": map[string]interface{}{
					"location": map[string]float64{"lat": lat, "lon": lng},
					"order":    "asc",
					"unit":     "km",
				},
			},
		}
	}

	return runSearch("places", q)
}

// SearchUsersByPrefix cherche des utilisateurs par préfixe de pseudo
func SearchUsersByPrefix(prefix string) ([]map[string]interface{}, error) {
	if database.Elastic == nil {
		return nil, errors.New("client Elasticsearch non initialisé")
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"match_phrase_prefix": map[string]interface{}{
				"nickname": prefix,
			},
		},
	}

	return runSearch("users", q)
}

func runSearch(index string, q map[string]interface{}) ([]map[string]interface{}, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %v", err)
	}

	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  &buf,
	}
	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		return nil, fmt.Errorf("erreur requête Elastic: %v", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		var e map[string]interface{}
		json.NewDecoder(res.Body).Decode(&e)
		log.Printf("❌ Elasticsearch erreur: %+v", e)
		return nil, errors.New("index non trouvé ou vide")
	}

	var r map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %v", err)
	}

	hitsData, ok := r["hits"].(map[string]interface{})
	if !ok {
		return nil, errors.New("réponse Elastic invalide (pas de hits)")
	}

	hitsArray, ok := hitsData["hits"].([]interface{})
	if !ok {
		return []map[string]interface{}{}, nil
	}

	results := make([]map[string]interface{}, 0, len(hitsArray))
	for _, hit := range hitsArray {
		hitMap, _ := hit.(map[string]interface{})
		if source, ok := hitMap["_source"].(map[string]interface{}); ok {
			results = append(results, source)
		}
	}

	return results, nil
}
