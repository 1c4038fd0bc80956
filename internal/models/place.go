package models

// Place : résultat brut de la recherche de lieux (service externe)
type Place struct {
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Category string  `json:"category"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}
