package domain

// Movie holds the discover fields the catalog page renders. Other
// provider fields are ignored on decode.
type Movie struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Overview   string `json:"overview"`
	PosterPath string `json:"poster_path"`
}

// DiscoverResponse is the first page of a provider discover query.
type DiscoverResponse struct {
	Page    int     `json:"page"`
	Results []Movie `json:"results"`
}
