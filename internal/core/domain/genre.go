package domain

// Genre is one curated section of the catalog page.
type Genre struct {
	Key         string
	ProviderID  int
	DisplayName string
	Region      string
}

// Genres lists the sections in page order. The provider ids double as
// the proxy allow-list.
var Genres = []Genre{
	{Key: "ai", ProviderID: 878, DisplayName: "AI Movies", Region: "ai-movies"},
	{Key: "food", ProviderID: 528, DisplayName: "Food Movies", Region: "food-movies"},
	{Key: "drama", ProviderID: 18, DisplayName: "Drama", Region: "drama-movies"},
	{Key: "horror", ProviderID: 27, DisplayName: "Horror", Region: "horror-movies"},
	{Key: "comedy", ProviderID: 35, DisplayName: "Comedy", Region: "comedy-movies"},
}

// IsAllowedGenre reports whether id is one of the configured provider genres.
func IsAllowedGenre(id int) bool {
	_, ok := GenreByProviderID(id)
	return ok
}

// GenreByProviderID looks a genre up by its provider id.
func GenreByProviderID(id int) (Genre, bool) {
	for _, g := range Genres {
		if g.ProviderID == id {
			return g, true
		}
	}
	return Genre{}, false
}

// GenreByKey looks a genre up by its symbolic key.
func GenreByKey(key string) (Genre, bool) {
	for _, g := range Genres {
		if g.Key == key {
			return g, true
		}
	}
	return Genre{}, false
}
