// Package catalog renders the genre sections of the browse page. Each
// section loads on its own; a failing genre never affects the others.
package catalog

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"sync"
	"time"

	"moviehub/internal/core/domain"

	"go.uber.org/zap"
)

const (
	PosterBaseURL    = "https://image.tmdb.org/t/p/w500"
	PlaceholderImage = "https://via.placeholder.com/200x300/333/fff?text=No+Image"
	PreviewVideoURL  = "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4"

	msgLoading      = "Loading movies..."
	msgNoMovies     = "No movies found"
	msgNoOverview   = "No description available"
	msgLoadFailedFm = "Failed to load movies: %s"
)

type State string

const (
	StateLoading   State = "loading"
	StatePopulated State = "populated"
	StateEmpty     State = "empty"
	StateErrored   State = "errored"
)

// MovieSource fetches one genre's movies through the server proxy.
type MovieSource interface {
	Movies(ctx context.Context, genreID int) ([]domain.Movie, error)
}

// Card is a movie prepared for display.
type Card struct {
	ID        int
	Title     string
	Overview  string
	PosterURL string
}

type Section struct {
	Genre   domain.Genre
	State   State
	Cards   []Card
	Message string
}

type ViewController struct {
	source   MovieSource
	logger   *zap.Logger
	parallel bool

	mu       sync.RWMutex
	sections []Section
}

// NewViewController prepares one Loading section per genre. With
// parallel set, Load fetches all genres concurrently.
func NewViewController(source MovieSource, logger *zap.Logger, parallel bool) *ViewController {
	if logger == nil {
		logger = zap.NewNop()
	}
	sections := make([]Section, len(domain.Genres))
	for i, g := range domain.Genres {
		sections[i] = Section{Genre: g, State: StateLoading, Message: msgLoading}
	}
	return &ViewController{
		source:   source,
		logger:   logger,
		parallel: parallel,
		sections: sections,
	}
}

// Sections returns a snapshot of the current section states.
func (v *ViewController) Sections() []Section {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]Section, len(v.sections))
	for i, s := range v.sections {
		out[i] = s
		out[i].Cards = append([]Card(nil), s.Cards...)
	}
	return out
}

// Load fills every section once and returns the final snapshot.
func (v *ViewController) Load(ctx context.Context) []Section {
	start := time.Now()

	if v.parallel {
		var wg sync.WaitGroup
		for i := range domain.Genres {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				v.loadSection(ctx, i)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range domain.Genres {
			v.loadSection(ctx, i)
		}
	}

	v.logger.Debug("catalog loaded",
		zap.Bool("parallel", v.parallel),
		zap.Duration("duration", time.Since(start)))
	return v.Sections()
}

func (v *ViewController) loadSection(ctx context.Context, i int) {
	genre := domain.Genres[i]
	movies, err := v.source.Movies(ctx, genre.ProviderID)

	next := Section{Genre: genre}
	switch {
	case err != nil:
		v.logger.Warn("genre failed to load",
			zap.String("genre", genre.Key),
			zap.Error(err))
		next.State = StateErrored
		next.Message = fmt.Sprintf(msgLoadFailedFm, err.Error())
	case len(movies) == 0:
		next.State = StateEmpty
		next.Message = msgNoMovies
	default:
		next.State = StatePopulated
		next.Cards = make([]Card, len(movies))
		for j, m := range movies {
			next.Cards[j] = NewCard(m)
		}
	}

	v.mu.Lock()
	v.sections[i] = next
	v.mu.Unlock()
}

// NewCard applies the poster and overview fallbacks.
func NewCard(m domain.Movie) Card {
	return Card{
		ID:        m.ID,
		Title:     m.Title,
		Overview:  overviewOrDefault(m.Overview),
		PosterURL: PosterURL(m.PosterPath),
	}
}

func PosterURL(path string) string {
	if path == "" {
		return PlaceholderImage
	}
	return PosterBaseURL + path
}

func overviewOrDefault(overview string) string {
	if overview == "" {
		return msgNoOverview
	}
	return overview
}

// PreviewInfo is the content of the movie preview dialog. The video is
// a fixed sample clip; the provider has no playable media.
type PreviewInfo struct {
	Title    string
	Overview string
	VideoURL string
}

func Preview(m domain.Movie) PreviewInfo {
	return PreviewInfo{
		Title:    m.Title,
		Overview: overviewOrDefault(m.Overview),
		VideoURL: PreviewVideoURL,
	}
}

var pageTemplate = template.Must(template.New("sections").Parse(`{{range .}}<section id="{{.Genre.Region}}" class="genre-section" data-state="{{.State}}">
<h2>{{.Genre.DisplayName}}</h2>
<div class="movie-row">{{if eq .State "populated"}}{{range .Cards}}
<div class="movie-card" data-movie-id="{{.ID}}"><img src="{{.PosterURL}}" alt="{{.Title}}"><div class="movie-info"><h3>{{.Title}}</h3><p>{{.Overview}}</p></div></div>{{end}}{{else}}
<p class="{{if eq .State "errored"}}error{{else}}loading{{end}}">{{.Message}}</p>{{end}}
</div>
</section>
{{end}}`))

// Render writes sections as HTML.
func Render(w io.Writer, sections []Section) error {
	return pageTemplate.Execute(w, sections)
}
