package catalog

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"moviehub/internal/client/api"
	"moviehub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubSource struct {
	mu     sync.Mutex
	movies map[int][]domain.Movie
	errs   map[int]error
	calls  []int
}

func (s *stubSource) Movies(_ context.Context, genreID int) ([]domain.Movie, error) {
	s.mu.Lock()
	s.calls = append(s.calls, genreID)
	s.mu.Unlock()

	if err := s.errs[genreID]; err != nil {
		return nil, err
	}
	return s.movies[genreID], nil
}

func fullSource() *stubSource {
	movies := map[int][]domain.Movie{}
	for _, g := range domain.Genres {
		movies[g.ProviderID] = []domain.Movie{
			{ID: g.ProviderID*10 + 1, Title: g.DisplayName + " One", Overview: "first", PosterPath: "/one.jpg"},
			{ID: g.ProviderID*10 + 2, Title: g.DisplayName + " Two"},
		}
	}
	return &stubSource{movies: movies, errs: map[int]error{}}
}

func TestNewViewController_StartsLoading(t *testing.T) {
	v := NewViewController(fullSource(), zaptest.NewLogger(t), false)

	sections := v.Sections()
	require.Len(t, sections, len(domain.Genres))
	for _, s := range sections {
		assert.Equal(t, StateLoading, s.State)
	}
}

func TestLoad_SequentialPreservesGenreOrder(t *testing.T) {
	src := fullSource()
	v := NewViewController(src, zaptest.NewLogger(t), false)

	sections := v.Load(context.Background())

	assert.Equal(t, []int{878, 528, 18, 27, 35}, src.calls)
	for i, s := range sections {
		assert.Equal(t, domain.Genres[i], s.Genre)
		assert.Equal(t, StatePopulated, s.State)
		assert.Len(t, s.Cards, 2)
	}
}

func TestLoad_OneFailingGenreIsIsolated(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		src := fullSource()
		src.errs[27] = &api.HTTPError{StatusCode: 500, Body: `{"error":"Failed to fetch movies"}`}

		v := NewViewController(src, zaptest.NewLogger(t), parallel)
		sections := v.Load(context.Background())

		var populated, errored int
		for _, s := range sections {
			switch s.State {
			case StatePopulated:
				populated++
			case StateErrored:
				errored++
				assert.Equal(t, "horror", s.Genre.Key)
				assert.Equal(t, `Failed to load movies: HTTP error! status: 500 - {"error":"Failed to fetch movies"}`, s.Message)
				assert.Empty(t, s.Cards)
			}
		}
		assert.Equal(t, 4, populated, "parallel=%v", parallel)
		assert.Equal(t, 1, errored, "parallel=%v", parallel)
	}
}

func TestLoad_ParallelMatchesSequential(t *testing.T) {
	src := fullSource()
	src.movies[18] = nil
	src.errs[528] = errors.New("connection refused")

	seq := NewViewController(src, zaptest.NewLogger(t), false).Load(context.Background())
	par := NewViewController(src, zaptest.NewLogger(t), true).Load(context.Background())

	assert.Equal(t, seq, par)
}

func TestLoad_EmptyResults(t *testing.T) {
	src := fullSource()
	src.movies[35] = []domain.Movie{}

	sections := NewViewController(src, zaptest.NewLogger(t), false).Load(context.Background())

	comedy := sections[4]
	assert.Equal(t, StateEmpty, comedy.State)
	assert.Equal(t, "No movies found", comedy.Message)
}

func TestNewCard_Fallbacks(t *testing.T) {
	card := NewCard(domain.Movie{ID: 7, Title: "Untitled"})
	assert.Equal(t, PlaceholderImage, card.PosterURL)
	assert.Equal(t, "No description available", card.Overview)

	card = NewCard(domain.Movie{ID: 8, Title: "Heat", Overview: "LA", PosterPath: "/heat.jpg"})
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/heat.jpg", card.PosterURL)
	assert.Equal(t, "LA", card.Overview)
}

func TestPreview(t *testing.T) {
	p := Preview(domain.Movie{Title: "Heat"})
	assert.Equal(t, "Heat", p.Title)
	assert.Equal(t, "No description available", p.Overview)
	assert.Equal(t, PreviewVideoURL, p.VideoURL)
}

func TestRender(t *testing.T) {
	src := fullSource()
	src.errs[878] = errors.New("boom")
	src.movies[528] = []domain.Movie{{ID: 1, Title: "<script>x</script>"}}
	src.movies[18] = nil

	sections := NewViewController(src, zaptest.NewLogger(t), false).Load(context.Background())

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sections))
	out := buf.String()

	assert.Contains(t, out, `id="ai-movies"`)
	assert.Contains(t, out, "Failed to load movies: boom")
	assert.Contains(t, out, "No movies found")
	assert.Contains(t, out, "&lt;script&gt;x&lt;/script&gt;")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, PlaceholderImage)
	assert.Contains(t, out, "https://image.tmdb.org/t/p/w500/one.jpg")
}
