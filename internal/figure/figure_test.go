package figure

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arifsolmaz/exodigest/internal/paper"
)

func TestResolvePrefersRealFigures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<img src="/static/arxiv-logo.png">
			<figure><img class="ltx_graphics" src="figures/orbit.png"></figure>
		</body></html>`)
	}))
	defer srv.Close()

	r := New(Options{HTMLBase: srv.URL, MirrorBase: srv.URL})
	papers := []paper.Paper{{ID: "2506.00001", Title: "A transit study"}}

	r.Resolve(context.Background(), papers)
	assert.Equal(t, srv.URL+"/2506.00001/figures/orbit.png", papers[0].FigureURL)
}

func TestResolveFallsBackToStockImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := New(Options{HTMLBase: srv.URL, MirrorBase: srv.URL})
	papers := []paper.Paper{{ID: "2506.00001", Title: "JWST spectroscopy of an exoplanet"}}

	r.Resolve(context.Background(), papers)
	require.NotEmpty(t, papers[0].FigureURL)
	assert.Equal(t, FallbackImage(papers[0].Title, ""), papers[0].FigureURL)
}

func TestResolveKeepsExistingFigure(t *testing.T) {
	r := New(Options{HTMLBase: "http://unreachable.invalid", MirrorBase: "http://unreachable.invalid"})
	papers := []paper.Paper{{ID: "x", FigureURL: "https://example.com/fig.png"}}

	r.Resolve(context.Background(), papers)
	assert.Equal(t, "https://example.com/fig.png", papers[0].FigureURL)
}

func TestFallbackImageIsDeterministic(t *testing.T) {
	first := FallbackImage("JWST transit spectrum of a habitable world", "")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, FallbackImage("JWST transit spectrum of a habitable world", ""))
	}

	// Topic keywords pick themed images; unknown topics share one default.
	assert.NotEmpty(t, FallbackImage("completely unrelated topic", ""))
	assert.NotEqual(t,
		FallbackImage("hot jupiter inflation", ""),
		FallbackImage("an atmosphere survey", ""))
}

func TestIsDecoration(t *testing.T) {
	assert.True(t, isDecoration("https://arxiv.org/static/arxiv-logo.png"))
	assert.True(t, isDecoration("https://example.com/icon-small.svg"))
	assert.False(t, isDecoration("https://arxiv.org/html/2506.00001/fig1.png"))
}

func TestAbsoluteImageURL(t *testing.T) {
	page := "https://arxiv.org/html/2506.00001"

	assert.Equal(t, "https://cdn.example/x.png", absoluteImageURL(page, "https://cdn.example/x.png"))
	assert.Equal(t, "https://arxiv.org/static/x.png", absoluteImageURL(page, "/static/x.png"))
	assert.Equal(t, "https://arxiv.org/html/2506.00001/figures/x.png", absoluteImageURL(page, "figures/x.png"))
}
