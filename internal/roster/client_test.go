package roster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func catalogServer(t *testing.T, status int, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		assert.Equal(t, "/pokemon", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_ParsesCatalog(t *testing.T) {
	body := `{"results":[
		{"name":"bulbasaur","url":"https://pokeapi.co/api/v2/pokemon/1/"},
		{"name":"mr-mime","url":"https://pokeapi.co/api/v2/pokemon/122/"},
		{"name":"mystery","url":""}
	]}`
	srv := catalogServer(t, http.StatusOK, body, nil)
	c := NewClient(Config{BaseURL: srv.URL, Size: 3}, nil)

	got := c.Fetch(context.Background())

	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, "Bulbasaur", got[0].Name)
	assert.Equal(t, "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/1.png", got[0].ImageURL)
	assert.Equal(t, 122, got[1].ID)
	assert.Equal(t, "Mr-Mime", got[1].Name)
	assert.Equal(t, 3, got[2].ID, "missing url falls back to position")
}

func TestFetch_FallsBackOnFailure(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{}`},
		{name: "not found", status: http.StatusNotFound, body: `nope`},
		{name: "malformed json", status: http.StatusOK, body: `{"results":[`},
		{name: "empty results", status: http.StatusOK, body: `{"results":[]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			srv := catalogServer(t, tc.status, tc.body, nil)
			c := NewClient(Config{BaseURL: srv.URL, Size: 10}, zap.New(core))

			got := c.Fetch(context.Background())

			assert.Equal(t, c.Fallback(), got)
			assert.Equal(t, 1, logs.Len())
		})
	}
}

func TestFetch_FallsBackOnUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Config{BaseURL: url, Size: 151}, nil)
	got := c.Fetch(context.Background())
	assert.Len(t, got, 151)
}

func TestFetch_TimeoutIsBounded(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := NewClient(Config{BaseURL: srv.URL, Size: 4, Timeout: 50 * time.Millisecond}, nil)
	start := time.Now()
	got := c.Fetch(context.Background())

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, c.Fallback(), got)
}

func TestFallback_OrderedAndSized(t *testing.T) {
	full := NewClient(Config{Size: 500}, nil).Fallback()
	require.Len(t, full, 151)
	assert.True(t, sort.SliceIsSorted(full, func(i, j int) bool { return full[i].ID < full[j].ID }))
	assert.Equal(t, "Bulbasaur", full[0].Name)
	assert.Equal(t, "Pikachu", full[24].Name)
	assert.Equal(t, "Mew", full[150].Name)

	curated := NewClient(Config{Size: 12, Shiny: true}, nil).Fallback()
	require.Len(t, curated, 12)
	assert.Equal(t, 12, curated[11].ID)
	assert.Equal(t, "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/shiny/12.png", curated[11].ImageURL)
}

func TestFetch_ConcurrentCallersShareResult(t *testing.T) {
	var hits atomic.Int32
	body := `{"results":[{"name":"pikachu","url":"https://pokeapi.co/api/v2/pokemon/25/"}]}`
	srv := catalogServer(t, http.StatusOK, body, &hits)
	c := NewClient(Config{BaseURL: srv.URL, Size: 1}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := c.Fetch(context.Background())
			assert.Equal(t, 25, got[0].ID)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, hits.Load(), int32(1))
	assert.LessOrEqual(t, hits.Load(), int32(8))
}

func TestIDFromURL(t *testing.T) {
	assert.Equal(t, 25, idFromURL("https://pokeapi.co/api/v2/pokemon/25/"))
	assert.Equal(t, 7, idFromURL("/pokemon/7"))
	assert.Equal(t, 0, idFromURL("https://pokeapi.co/api/v2/pokemon/abc/"))
	assert.Equal(t, 0, idFromURL(""))
}
