package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/DoyleJ11/pokeduel-backend/internal/engine"
)

const (
	DefaultBaseURL = "https://pokeapi.co/api/v2"
	DefaultSize    = 151
	DefaultTimeout = 5 * time.Second

	spriteURL      = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/%d.png"
	shinySpriteURL = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/shiny/%d.png"
)

var errEmptyCatalog = errors.New("catalog returned no pokemon")

type Config struct {
	BaseURL string
	Size    int
	Timeout time.Duration
	Shiny   bool
}

// Client fetches the roster from the public catalog and falls back to the
// built-in table on any failure.
type Client struct {
	config Config
	http   *http.Client
	log    *zap.Logger
	group  singleflight.Group
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		log:    log.Named("roster"),
	}
}

type catalogPage struct {
	Results []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"results"`
}

// Fetch implements engine.RosterSource. It never fails: errors are logged and
// replaced by the fallback roster.
func (c *Client) Fetch(ctx context.Context) []engine.Entity {
	v, err, _ := c.group.Do("roster", func() (interface{}, error) {
		return c.fetchCatalog(ctx)
	})
	if err != nil {
		c.log.Warn("catalog unavailable, using fallback roster",
			zap.Error(err),
			zap.String("base_url", c.config.BaseURL),
			zap.Int("size", c.config.Size),
		)
		return c.Fallback()
	}
	entities := v.([]engine.Entity)
	out := make([]engine.Entity, len(entities))
	copy(out, entities)
	return out
}

func (c *Client) fetchCatalog(ctx context.Context) ([]engine.Entity, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	url := strings.TrimRight(c.config.BaseURL, "/") + "/pokemon?limit=" + strconv.Itoa(c.config.Size)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog status %d", resp.StatusCode)
	}

	var page catalogPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(page.Results) == 0 {
		return nil, errEmptyCatalog
	}

	out := make([]engine.Entity, 0, len(page.Results))
	for i, r := range page.Results {
		id := idFromURL(r.URL)
		if id == 0 {
			id = i + 1
		}
		out = append(out, c.entity(id, titleCase(r.Name)))
	}
	return out, nil
}

// Fallback returns the built-in roster, ordered by id and cut to the
// configured size.
func (c *Client) Fallback() []engine.Entity {
	n := c.config.Size
	if n > len(fallbackNames) {
		n = len(fallbackNames)
	}
	out := make([]engine.Entity, n)
	for i := 0; i < n; i++ {
		out[i] = c.entity(i+1, fallbackNames[i])
	}
	return out
}

func (c *Client) entity(id int, name string) engine.Entity {
	return engine.Entity{
		ID:       id,
		Name:     name,
		ImageURL: ImageURL(id, c.config.Shiny),
	}
}

// titleCase turns catalog slugs like "mr-mime" into "Mr-Mime". A Caser is
// stateful, so one is built per call.
func titleCase(name string) string {
	return cases.Title(language.English).String(name)
}

func ImageURL(id int, shiny bool) string {
	if shiny {
		return fmt.Sprintf(shinySpriteURL, id)
	}
	return fmt.Sprintf(spriteURL, id)
}

// idFromURL reads the numeric id from ".../pokemon/25/".
func idFromURL(u string) int {
	parts := strings.Split(strings.TrimRight(u, "/"), "/")
	if len(parts) == 0 {
		return 0
	}
	id, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
