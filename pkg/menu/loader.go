package menu

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/kittrack/kittrack/pkg/tracking"
	"github.com/kittrack/kittrack/pkg/whttp"
	"golang.org/x/sync/errgroup"
)

// Loader fetches meal menus from the backend and keeps the most recent
// menu per meal. Loading a meal again replaces its previous menu.
type Loader struct {
	baseURL string
	client  *retryablehttp.Client
	log     tracking.Logger

	mu    sync.Mutex
	menus map[tracking.MealType]*Menu
}

func NewLoader(baseURL string, client *retryablehttp.Client, log tracking.Logger) *Loader {
	if log == nil {
		log = tracking.NopLogger{}
	}
	return &Loader{
		baseURL: baseURL,
		client:  client,
		log:     log,
		menus:   make(map[tracking.MealType]*Menu),
	}
}

// Load fetches the catalog for meal and replaces any menu previously
// loaded for it. All sections of the new menu are collapsed.
func (l *Loader) Load(ctx context.Context, kitID string, meal tracking.MealType) (*Menu, error) {
	q := url.Values{}
	q.Set("kitId", kitID)
	q.Set("meal_type", string(meal))

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method: "GET",
		URL:    l.baseURL + "/get-menu-data?" + q.Encode(),
	}, l.client)
	if err != nil {
		l.log.Errorf("Error loading menu data: %v", err)
		return nil, fmt.Errorf("loading %s menu: %w", meal, err)
	}
	if res.StatusCode != 200 {
		l.log.Errorf("Error loading menu data: %s", res.Summary())
		return nil, fmt.Errorf("loading %s menu: %s", meal, res.Summary())
	}

	categories, err := Parse(res.BodyString, meal)
	if err != nil {
		if err == ErrNoMenuData {
			l.log.Warnf("No data available for meal type %s", meal)
		} else {
			l.log.Errorf("Error loading menu data: %v", err)
		}
		return nil, err
	}

	m := NewMenu(meal, categories)
	l.mu.Lock()
	l.menus[meal] = m
	l.mu.Unlock()
	l.log.Debugf("Loaded %d categories (%d items) for %s", len(categories), m.ItemCount(), meal)
	return m, nil
}

// LoadAll fetches the three meal menus in parallel.
func (l *Loader) LoadAll(ctx context.Context, kitID string) (map[tracking.MealType]*Menu, error) {
	g, gctx := errgroup.WithContext(ctx)
	for _, meal := range tracking.MealTypes() {
		meal := meal
		g.Go(func() error {
			_, err := l.Load(gctx, kitID, meal)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return l.Menus(), nil
}

// Menu returns the last menu loaded for meal, or nil.
func (l *Loader) Menu(meal tracking.MealType) *Menu {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.menus[meal]
}

// Menus returns a snapshot of every loaded menu.
func (l *Loader) Menus() map[tracking.MealType]*Menu {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[tracking.MealType]*Menu, len(l.menus))
	for k, v := range l.menus {
		out[k] = v
	}
	return out
}
