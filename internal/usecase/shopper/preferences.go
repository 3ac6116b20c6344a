package shopper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"storefront/internal/bootstrap/logging"
	"storefront/internal/errs"
	"storefront/internal/ports"
)

const PreferencesKey = "userPreferences"

type Preferences struct {
	Theme        string `json:"theme" yaml:"theme" toml:"theme"`
	Currency     string `json:"currency" yaml:"currency" toml:"currency"`
	ItemsPerPage int    `json:"itemsPerPage" yaml:"itemsPerPage" toml:"itemsPerPage"`
	DefaultView  string `json:"defaultView" yaml:"defaultView" toml:"defaultView"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Theme:        "light",
		Currency:     "USD",
		ItemsPerPage: 20,
		DefaultView:  "grid",
	}
}

// PreferenceStore holds the shopper's display preferences.
type PreferenceStore struct {
	mu    sync.Mutex
	store ports.KeyValueStore
	prefs Preferences
}

func NewPreferenceStore(ctx context.Context, store ports.KeyValueStore) *PreferenceStore {
	p := &PreferenceStore{store: store}
	p.prefs = p.load(ctx)
	return p
}

func (p *PreferenceStore) Get() Preferences {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prefs
}

// Update sets one preference by its JSON name. Invalid names or values leave the
// preferences unchanged.
func (p *PreferenceStore) Update(ctx context.Context, name string, value string) (Preferences, error) {
	return p.Apply(ctx, map[string]string{name: value})
}

// Apply sets several preferences at once; either all of them are applied and saved
// or none are.
func (p *PreferenceStore) Apply(ctx context.Context, changes map[string]string) (Preferences, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(changes))
	for name := range changes {
		names = append(names, name)
	}
	sort.Strings(names)

	next := p.prefs
	for _, name := range names {
		var err error
		if next, err = applyPreference(next, name, changes[name]); err != nil {
			return p.prefs, err
		}
	}
	p.prefs = next
	p.save(ctx)
	return p.prefs, nil
}

func (p *PreferenceStore) Reset(ctx context.Context) Preferences {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.prefs = DefaultPreferences()
	p.save(ctx)
	return p.prefs
}

func applyPreference(prefs Preferences, name string, value string) (Preferences, error) {
	value = strings.TrimSpace(value)

	switch strings.TrimSpace(name) {
	case "theme":
		v := strings.ToLower(value)
		if v != "light" && v != "dark" {
			return prefs, fmt.Errorf("%w: theme must be light or dark, got %q", ErrInvalidPreference, value)
		}
		prefs.Theme = v
	case "defaultView":
		v := strings.ToLower(value)
		if v != "grid" && v != "list" {
			return prefs, fmt.Errorf("%w: defaultView must be grid or list, got %q", ErrInvalidPreference, value)
		}
		prefs.DefaultView = v
	case "itemsPerPage":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 100 {
			return prefs, fmt.Errorf("%w: itemsPerPage must be 1..100, got %q", ErrInvalidPreference, value)
		}
		prefs.ItemsPerPage = n
	case "currency":
		v := strings.ToUpper(value)
		if !isCurrencyCode(v) {
			return prefs, fmt.Errorf("%w: currency must be a 3-letter code, got %q", ErrInvalidPreference, value)
		}
		prefs.Currency = v
	default:
		return prefs, fmt.Errorf("%w: %q", ErrUnknownPreference, name)
	}
	return prefs, nil
}

func isCurrencyCode(v string) bool {
	if len(v) != 3 {
		return false
	}
	for _, r := range v {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// load merges the stored document over the defaults; fields that fail validation
// keep their default.
func (p *PreferenceStore) load(ctx context.Context) Preferences {
	logCtx := logging.WithComponent(ctx, "usecase.shopper.preferences")
	prefs := DefaultPreferences()

	raw, found, err := p.store.Get(ctx, PreferencesKey)
	if err != nil {
		logging.Warn(logCtx, "read preferences failed", slog.Any("err", errs.Loggable(err)))
		return prefs
	}
	if !found {
		return prefs
	}

	var stored map[string]any
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		logging.Warn(logCtx, "parse preferences failed", slog.Any("err", errs.Loggable(err)))
		return prefs
	}
	for name, value := range stored {
		next, err := applyPreference(prefs, name, fmt.Sprint(value))
		if err != nil {
			logging.Debug(logCtx, "ignoring stored preference", slog.String("name", name), slog.Any("err", errs.Loggable(err)))
			continue
		}
		prefs = next
	}
	return prefs
}

func (p *PreferenceStore) save(ctx context.Context) {
	data, err := json.Marshal(p.prefs)
	if err == nil {
		err = p.store.Set(ctx, PreferencesKey, string(data))
	}
	if err != nil {
		logging.Warn(logging.WithComponent(ctx, "usecase.shopper.preferences"), "persist preferences failed", slog.Any("err", errs.Loggable(err)))
	}
}
