package shopper

import (
	"context"
	"errors"
	"testing"
)

func TestPreferencesDefaults(t *testing.T) {
	p := NewPreferenceStore(context.Background(), newMemoryKV())

	if got := p.Get(); got != DefaultPreferences() {
		t.Fatalf("Get() = %+v, want defaults", got)
	}
}

func TestPreferencesUpdate(t *testing.T) {
	testCases := []struct {
		name    string
		field   string
		value   string
		wantErr error
		check   func(Preferences) bool
	}{
		{name: "dark theme", field: "theme", value: "Dark", check: func(p Preferences) bool { return p.Theme == "dark" }},
		{name: "list view", field: "defaultView", value: "list", check: func(p Preferences) bool { return p.DefaultView == "list" }},
		{name: "items per page", field: "itemsPerPage", value: "48", check: func(p Preferences) bool { return p.ItemsPerPage == 48 }},
		{name: "currency upper-cased", field: "currency", value: "eur", check: func(p Preferences) bool { return p.Currency == "EUR" }},
		{name: "bad theme", field: "theme", value: "sepia", wantErr: ErrInvalidPreference},
		{name: "zero items", field: "itemsPerPage", value: "0", wantErr: ErrInvalidPreference},
		{name: "too many items", field: "itemsPerPage", value: "101", wantErr: ErrInvalidPreference},
		{name: "bad currency", field: "currency", value: "EURO", wantErr: ErrInvalidPreference},
		{name: "unknown", field: "fontSize", value: "12", wantErr: ErrUnknownPreference},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPreferenceStore(context.Background(), newMemoryKV())

			got, err := p.Update(context.Background(), tc.field, tc.value)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Update() error = %v, want %v", err, tc.wantErr)
				}
				if p.Get() != DefaultPreferences() {
					t.Fatalf("failed Update() changed preferences: %+v", p.Get())
				}
				return
			}
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if !tc.check(got) {
				t.Fatalf("Update() = %+v", got)
			}
		})
	}
}

func TestPreferencesPersistAndReset(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()

	p := NewPreferenceStore(ctx, kv)
	if _, err := p.Update(ctx, "theme", "dark"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if _, err := p.Update(ctx, "itemsPerPage", "10"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	reloaded := NewPreferenceStore(ctx, kv).Get()
	if reloaded.Theme != "dark" || reloaded.ItemsPerPage != 10 || reloaded.Currency != "USD" {
		t.Fatalf("reloaded = %+v", reloaded)
	}

	if got := p.Reset(ctx); got != DefaultPreferences() {
		t.Fatalf("Reset() = %+v", got)
	}
	if got := NewPreferenceStore(ctx, kv).Get(); got != DefaultPreferences() {
		t.Fatalf("reloaded after Reset() = %+v", got)
	}
}

func TestPreferencesLoadIgnoresInvalidStoredFields(t *testing.T) {
	kv := newMemoryKV()
	kv.data[PreferencesKey] = `{"theme":"dark","itemsPerPage":500,"currency":"gbp","extra":true}`

	got := NewPreferenceStore(context.Background(), kv).Get()
	if got.Theme != "dark" || got.ItemsPerPage != 20 || got.Currency != "GBP" || got.DefaultView != "grid" {
		t.Fatalf("Get() = %+v", got)
	}
}

func TestPreferencesFailOpen(t *testing.T) {
	kv := newMemoryKV()
	kv.getErr = errStorageDown
	kv.setErr = errStorageDown

	p := NewPreferenceStore(context.Background(), kv)
	if p.Get() != DefaultPreferences() {
		t.Fatalf("Get() = %+v", p.Get())
	}
	if _, err := p.Update(context.Background(), "theme", "dark"); err != nil {
		t.Fatalf("Update() error = %v, persistence failures are logged only", err)
	}
	if p.Get().Theme != "dark" {
		t.Fatalf("Theme = %q", p.Get().Theme)
	}
}

func TestPreferencesApplyIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	p := NewPreferenceStore(ctx, kv)

	_, err := p.Apply(ctx, map[string]string{"theme": "dark", "itemsPerPage": "abc"})
	if !errors.Is(err, ErrInvalidPreference) {
		t.Fatalf("Apply() error = %v, want ErrInvalidPreference", err)
	}
	if p.Get() != DefaultPreferences() {
		t.Fatalf("failed Apply() changed preferences: %+v", p.Get())
	}
	if _, ok := kv.data[PreferencesKey]; ok {
		t.Fatalf("failed Apply() persisted preferences")
	}

	got, err := p.Apply(ctx, map[string]string{"theme": "dark", "defaultView": "list"})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got.Theme != "dark" || got.DefaultView != "list" {
		t.Fatalf("Apply() = %+v", got)
	}
}
