package models

import "testing"

func TestIdentity(t *testing.T) {
	tt := []struct {
		name  string
		id    Identity
		valid bool
	}{
		{name: "both set", id: Identity{Name: "user@x.com", Type: GoogleAccountType}, valid: true},
		{name: "empty name", id: Identity{Name: "", Type: GoogleAccountType}, valid: false},
		{name: "empty type", id: Identity{Name: "user@x.com", Type: ""}, valid: false},
		{name: "blank name", id: Identity{Name: "   ", Type: GoogleAccountType}, valid: false},
		{name: "zero value", id: Identity{}, valid: false},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.id.Valid(); got != tc.valid {
				t.Errorf("Valid() = %v, want %v", got, tc.valid)
			}
			if err := tc.id.Validate(); (err == nil) != tc.valid {
				t.Errorf("Validate() = %v, want valid=%v", err, tc.valid)
			}
		})
	}

	t.Run("NewIdentity trims", func(t *testing.T) {
		id := NewIdentity("  user@x.com ", " com.google ")
		if id.Name != "user@x.com" || id.Type != "com.google" {
			t.Errorf("NewIdentity() = %+v", id)
		}
	})

	t.Run("String", func(t *testing.T) {
		if got := (Identity{}).String(); got != "<none>" {
			t.Errorf("String() = %q, want <none>", got)
		}
		if got := NewIdentity("a@b.c", "com.google").String(); got != "a@b.c (com.google)" {
			t.Errorf("String() = %q", got)
		}
	})
}

func TestUniquePlaylists(t *testing.T) {
	in := []Playlist{
		{ID: "a", Title: "first a"},
		{ID: "b", Title: "b"},
		{ID: "a", Title: "second a"},
		{ID: "", Title: "no id"},
		{ID: "c", Title: "c"},
	}

	got := UniquePlaylists(in)
	if len(got) != 3 {
		t.Fatalf("expected 3 playlists, got %d: %+v", len(got), got)
	}
	for i, want := range []string{"first a", "b", "c"} {
		if got[i].Title != want {
			t.Errorf("playlist %d = %q, want %q", i, got[i].Title, want)
		}
	}

	if len(UniquePlaylists(nil)) != 0 {
		t.Error("expected empty result for nil input")
	}
}
