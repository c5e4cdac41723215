package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/hymnal/internal/shared"
)

func TestLanguage(t *testing.T) {
	t.Run("ParseLanguage accepts codes and labels", func(t *testing.T) {
		for input, want := range map[string]Language{"en": English, "AF": Afrikaans, " Zulu ": Zulu, "xhosa": Xhosa} {
			got, err := ParseLanguage(input)
			if err != nil {
				t.Fatalf("ParseLanguage(%q) returned error: %v", input, err)
			}
			if got != want {
				t.Errorf("ParseLanguage(%q) = %v, want %v", input, got, want)
			}
		}
	})

	t.Run("ParseLanguage rejects unknown codes", func(t *testing.T) {
		_, err := ParseLanguage("fr")
		if !errors.Is(err, shared.ErrInvalidLanguage) {
			t.Errorf("expected ErrInvalidLanguage, got %v", err)
		}
	})

	t.Run("Next cycles through every language", func(t *testing.T) {
		lang := English
		seen := map[Language]bool{}
		for range Languages {
			seen[lang] = true
			lang = lang.Next()
		}
		if lang != English {
			t.Errorf("expected cycle to return to English, got %v", lang)
		}
		if len(seen) != len(Languages) {
			t.Errorf("expected %d languages visited, got %d", len(Languages), len(seen))
		}
	})
}

func TestCategory(t *testing.T) {
	t.Run("there are sixteen categories", func(t *testing.T) {
		if len(Categories) != 16 {
			t.Errorf("expected 16 categories, got %d", len(Categories))
		}
	})

	t.Run("ParseCategory is case-insensitive", func(t *testing.T) {
		got, err := ParseCategory("lent & cross")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != LentAndCross {
			t.Errorf("expected %v, got %v", LentAndCross, got)
		}
	})

	t.Run("ParseCategory accepts all", func(t *testing.T) {
		got, err := ParseCategory("ALL")
		if err != nil || got != AllCategories {
			t.Errorf("expected all, got %v (%v)", got, err)
		}
	})

	t.Run("ParseCategory rejects unknown names", func(t *testing.T) {
		if _, err := ParseCategory("Jazz"); !errors.Is(err, shared.ErrInvalidCategory) {
			t.Errorf("expected ErrInvalidCategory, got %v", err)
		}
	})
}

func TestIdentityOf(t *testing.T) {
	t.Run("catalog hymns use their id", func(t *testing.T) {
		if got := IdentityOf(Hymn{ID: 15}); got != "hymn-15" {
			t.Errorf("expected hymn-15, got %s", got)
		}
	})

	t.Run("generated hymns use their title", func(t *testing.T) {
		if got := IdentityOf(GeneratedHymn{Title: "Morning Light"}); got != "generated-Morning Light" {
			t.Errorf("expected generated-Morning Light, got %s", got)
		}
	})

	t.Run("generated hymns with the same title collide", func(t *testing.T) {
		a := GeneratedHymn{Title: "Grace", Lyrics: "one", SessionID: "a"}
		b := GeneratedHymn{Title: "Grace", Lyrics: "two", SessionID: "b"}
		if IdentityOf(a) != IdentityOf(b) {
			t.Error("expected identical titles to share an identity")
		}
	})
}

func TestGeneratedHymn(t *testing.T) {
	t.Run("Failed matches the sentinel title only", func(t *testing.T) {
		if !(GeneratedHymn{Title: ErrorTitle, Lyrics: "boom"}).Failed() {
			t.Error("expected Error title to be a failure")
		}
		if (GeneratedHymn{Title: "", Lyrics: ""}).Failed() {
			t.Error("empty title is not the failure sentinel")
		}
	})

	t.Run("Usable requires lyrics and a non-error title", func(t *testing.T) {
		cases := []struct {
			name string
			g    GeneratedHymn
			want bool
		}{
			{"ok", GeneratedHymn{Title: "Hope", Lyrics: "verse"}, true},
			{"error", GeneratedHymn{Title: ErrorTitle, Lyrics: "message"}, false},
			{"empty lyrics", GeneratedHymn{Title: "Hope"}, false},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if got := tc.g.Usable(); got != tc.want {
					t.Errorf("Usable() = %v, want %v", got, tc.want)
				}
			})
		}
	})
}

func TestLikedItemJSON(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	t.Run("catalog entries serialize flat with likedAt", func(t *testing.T) {
		item, err := NewLikedItem(Hymn{ID: 1, Number: 22, Title: MultilingualText{English: "Blessed Jesus at Thy Word"}}, now)
		if err != nil {
			t.Fatalf("NewLikedItem failed: %v", err)
		}

		data, err := json.Marshal(item)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("unmarshal raw failed: %v", err)
		}
		if raw["id"] != float64(1) {
			t.Errorf("expected flat id field, got %v", raw["id"])
		}
		if raw["likedAt"] != float64(1700000000000) {
			t.Errorf("expected likedAt, got %v", raw["likedAt"])
		}
	})

	t.Run("entries without an id decode as generated hymns", func(t *testing.T) {
		var item LikedItem
		if err := json.Unmarshal([]byte(`{"title":"Dawn","lyrics":"la","likedAt":5}`), &item); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if item.IsCatalog() {
			t.Fatal("expected a generated hymn")
		}
		if item.Identity() != "generated-Dawn" || item.LikedAt != 5 {
			t.Errorf("unexpected item: %+v", item)
		}
	})

	t.Run("NewLikedItem rejects unknown types", func(t *testing.T) {
		if _, err := NewLikedItem(LikedItem{}, now); !errors.Is(err, shared.ErrInvalidItem) {
			t.Errorf("expected ErrInvalidItem, got %v", err)
		}
	})
}
