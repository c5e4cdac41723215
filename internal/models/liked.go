package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/hymnal/internal/shared"
)

// LikedItem is a liked [Hymn] or [GeneratedHymn] stamped with when it was liked.
//
// It serializes flat: the item's own fields plus likedAt. Entries carrying a numeric id decode as catalog hymns.
type LikedItem struct {
	Hymn      *Hymn
	Generated *GeneratedHymn
	LikedAt   int64 // epoch milliseconds
}

// NewLikedItem wraps item with likedAt set from now.
func NewLikedItem(item Likeable, now time.Time) (LikedItem, error) {
	li := LikedItem{LikedAt: now.UnixMilli()}
	switch v := item.(type) {
	case Hymn:
		li.Hymn = &v
	case *Hymn:
		h := *v
		li.Hymn = &h
	case GeneratedHymn:
		li.Generated = &v
	case *GeneratedHymn:
		g := *v
		li.Generated = &g
	default:
		return LikedItem{}, fmt.Errorf("%w: unsupported liked item %T", shared.ErrInvalidItem, item)
	}
	return li, nil
}

// Identity implements [Likeable].
func (l LikedItem) Identity() string {
	if l.Hymn != nil {
		return l.Hymn.Identity()
	}
	if l.Generated != nil {
		return l.Generated.Identity()
	}
	return ""
}

// IsCatalog reports whether the liked item is a catalog hymn.
func (l LikedItem) IsCatalog() bool {
	return l.Hymn != nil
}

// Title returns the item's English or generated title.
func (l LikedItem) Title() string {
	if l.Hymn != nil {
		return l.Hymn.DisplayTitle()
	}
	if l.Generated != nil {
		return l.Generated.Title
	}
	return ""
}

type likedHymn struct {
	Hymn
	LikedAt int64 `json:"likedAt"`
}

type likedGenerated struct {
	GeneratedHymn
	LikedAt int64 `json:"likedAt"`
}

func (l LikedItem) MarshalJSON() ([]byte, error) {
	switch {
	case l.Hymn != nil:
		return json.Marshal(likedHymn{Hymn: *l.Hymn, LikedAt: l.LikedAt})
	case l.Generated != nil:
		return json.Marshal(likedGenerated{GeneratedHymn: *l.Generated, LikedAt: l.LikedAt})
	default:
		return nil, fmt.Errorf("%w: empty liked item", shared.ErrInvalidItem)
	}
}

func (l *LikedItem) UnmarshalJSON(data []byte) error {
	var probe struct {
		ID *int `json:"id"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	if probe.ID != nil {
		var v likedHymn
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*l = LikedItem{Hymn: &v.Hymn, LikedAt: v.LikedAt}
		return nil
	}

	var v likedGenerated
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = LikedItem{Generated: &v.GeneratedHymn, LikedAt: v.LikedAt}
	return nil
}
