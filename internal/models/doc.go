// Package models defines the domain types for the hymnal catalog.
//
// The package contains three groups of types:
//
// 1. Vocabulary: closed enumerations shared by every layer
//   - [Language] : supported ISO 639-1 codes with display labels
//   - [Category] : the fixed hymn categories plus the "all" filter value
//
// 2. Content: catalog and AI-produced text
//   - [MultilingualText] : language to text map with English as the canonical entry
//   - [Hymn] : immutable catalog entry
//   - [GeneratedHymn] : AI-produced hymn, identified by its title
//   - [Inspiration] : devotional text with a Bible verse
//
// 3. Favorites
//   - [Likeable] : anything with a liked-set identity, see [IdentityOf]
//   - [LikedItem] : a liked hymn or generated hymn stamped with likedAt
//
// A [GeneratedHymn] titled [ErrorTitle] is the failure sentinel returned by the generation client.
package models
