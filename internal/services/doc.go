// Package services implements the client side of the AI gateway.
//
// # Generator
//
// [Generator] is the content API the rest of the application depends on: inspiration,
// hymn generation, search-and-generate and translation. [AIClient] implements it by posting
// an [Envelope] of {action, payload} to the gateway and decoding {result} or {error}.
//
// # Sentinel Values
//
// Content operations never return errors. A failed call yields a value of the usual shape:
//   - Inspiration: the failure message as the text with an empty Bible verse
//   - Hymn: title [models.ErrorTitle] with the failure message as lyrics
//   - Translate: the input text unchanged
//
// The message is the gateway's own {error} text when present, [MessageNotConfigured] when no
// gateway URL is set, and [MessageGeneric] for everything else. [AIClient.TryTranslate] exposes
// the success/failure discriminator that Translate hides.
//
// # Circuit Breaker
//
// Every call runs through a gobreaker circuit breaker. Each operation still makes a single
// attempt; once the breaker opens, calls fail fast into the sentinel path until the cooldown ends.
package services
