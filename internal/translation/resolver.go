// package translation resolves multilingual text for display, translating and caching on demand
package translation

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/desertthunder/hymnal/internal/models"
)

// Translator translates text. A failed call returns text unchanged.
type Translator interface {
	Translate(ctx context.Context, text string, target, source models.Language) string
}

// StrictTranslator reports translation failures instead of hiding them.
// When the [Translator] given to a [Resolver] also implements it, failed calls are not cached.
type StrictTranslator interface {
	TryTranslate(ctx context.Context, text string, target, source models.Language) (string, error)
}

// Source records how a [Result] was produced.
type Source int

const (
	SourceFallback Source = iota // caller-supplied fallback or untranslated English
	SourceEnglish                // the field's English entry
	SourceStored                 // a pre-supplied translation on the field
	SourceCache                  // a previously fetched translation
	SourceRemote                 // freshly fetched from the translator
	SourceLoading                // remote fetch pending; Text holds the English to show meanwhile
)

func (s Source) String() string {
	switch s {
	case SourceFallback:
		return "fallback"
	case SourceEnglish:
		return "english"
	case SourceStored:
		return "stored"
	case SourceCache:
		return "cache"
	case SourceRemote:
		return "remote"
	case SourceLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Request asks for one multilingual field in one language.
type Request struct {
	Field    models.MultilingualText
	Language models.Language
	Fallback string
}

// Effective returns the English text a translation starts from: the field's English entry, else the fallback.
func (r Request) Effective() string {
	if en := r.Field.English(); en != "" {
		return en
	}
	return r.Fallback
}

// Key identifies the request's translation in the cache: "<lang>:<effective English>".
func (r Request) Key() string {
	return string(r.Language) + ":" + r.Effective()
}

// Result is resolved display text.
type Result struct {
	Text   string
	Source Source
}

// Loading reports whether a remote translation is still pending.
func (r Result) Loading() bool {
	return r.Source == SourceLoading
}

// Resolver resolves [Request]s against stored text, the cache and the translator.
//
// Concurrent fetches of the same key share one translator call.
type Resolver struct {
	translator Translator
	cache      Cache
	group      singleflight.Group
	logger     *log.Logger
}

// NewResolver creates a Resolver. The cache is owned by the caller and may be shared between resolvers.
func NewResolver(translator Translator, cache Cache, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{translator: translator, cache: cache, logger: logger}
}

// Cache returns the resolver's cache.
func (r *Resolver) Cache() Cache {
	return r.cache
}

// Lookup resolves req without calling the translator.
//
// It returns a Loading result carrying the effective English text when a remote fetch is required.
// Only a nil field counts as absent; an empty field translates the fallback like any field without English.
func (r *Resolver) Lookup(req Request) Result {
	if req.Field == nil {
		return Result{Text: req.Fallback, Source: SourceFallback}
	}

	if req.Language == "" || req.Language == models.English {
		if en := req.Field.English(); en != "" {
			return Result{Text: en, Source: SourceEnglish}
		}
		return Result{Text: req.Fallback, Source: SourceFallback}
	}

	if text := req.Field[req.Language]; text != "" {
		return Result{Text: text, Source: SourceStored}
	}

	effective := req.Effective()
	if effective == "" {
		return Result{Source: SourceFallback}
	}

	if text, ok := r.cache.Get(req.Key()); ok {
		return Result{Text: text, Source: SourceCache}
	}

	return Result{Text: effective, Source: SourceLoading}
}

// Resolve fully resolves req, fetching from the translator when needed.
// The only error is ctx's, returned when ctx ends before a pending fetch completes.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Result, error) {
	if res := r.Lookup(req); !res.Loading() {
		return res, nil
	}
	return r.Fetch(ctx, req)
}

// Fetch translates req's effective English text.
//
// A non-empty translation is cached. An empty or failed translation resolves to the effective
// English text and is not cached, so a later request retries. The translator call is shared by
// every concurrent Fetch of the same key and is not cancelled when one caller's ctx ends.
func (r *Resolver) Fetch(ctx context.Context, req Request) (Result, error) {
	key := req.Key()

	ch := r.group.DoChan(key, func() (any, error) {
		return r.fetch(context.WithoutCancel(ctx), req, key), nil
	})

	select {
	case <-ctx.Done():
		return Result{Text: req.Effective(), Source: SourceLoading}, ctx.Err()
	case res := <-ch:
		return res.Val.(Result), nil
	}
}

func (r *Resolver) fetch(ctx context.Context, req Request, key string) Result {
	if text, ok := r.cache.Get(key); ok {
		return Result{Text: text, Source: SourceCache}
	}

	effective := req.Effective()
	if effective == "" {
		return Result{Source: SourceFallback}
	}

	var (
		text string
		err  error
	)
	if strict, ok := r.translator.(StrictTranslator); ok {
		text, err = strict.TryTranslate(ctx, effective, req.Language, models.English)
	} else {
		text = r.translator.Translate(ctx, effective, req.Language, models.English)
	}

	if err != nil {
		r.logger.Debug("translation failed", "key", key, "error", err)
		return Result{Text: effective, Source: SourceFallback}
	}
	if text == "" {
		r.logger.Debug("translation empty", "key", key)
		return Result{Text: effective, Source: SourceFallback}
	}

	r.cache.Add(key, text)
	return Result{Text: text, Source: SourceRemote}
}
