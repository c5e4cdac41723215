package tasks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/desertthunder/hymnal/internal/catalog"
	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/shared"
	"github.com/desertthunder/hymnal/internal/translation"
)

// WarmOpts contains configuration for a warm run.
type WarmOpts struct {
	Languages  []models.Language // Target languages; English is ignored (default: every non-English language)
	Fields     []Field           // Fields to translate (default: titles)
	NumWorkers int               // Concurrent fetches (default: 4, max: 16)
	RateLimit  float64           // Fetches started per second (default: 2)
}

// WarmResult summarizes a warm run.
type WarmResult struct {
	Hymns      int // Hymns in the catalog
	Planned    int // Requests needing a remote fetch
	Skipped    int // Requests that already resolved locally
	Translated int // Fresh translations now cached
	Cached     int // Requests satisfied by another fetch of the same text
	Failed     int // Requests that fell back to English
}

type warmJob struct {
	number  int
	field   Field
	request translation.Request
}

// WarmEngine pre-fetches catalog translations into the resolver's cache.
type WarmEngine struct {
	store    catalog.Store
	resolver *translation.Resolver
	logger   *log.Logger
}

// NewWarmEngine creates a WarmEngine over store, fetching through resolver.
func NewWarmEngine(store catalog.Store, resolver *translation.Resolver, logger *log.Logger) *WarmEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &WarmEngine{store: store, resolver: resolver, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *WarmEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run warms the cache for opts and returns what it did.
//
// When ctx ends mid-run the partial result is returned along with ctx's error.
func (e *WarmEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts WarmOpts) (*WarmResult, error) {
	if e.store == nil || e.resolver == nil {
		return nil, fmt.Errorf("%w: warm engine not initialized", shared.ErrServiceUnavailable)
	}
	opts = opts.withDefaults()

	e.sendProgress(progress, loadCatalogUpdate())
	hymns, err := e.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	result := &WarmResult{Hymns: len(hymns)}
	jobs := e.plan(hymns, opts, result)
	e.sendProgress(progress, planUpdate(len(hymns), len(jobs), result.Skipped))

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.NumWorkers)

	var (
		mu   sync.Mutex
		done int
	)

	for _, job := range jobs {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}

			res, err := e.resolver.Fetch(gctx, job.request)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()

			switch res.Source {
			case translation.SourceRemote:
				result.Translated++
			case translation.SourceCache:
				result.Cached++
			default:
				result.Failed++
				e.logger.Warn("translation not warmed", "number", job.number, "field", job.field, "language", job.request.Language)
			}

			done++
			e.sendProgress(progress, fetchUpdate(done, len(jobs), job, res))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	e.logger.Info("warm complete", "translated", result.Translated, "cached", result.Cached, "failed", result.Failed, "skipped", result.Skipped)
	e.sendProgress(progress, completeUpdate(result))
	return result, nil
}

// plan builds one job per text that still needs a remote fetch. Duplicate texts are planned once.
func (e *WarmEngine) plan(hymns []models.Hymn, opts WarmOpts, result *WarmResult) []warmJob {
	seen := make(map[string]bool)
	var jobs []warmJob

	for _, lang := range opts.Languages {
		for _, h := range hymns {
			for _, field := range opts.Fields {
				req := translation.Request{Field: field.of(h), Language: lang}

				if !e.resolver.Lookup(req).Loading() || seen[req.Key()] {
					result.Skipped++
					continue
				}

				seen[req.Key()] = true
				jobs = append(jobs, warmJob{number: h.Number, field: field, request: req})
			}
		}
	}

	result.Planned = len(jobs)
	return jobs
}

func (o WarmOpts) withDefaults() WarmOpts {
	var langs []models.Language
	for _, lang := range o.Languages {
		if lang != models.English && lang != "" {
			langs = append(langs, lang)
		}
	}
	if len(o.Languages) == 0 {
		for _, lang := range models.Languages {
			if lang != models.English {
				langs = append(langs, lang)
			}
		}
	}
	o.Languages = langs

	if len(o.Fields) == 0 {
		o.Fields = []Field{FieldTitle}
	}
	if o.NumWorkers <= 0 {
		o.NumWorkers = 4
	}
	if o.NumWorkers > 16 {
		o.NumWorkers = 16
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 2
	}
	return o
}
