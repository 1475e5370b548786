// Package dashboard reads account state from the backend for the customer
// dashboard. Every read resolves to an explicit State; nothing is fabricated
// when the backend has no data.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/lipsense/portal/internal/pkg/backend"
	"github.com/lipsense/portal/internal/pkg/cache"
	"github.com/lipsense/portal/internal/pkg/env"
	"github.com/lipsense/portal/internal/pkg/metrics"
)

type State string

const (
	StateLoading     State = "loading"
	StateReady       State = "ready"
	StateEmpty       State = "empty"
	StateError       State = "error"
	StateUnavailable State = "unavailable"
)

const (
	UnavailableMessage = "This data is not available yet."
	ErrorMessage       = "We could not load this section. Try refreshing."
	ExpiredMessage     = "Your session has expired. Please sign in again."

	defaultCacheTTL = 60 * time.Second
	// generationTTL bounds how long an idle account keeps its generation key.
	generationTTL = 24 * time.Hour
)

// Source is the read side of the backend client.
type Source interface {
	CurrentPlan(ctx context.Context) (*backend.CurrentPlan, error)
	Payments(ctx context.Context, page int) (*backend.PaymentPage, error)
	UsageStats(ctx context.Context) (*backend.UsageStats, error)
	Results(ctx context.Context, page int) (*backend.ResultPage, error)
}

// Linker turns a stored result key into a download URL.
type Linker interface {
	DownloadURL(ctx context.Context, key string) (string, error)
}

// View is the outcome of a single-record read.
type View[T any] struct {
	State   State
	Data    *T
	Message string
	// Unauthorized is set when the backend rejected the session token.
	Unauthorized bool
}

// Page is the outcome of a paginated read. Page is 1-based.
type Page[T any] struct {
	State        State
	Items        []T
	Page         int
	TotalPages   int
	Total        int
	Message      string
	Unauthorized bool
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// HasNext is false once the current page reaches the last page.
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }

func (p Page[T]) PrevPage() int { return p.Page - 1 }
func (p Page[T]) NextPage() int { return p.Page + 1 }

// ResultRow is a backend result plus an optional signed download link.
type ResultRow struct {
	backend.Result
	DownloadURL string
}

// Reader caches per account under a generation token. Invalidate swaps the
// token, which orphans every cached page of that account at once.
type Reader struct {
	src    Source
	store  cache.Store
	linker Linker
	scope  string
	ttl    time.Duration

	mu  sync.Mutex
	gen string
}

// NewReader reads through store for the account identified by scope. store
// and linker may be nil.
func NewReader(src Source, store cache.Store, linker Linker, scope string) *Reader {
	return &Reader{
		src:    src,
		store:  store,
		linker: linker,
		scope:  scope,
		ttl:    env.GetSeconds("DASHBOARD_CACHE_SECONDS", defaultCacheTTL),
	}
}

// CurrentPlan reads the active subscription. A 404 means the account has none.
func (r *Reader) CurrentPlan(ctx context.Context, refresh bool) View[backend.CurrentPlan] {
	plan, err := cached(ctx, r, "current_plan", 0, refresh, r.src.CurrentPlan)
	v := View[backend.CurrentPlan]{Data: plan}
	v.State, v.Message, v.Unauthorized = classify(err)
	if err == nil {
		v.State = StateReady
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		v.State, v.Message = StateEmpty, ""
	}
	record("current_plan", v.State, err)
	return v
}

func (r *Reader) Usage(ctx context.Context, refresh bool) View[backend.UsageStats] {
	stats, err := cached(ctx, r, "usage", 0, refresh, r.src.UsageStats)
	v := View[backend.UsageStats]{Data: stats}
	v.State, v.Message, v.Unauthorized = classify(err)
	if err == nil {
		v.State = StateReady
		if stats.APICallsUsed == 0 && len(stats.Daily) == 0 {
			v.State = StateEmpty
		}
	}
	record("usage", v.State, err)
	return v
}

// Payments reads one page of payment history. Pages past the end come back
// empty without an error.
func (r *Reader) Payments(ctx context.Context, page int, refresh bool) Page[backend.Payment] {
	page = clampPage(page)
	res, err := cached(ctx, r, "payments", page, refresh, func(ctx context.Context) (*backend.PaymentPage, error) {
		return r.src.Payments(ctx, page)
	})

	out := Page[backend.Payment]{Page: page}
	out.State, out.Message, out.Unauthorized = classify(err)
	if err == nil {
		out.Items = res.Data
		out.Total = res.Meta.Total
		out.TotalPages = totalPages(res.Meta)
		out.State = pageState(len(out.Items))
	}
	record("payments", out.State, err)
	return out
}

// Results reads one page of AI job results and signs download links when a
// linker is configured.
func (r *Reader) Results(ctx context.Context, page int, refresh bool) Page[ResultRow] {
	page = clampPage(page)
	res, err := cached(ctx, r, "results", page, refresh, func(ctx context.Context) (*backend.ResultPage, error) {
		return r.src.Results(ctx, page)
	})

	out := Page[ResultRow]{Page: page}
	out.State, out.Message, out.Unauthorized = classify(err)
	if err == nil {
		out.Total = res.Meta.Total
		out.TotalPages = totalPages(res.Meta)
		out.Items = make([]ResultRow, 0, len(res.Data))
		for _, item := range res.Data {
			row := ResultRow{Result: item}
			if r.linker != nil && item.OutputKey != "" {
				link, lerr := r.linker.DownloadURL(ctx, item.OutputKey)
				if lerr != nil {
					log.Warnf("[Dashboard] could not sign result %s: %v", item.ID, lerr)
				} else {
					row.DownloadURL = link
				}
			}
			out.Items = append(out.Items, row)
		}
		out.State = pageState(len(out.Items))
	}
	record("results", out.State, err)
	return out
}

// Invalidate drops every cached read of the account after a mutation such as
// a cancel or a completed checkout.
func (r *Reader) Invalidate(ctx context.Context) {
	if r.store == nil || r.scope == "" {
		return
	}
	gen := uuid.NewString()
	if err := r.store.Set(ctx, r.genKey(), gen, r.genTTL()); err != nil {
		log.Warnf("[Dashboard] cache invalidation failed for %s: %v", r.scope, err)
		return
	}
	r.mu.Lock()
	r.gen = gen
	r.mu.Unlock()
}

func (r *Reader) genKey() string {
	return "dashboard:" + r.scope + ":gen"
}

func (r *Reader) genTTL() time.Duration {
	return max(generationTTL, 2*r.ttl)
}

// generation returns the account's current token, creating one when none is
// stored. It is read once per Reader.
func (r *Reader) generation(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != "" {
		return r.gen, nil
	}

	gen, err := r.store.Get(ctx, r.genKey())
	if errors.Is(err, cache.ErrMiss) {
		fresh := uuid.NewString()
		var ok bool
		ok, err = r.store.SetNX(ctx, r.genKey(), fresh, r.genTTL())
		if err == nil && ok {
			gen = fresh
		} else if err == nil {
			gen, err = r.store.Get(ctx, r.genKey())
		}
	}
	if err != nil {
		return "", err
	}
	r.gen = gen
	return gen, nil
}

func (r *Reader) key(gen, reader string, page int) string {
	return fmt.Sprintf("dashboard:%s:%s:%s:%d", r.scope, gen, reader, page)
}

// cached serves a read from the store unless refresh is set. Only successful
// reads are written back.
func cached[T any](ctx context.Context, r *Reader, reader string, page int, refresh bool, load func(context.Context) (*T, error)) (*T, error) {
	useCache := r.store != nil && r.scope != ""
	var key string
	if useCache {
		gen, err := r.generation(ctx)
		if err != nil {
			log.Warnf("[Dashboard] cache generation for %s unavailable: %v", r.scope, err)
			useCache = false
		}
		key = r.key(gen, reader, page)
	}

	if useCache && !refresh {
		raw, err := r.store.Get(ctx, key)
		if err == nil {
			var v T
			if jerr := json.Unmarshal([]byte(raw), &v); jerr == nil {
				return &v, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Warnf("[Dashboard] cache read %s failed: %v", key, err)
		}
	}

	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, backend.ErrNoData
	}

	if useCache {
		if raw, jerr := json.Marshal(v); jerr == nil {
			if serr := r.store.Set(ctx, key, string(raw), r.ttl); serr != nil {
				log.Warnf("[Dashboard] cache write %s failed: %v", key, serr)
			}
		}
	}
	return v, nil
}

func classify(err error) (State, string, bool) {
	if err == nil {
		return StateReady, "", false
	}
	if errors.Is(err, backend.ErrNoData) {
		return StateUnavailable, UnavailableMessage, false
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		return StateError, ExpiredMessage, true
	}
	return StateError, ErrorMessage, false
}

func record(reader string, s State, err error) {
	metrics.DashboardReads.WithLabelValues(reader, string(s)).Inc()
	if s == StateError {
		log.Warnf("[Dashboard] %s read failed: %v", reader, err)
	}
}

func pageState(n int) State {
	if n == 0 {
		return StateEmpty
	}
	return StateReady
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func totalPages(m backend.PageMeta) int {
	if m.LastPage > 0 {
		return m.LastPage
	}
	if m.PerPage > 0 && m.Total > 0 {
		return (m.Total + m.PerPage - 1) / m.PerPage
	}
	return 1
}
