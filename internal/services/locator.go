package services

import (
	"context"
	"errors"
	"fmt"
	"member-locator-service/internal/domain"
	"member-locator-service/internal/platform/obs"
	"member-locator-service/internal/ports"
	"slices"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

var (
	// A search is already running for this locator.
	ErrSearchInProgress = errors.New("search already in progress")
	// The locator was torn down.
	ErrClosed = errors.New("locator closed")
	// Start was called twice.
	ErrAlreadyStarted = errors.New("locator already started")
)

// Locator drives one display: it resolves the starting location, runs user
// searches, and keeps the ranked member list in step with both.
//
// Every resolution (startup or search) is issued a generation token. A result
// is applied only if no newer resolution has already been applied, and a
// label only if its resolution is still on display. After Close every
// outstanding completion is a no-op.
type Locator struct {
	resolver *LocationResolver
	forward  ports.ForwardGeocoder
	members  ports.MemberRepository
	limit    int
	log      logrus.FieldLogger

	gate   *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	gen      uint64
	started  bool
	closed   bool
	view     domain.View
	snapshot []domain.Member
	subs     map[int]chan domain.View
	nextSub  int
}

func NewLocator(
	resolver *LocationResolver,
	forward ports.ForwardGeocoder,
	members ports.MemberRepository,
	limit int,
	log logrus.FieldLogger,
) *Locator {
	if limit < 1 {
		limit = DefaultRankLimit
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Locator{
		resolver: resolver,
		forward:  forward,
		members:  members,
		limit:    limit,
		log:      log,
		gate:     semaphore.NewWeighted(1),
		ctx:      ctx,
		cancel:   cancel,
		subs:     make(map[int]chan domain.View),
	}
}

// Start loads the member snapshot and runs the startup resolution. It returns
// once the point is known; the label arrives later through Subscribe.
// A member repository failure is logged and ranking proceeds on an empty
// snapshot so the display always has a location.
func (l *Locator) Start(ctx context.Context) (domain.View, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return domain.View{}, ErrClosed
	}
	if l.started {
		l.mu.Unlock()
		return domain.View{}, ErrAlreadyStarted
	}
	l.started = true
	l.gen++
	token := l.gen
	l.mu.Unlock()

	if l.members != nil {
		members, err := l.members.ListMembers(ctx)
		if err != nil {
			l.log.WithError(err).Error("load members failed")
		} else {
			l.SetMembers(members)
		}
	}

	applied := make(chan struct{})
	loc := l.resolver.Acquire(l.ctx, func(label string) {
		<-applied
		l.applyLabel(token, label)
	})
	view, err := l.apply(token, loc)
	close(applied)

	return view, err
}

// Search resolves query and, on success, replaces the displayed location and
// ranking. On failure the current view is left untouched and the error wraps
// domain.ErrNotFound, domain.ErrProvider or domain.ErrEmptyQuery.
// Only one search runs at a time; a concurrent call fails with ErrSearchInProgress.
func (l *Locator) Search(ctx context.Context, query string) (_ domain.View, err error) {
	defer obs.Time(ctx, "locator.Search")(&err)

	if !l.gate.TryAcquire(1) {
		return l.View(), ErrSearchInProgress
	}
	defer l.gate.Release(1)

	text := strings.TrimSpace(query)
	if text == "" {
		return l.View(), fmt.Errorf("search: %w", domain.ErrEmptyQuery)
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return domain.View{}, ErrClosed
	}
	l.gen++
	token := l.gen
	l.mu.Unlock()

	// Tearing down the display abandons the lookup.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(l.ctx, cancel)
	defer stop()

	p, err := l.forward.Resolve(ctx, text)
	if err != nil {
		l.log.WithError(err).WithField("query", text).Info("search failed")
		return l.View(), fmt.Errorf("search %q: %w", text, err)
	}

	obs.LocationResolutions.WithLabelValues(string(domain.SourceSearch)).Inc()
	return l.apply(token, domain.ResolvedLocation{Point: p, Label: text, Source: domain.SourceSearch})
}

// SetMembers swaps in a new member snapshot and re-ranks against the current location.
func (l *Locator) SetMembers(members []domain.Member) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	l.snapshot = slices.Clone(members)
	if l.view.Generation == 0 {
		return
	}

	l.view.Ranked = RankMembers(l.view.Location.Point, l.snapshot, l.limit)
	l.emitLocked()
}

// View returns the current view. Generation 0 means nothing is resolved yet.
func (l *Locator) View() domain.View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view
}

// Subscribe returns a channel that receives the newest view after every
// change. Slow readers skip intermediate views. The channel is closed by
// Close or by calling the returned cancel func.
func (l *Locator) Subscribe() (<-chan domain.View, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan domain.View, 1)
	if l.closed {
		close(ch)
		return ch, func() {}
	}

	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch
	if l.view.Generation > 0 {
		ch <- l.view
	}

	return ch, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if c, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(c)
		}
	}
}

// Close tears the locator down. Pending lookups are cancelled and their
// completions discarded. Safe to call more than once.
func (l *Locator) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	l.cancel()

	for id, ch := range l.subs {
		delete(l.subs, id)
		close(ch)
	}
}

// Closed reports whether Close has been called.
func (l *Locator) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *Locator) apply(token uint64, loc domain.ResolvedLocation) (domain.View, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return domain.View{}, ErrClosed
	}
	if l.view.Generation > token {
		l.log.WithFields(logrus.Fields{
			"generation": token,
			"current":    l.view.Generation,
			"source":     loc.Source,
		}).Debug("discarding superseded resolution")
		return l.view, nil
	}

	l.view = domain.View{
		Location:   loc,
		Ranked:     RankMembers(loc.Point, l.snapshot, l.limit),
		Generation: token,
	}
	l.emitLocked()

	return l.view, nil
}

func (l *Locator) applyLabel(token uint64, label string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.view.Generation != token || l.view.Location.Source == domain.SourceSearch {
		return
	}

	l.view.Location = l.view.Location.WithLabel(label)
	l.emitLocked()
}

func (l *Locator) emitLocked() {
	for _, ch := range l.subs {
		select {
		case ch <- l.view:
			continue
		default:
		}
		// Replace the unread view with the newer one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- l.view:
		default:
		}
	}
}
