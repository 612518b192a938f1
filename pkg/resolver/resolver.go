package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/cuemby/burrow/pkg/cache"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/message"
	"github.com/cuemby/burrow/pkg/name"
	"github.com/cuemby/burrow/pkg/query"
	"github.com/cuemby/burrow/pkg/wire"
	"github.com/miekg/dns"
)

// ErrReferral is returned when a recursive upstream answers with a
// delegation instead of resolving the name
var ErrReferral = errors.New("upstream returned a referral")

// Exchanger sends one encoded query and returns the raw response
type Exchanger interface {
	Exchange(ctx context.Context, msg []byte, transport message.Transport) ([]byte, error)
}

// ExchangerFunc adapts a function to Exchanger
type ExchangerFunc func(ctx context.Context, msg []byte, transport message.Transport) ([]byte, error)

func (f ExchangerFunc) Exchange(ctx context.Context, msg []byte, transport message.Transport) ([]byte, error) {
	return f(ctx, msg, transport)
}

// Resolver answers from the cache and fetches misses through an Exchanger
type Resolver struct {
	cache     *cache.Cache
	exchanger Exchanger
	coalescer cache.Coalescer
	transport message.Transport
	dnssecOK  bool
	now       func() wire.NanosecondsSinceUnixEpoch
	id        func() uint16
}

// Option configures a Resolver
type Option func(*Resolver)

// WithTransport sets the first transport tried; UDP falls back to TCP on
// truncation
func WithTransport(t message.Transport) Option {
	return func(r *Resolver) { r.transport = t }
}

// WithDNSSECOK sets the DO bit on outgoing queries
func WithDNSSECOK(ok bool) Option {
	return func(r *Resolver) { r.dnssecOK = ok }
}

// WithClock replaces the wall clock
func WithClock(now func() wire.NanosecondsSinceUnixEpoch) Option {
	return func(r *Resolver) { r.now = now }
}

// WithIDs replaces the random query ID source
func WithIDs(id func() uint16) Option {
	return func(r *Resolver) { r.id = id }
}

// New creates a resolver over c
func New(c *cache.Cache, exchanger Exchanger, opts ...Option) *Resolver {
	r := &Resolver{
		cache:     c,
		exchanger: exchanger,
		transport: message.TransportUDP,
		now:       wire.Now,
		id:        dns.Id,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cache returns the cache the resolver commits to
func (r *Resolver) Cache() *cache.Cache {
	return r.cache
}

// Resolve returns the answer for (owner, p.Type). A cache miss is fetched
// starting from the name the cached aliases led to. Concurrent misses for
// the same name and type share one fetch.
func Resolve[T, C any](ctx context.Context, r *Resolver, p *query.Processor[T, C], owner name.CaseFoldedName) (cache.Answer[C], error) {
	answer := p.Lookup(r.cache, owner, r.now())
	if answer.Kind != cache.Miss {
		return answer, nil
	}

	target := answer.CanonicalName
	var result query.Result[T]
	shared, err := r.coalescer.Do(ctx, target, p.Type, func() error {
		var err error
		result, err = fetch(ctx, r, p, target)
		return err
	})
	if err != nil {
		return cache.Answer[C]{}, err
	}
	if shared {
		// The leader's result is only visible through the cache.
		if answer = p.Lookup(r.cache, owner, r.now()); answer.Kind != cache.Miss {
			return answer, nil
		}
		if result, err = fetch(ctx, r, p, target); err != nil {
			return cache.Answer[C]{}, err
		}
	}
	if result.Outcome == message.OutcomeReferral {
		return cache.Answer[C]{}, fmt.Errorf("%s %s: %w", target, p.Type, ErrReferral)
	}
	return p.Answer(result), nil
}

func fetch[T, C any](ctx context.Context, r *Resolver, p *query.Processor[T, C], target name.CaseFoldedName) (query.Result[T], error) {
	q := message.NewQuery(r.id(), target, p.Type)
	q.DNSSECOK = r.dnssecOK
	q.Transport = r.transport

	logger := log.WithQuery("resolver", target.String(), p.Type.String())
	for {
		result, err := exchange(ctx, r, p, q)
		if q.Transport == message.TransportUDP && errors.Is(err, message.ErrTruncatedRetryOverTCP) {
			logger.Debug().Msg("truncated over udp, retrying over tcp")
			q.ID, q.Transport = r.id(), message.TransportTCP
			continue
		}
		if err != nil {
			logger.Debug().Err(err).Str("transport", q.Transport.String()).Msg("fetch failed")
		}
		return result, err
	}
}

func exchange[T, C any](ctx context.Context, r *Resolver, p *query.Processor[T, C], q message.Query) (query.Result[T], error) {
	packed, err := Encode(q)
	if err != nil {
		return query.Result[T]{}, err
	}
	raw, err := r.exchanger.Exchange(ctx, packed, q.Transport)
	if err != nil {
		return query.Result[T]{}, fmt.Errorf("failed to exchange over %s: %w", q.Transport, err)
	}
	return p.Process(r.cache, q, raw, r.now())
}

// Encode packs q as a wire-format query
func Encode(q message.Query) ([]byte, error) {
	m := new(dns.Msg)
	m.Id = q.ID
	m.RecursionDesired = q.RecursionDesired
	m.CheckingDisabled = q.CheckingDisabled
	m.AuthenticatedData = q.AuthenticData
	m.Question = []dns.Question{{Name: q.Name.String(), Qtype: uint16(q.Type), Qclass: q.Class}}
	if q.DNSSECOK {
		m.SetEdns0(dns.DefaultMsgSize, true)
	}
	packed, err := m.Pack()
	if err != nil {
		return nil, fmt.Errorf("failed to pack query: %w", err)
	}
	return packed, nil
}
