package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	consumerDomain "github.com/davicafu/rosterlab/internal/consumer/domain"
	sharedDomain "github.com/davicafu/rosterlab/internal/shared/domain"
)

// InMemoryConsumerRepo simula ConsumerRepository con outbox incluido.
type InMemoryConsumerRepo struct {
	Consumers map[string]*consumerDomain.Consumer
	Outbox    []sharedDomain.OutboxEvent
	FailWith  error
	mu        sync.Mutex
}

var _ consumerDomain.ConsumerRepository = (*InMemoryConsumerRepo)(nil)

func NewInMemoryConsumerRepo() *InMemoryConsumerRepo {
	return &InMemoryConsumerRepo{Consumers: make(map[string]*consumerDomain.Consumer)}
}

// write aplica una mutación junto con su evento, como haría la transacción real.
func (r *InMemoryConsumerRepo) write(id string, mustExist bool, evt sharedDomain.OutboxEvent, apply func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	_, ok := r.Consumers[id]
	switch {
	case mustExist && !ok:
		return consumerDomain.ErrConsumerNotFound
	case !mustExist && ok:
		return consumerDomain.ErrConsumerAlreadyExists
	}
	apply()
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryConsumerRepo) Create(ctx context.Context, c *consumerDomain.Consumer, evt sharedDomain.OutboxEvent) error {
	cp := *c
	return r.write(c.ConsumerID, false, evt, func() { r.Consumers[c.ConsumerID] = &cp })
}

func (r *InMemoryConsumerRepo) Update(ctx context.Context, c *consumerDomain.Consumer, evt sharedDomain.OutboxEvent) error {
	cp := *c
	return r.write(c.ConsumerID, true, evt, func() { r.Consumers[c.ConsumerID] = &cp })
}

func (r *InMemoryConsumerRepo) DeleteByID(ctx context.Context, id string, evt sharedDomain.OutboxEvent) error {
	return r.write(id, true, evt, func() { delete(r.Consumers, id) })
}

func (r *InMemoryConsumerRepo) GetByID(ctx context.Context, id string) (*consumerDomain.Consumer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	c, ok := r.Consumers[id]
	if !ok {
		return nil, consumerDomain.ErrConsumerNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *InMemoryConsumerRepo) ListAll(ctx context.Context) ([]*consumerDomain.Consumer, error) {
	return r.ListByCriteria(ctx, nil)
}

func (r *InMemoryConsumerRepo) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria) ([]*consumerDomain.Consumer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	var out []*consumerDomain.Consumer
	for _, c := range r.Consumers {
		c := c
		hit := sharedDomain.Matches(criteria, func(field string) interface{} {
			switch field {
			case "consumer_id":
				return c.ConsumerID
			case "name":
				return c.Name
			case "email":
				return strings.ToLower(c.Email)
			case "phone":
				return c.Phone
			}
			return nil
		})
		if hit {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConsumerID < out[j].ConsumerID })
	return out, nil
}

func (r *InMemoryConsumerRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return false, r.FailWith
	}
	_, ok := r.Consumers[id]
	return ok, nil
}

func (r *InMemoryConsumerRepo) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.Outbox))
	for _, evt := range r.Outbox {
		types = append(types, evt.EventType)
	}
	return types
}
