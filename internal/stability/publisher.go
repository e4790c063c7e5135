package stability

import "credflow/internal/domain"

// Publisher keeps the last computed report and pushes new ones to subscribers.
// It is owned by a single session loop and is not safe for concurrent use.
type Publisher struct {
	last   domain.PasswordStability
	subs   map[int]func(domain.PasswordStability)
	nextID int
	closed bool
}

// NewPublisher creates a publisher seeded with the report for initial
func NewPublisher(initial *string) *Publisher {
	return &Publisher{
		last: Evaluate(initial),
		subs: make(map[int]func(domain.PasswordStability)),
	}
}

// Update recomputes the report and notifies subscribers
func (p *Publisher) Update(password *string) domain.PasswordStability {
	p.last = Evaluate(password)
	if p.closed {
		return p.last
	}
	for id := 0; id < p.nextID; id++ {
		if fn, ok := p.subs[id]; ok {
			fn(p.last)
		}
	}
	return p.last
}

// Current returns the last computed report
func (p *Publisher) Current() domain.PasswordStability {
	return p.last
}

// Subscribe delivers the current report right away and every later one until unsubscribed
func (p *Publisher) Subscribe(fn func(domain.PasswordStability)) func() {
	if p.closed {
		return func() {}
	}

	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	fn(p.last)

	return func() {
		delete(p.subs, id)
	}
}

// Close drops all subscribers
func (p *Publisher) Close() {
	p.closed = true
	p.subs = make(map[int]func(domain.PasswordStability))
}
