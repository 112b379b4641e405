package inference

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Pool manages chart sessions for concurrent parsing with one grammar.
type Pool struct {
	sessions chan *Session
	grammar  *Grammar
	size     int
	mu       sync.Mutex
	closed   bool
}

// NewPool creates a pool of size sessions for g.
func NewPool(g *Grammar, size int) (*Pool, error) {
	if size <= 0 {
		size = 1
	}

	pool := &Pool{
		sessions: make(chan *Session, size),
		grammar:  g,
		size:     size,
	}

	for i := range size {
		session, err := NewSession(g)
		if err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("creating session %d: %w", i, err)
		}
		pool.sessions <- session
	}

	return pool, nil
}

// Acquire gets a session from the pool, blocking if none available.
// Respects context cancellation. Returns ErrPoolClosed once the pool is closed.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	select {
	case session, ok := <-p.sessions:
		if !ok {
			return nil, ErrPoolClosed
		}
		return session, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a session to the pool.
func (p *Pool) Release(s *Session) {
	if s == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = s.Close()
		return
	}

	select {
	case p.sessions <- s:
	default:
		_ = s.Close()
	}
}

// Infer acquires a session, runs it and releases it.
func (p *Pool) Infer(ctx context.Context, lexical [][]Score) (*Node, error) {
	s, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(s)
	return s.Infer(ctx, lexical)
}

// Close closes all idle sessions. Sessions released afterwards are closed
// on release.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sessions)
	p.mu.Unlock()

	var errs []error
	for session := range p.sessions {
		if err := session.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Size returns the pool size.
func (p *Pool) Size() int {
	return p.size
}

// Grammar returns the grammar the sessions parse with.
func (p *Pool) Grammar() *Grammar {
	return p.grammar
}
