package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

const defaultReadSize = 4096

// Parser pulls content fragments out of a chat-completion response body.
//
// It is forward-only and not safe for concurrent use. Reads happen on the
// caller's goroutine, one network read per pull at most, and the context is
// checked before every pull. Fragments already read when the context is
// cancelled are dropped.
type Parser struct {
	ctx    context.Context
	body   io.ReadCloser
	dec    *Decoder
	buf    []byte
	rest   []byte
	err    error
	closed bool
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for stream lifecycle messages.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithReadSize sets the size of each network read.
func WithReadSize(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.buf = make([]byte, n)
		}
	}
}

func NewParser(ctx context.Context, body io.ReadCloser, opts ...Option) *Parser {
	p := &Parser{
		ctx:    ctx,
		body:   body,
		dec:    NewDecoder(),
		buf:    make([]byte, defaultReadSize),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Next returns the next content fragment. It returns io.EOF after [DONE].
// Any other error is final and is returned again by later calls.
func (p *Parser) Next() (string, error) {
	if p.err != nil {
		return "", p.err
	}

	for {
		if err := p.ctx.Err(); err != nil {
			return "", p.fail(cancelled(err))
		}
		if frag, ok := p.dec.Next(); ok {
			return frag, nil
		}
		if p.dec.Done() {
			return "", p.fail(io.EOF)
		}
		if err := p.dec.Err(); err != nil {
			return "", p.fail(err)
		}

		n, err := p.body.Read(p.buf)
		if n > 0 {
			p.dec.Feed(p.buf[:n])
		}
		if err == nil {
			continue
		}
		if ctxErr := p.ctx.Err(); ctxErr != nil {
			return "", p.fail(cancelled(ctxErr))
		}
		if !errors.Is(err, io.EOF) {
			return "", p.fail(fmt.Errorf("error reading response stream: %w", err))
		}
		p.dec.Close()
	}
}

// Read exposes the fragments as a plain UTF-8 byte stream.
func (p *Parser) Read(b []byte) (int, error) {
	for len(p.rest) == 0 {
		frag, err := p.Next()
		if err != nil {
			return 0, err
		}
		p.rest = []byte(frag)
	}
	n := copy(b, p.rest)
	p.rest = p.rest[n:]
	return n, nil
}

// Close releases the response body. Calling it more than once is harmless.
func (p *Parser) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.err == nil {
		p.err = ErrClosed
	}
	if p.body == nil {
		return nil
	}
	return p.body.Close()
}

func (p *Parser) fail(err error) error {
	p.err = err
	switch {
	case errors.Is(err, io.EOF):
		p.logger.Debug("stream finished")
	case IsCancelled(err):
		p.logger.Debug("stream cancelled", "error", err)
	default:
		p.logger.Debug("stream failed", "error", err, "state", p.dec.state.String())
	}
	return err
}
