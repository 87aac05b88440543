package phoneverify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const testPhone = "081234567890"

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

// fakeGateway records every message and can be told to fail.
type fakeGateway struct {
	mu         sync.Mutex
	sent       []Message
	carrierErr *int
	lookupErr  error
	sendErr    error
}

func (g *fakeGateway) LookupCarrier(context.Context, string) (CarrierInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lookupErr != nil {
		return CarrierInfo{}, g.lookupErr
	}
	return CarrierInfo{Name: "Telkomsel", Type: "mobile", ErrorCode: g.carrierErr}, nil
}

func (g *fakeGateway) Send(_ context.Context, msg Message) (*DeliveryReceipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return nil, g.sendErr
	}
	g.sent = append(g.sent, msg)
	return &DeliveryReceipt{
		SID:         "SM-test",
		Provider:    "fake",
		Status:      "queued",
		To:          msg.To,
		From:        msg.From,
		Body:        msg.Body,
		DateCreated: time.Now(),
	}, nil
}

func (g *fakeGateway) messages() []Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Message, len(g.sent))
	copy(out, g.sent)
	return out
}

// plainHasher keeps tests fast; bcrypt is covered in the password package.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) {
	if p == "" {
		return "", errors.New("empty")
	}
	return "plain$" + p, nil
}

type engineOption func(*Builder)

func withConfig(mutate func(*Config)) engineOption {
	return func(b *Builder) {
		cfg := DefaultConfig()
		mutate(&cfg)
		b.WithConfig(cfg)
	}
}

func newTestEngine(t *testing.T, opts ...engineOption) (*Engine, *miniredis.Miniredis, *fakeGateway) {
	t.Helper()

	mr, rdb := newTestRedis(t)
	gw := &fakeGateway{}
	b := New().
		WithRedis(rdb).
		WithGateway(gw).
		WithHasher(plainHasher{})
	for _, opt := range opts {
		opt(b)
	}

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, mr, gw
}

func mustRegister(t *testing.T, e *Engine, phone string) *RegisterResult {
	t.Helper()
	res, err := e.Register(context.Background(), phone)
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", phone, err)
	}
	return res
}
