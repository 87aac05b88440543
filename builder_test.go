package phoneverify

import (
	"context"
	"errors"
	"testing"
)

func TestBuildRequiresRedisAndGateway(t *testing.T) {
	_, rdb := newTestRedis(t)

	if _, err := New().WithGateway(&fakeGateway{}).Build(); err == nil {
		t.Fatal("expected error without redis")
	}
	if _, err := New().WithRedis(rdb).Build(); err == nil {
		t.Fatal("expected error without gateway")
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	_, rdb := newTestRedis(t)
	cfg := DefaultConfig()
	cfg.Messaging.Channel = "pigeon"

	if _, err := New().WithConfig(cfg).WithRedis(rdb).WithGateway(&fakeGateway{}).Build(); err == nil {
		t.Fatal("expected invalid config to fail Build")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	_, rdb := newTestRedis(t)
	b := New().WithRedis(rdb).WithGateway(&fakeGateway{}).WithHasher(plainHasher{})

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestBuildArgon2Hasher(t *testing.T) {
	_, rdb := newTestRedis(t)
	cfg := DefaultConfig()
	cfg.Password.Algorithm = PasswordArgon2
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1

	engine, err := New().WithConfig(cfg).WithRedis(rdb).WithGateway(&fakeGateway{}).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	mustRegister(t, engine, testPhone)
	res, err := engine.SetPassword(context.Background(), SetPasswordRequest{Phone: testPhone, Password: "pw", RePassword: "pw"})
	if err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if len(res.PasswordHash) < 10 || res.PasswordHash[:10] != "$argon2id$" {
		t.Fatalf("expected argon2id hash, got %q", res.PasswordHash)
	}
}

func TestMetricsDisabled(t *testing.T) {
	engine, _, _ := newTestEngine(t, func(b *Builder) {
		b.WithMetricsEnabled(false)
	})

	mustRegister(t, engine, testPhone)
	if got := engine.MetricsSnapshot().Counters[MetricRegisterSuccess]; got != 0 {
		t.Fatalf("expected disabled metrics to stay zero, got %d", got)
	}
}

func TestZeroEngineNotReady(t *testing.T) {
	var e *Engine
	if _, err := e.Register(context.Background(), testPhone); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
	if err := e.Ping(context.Background()); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady from ping, got %v", err)
	}
	if e.AuditDropped() != 0 {
		t.Fatal("nil engine must report zero drops")
	}
	e.Close()
}
