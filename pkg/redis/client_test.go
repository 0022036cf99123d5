package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/recruitdesk-backend/pkg/config"
)

func TestIncrWithTTLStartsWindowOnFirstHit(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	key := "rl:login:account:abc"

	for want := int64(1); want <= 3; want++ {
		got, err := client.IncrWithTTL(ctx, key, 90*time.Second)
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if got != want {
			t.Fatalf("expected count %d got %d", want, got)
		}
	}
	if mock.ttl[key] != 90*time.Second {
		t.Fatalf("expected a 90s window, got %v", mock.ttl[key])
	}
	if mock.expirations != 1 {
		t.Fatalf("window must be set once, got %d", mock.expirations)
	}
	if _, err := client.IncrWithTTL(ctx, key, 0); err == nil {
		t.Fatal("expected an error for a zero window")
	}
}

func TestLockIsExclusiveAndOwnerScoped(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	key := client.LockKey("reassign", "asg-1")

	first, err := NewLock(client, key, time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, _ := NewLock(client, key, time.Minute)

	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire ok=%v err=%v", ok, err)
	}
	if ok, err := second.Acquire(ctx); err != nil || ok {
		t.Fatalf("second acquire should fail ok=%v err=%v", ok, err)
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("release by non-owner: %v", err)
	}
	if _, err := client.Get(ctx, key); err != nil {
		t.Fatalf("non-owner release must keep the lock: %v", err)
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("owner release: %v", err)
	}
	if _, err := client.Get(ctx, key); err != redis.Nil {
		t.Fatalf("expected lock deleted, got %v", err)
	}
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatal("lock should be free after release")
	}
}

func TestDeleteIfEqualLeavesOtherOwners(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	key := client.LockKey("cron", "prod")
	if err := client.Set(ctx, key, "owner-b", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	if deleted, err := client.DeleteIfEqual(ctx, key, "owner-a"); err != nil || deleted {
		t.Fatalf("stale owner deleted=%v err=%v", deleted, err)
	}
	if deleted, err := client.DeleteIfEqual(ctx, key, "owner-b"); err != nil || !deleted {
		t.Fatalf("owner deleted=%v err=%v", deleted, err)
	}
}

func TestUnconnectedClientFails(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err != errNotConnected {
		t.Fatalf("expected not connected, got %v", err)
	}
	if _, err := client.IncrWithTTL(context.Background(), "k", time.Second); err != errNotConnected {
		t.Fatalf("expected not connected, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		URL:         "redis://:secret@cache.internal:6380/2",
		DB:          5,
		PoolSize:    20,
		DialTimeout: 3 * time.Second,
	})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "cache.internal:6380" || opts.DB != 2 || opts.Password != "secret" {
		t.Fatalf("url settings lost: %+v", opts)
	}
	if opts.PoolSize != 20 || opts.DialTimeout != 3*time.Second {
		t.Fatalf("config should fill pool settings: pool=%d dial=%v", opts.PoolSize, opts.DialTimeout)
	}

	opts, err = optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 1})
	if err != nil || opts.Addr != "localhost:6379" || opts.DB != 1 {
		t.Fatalf("address config: %+v %v", opts, err)
	}

	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected an error without url or address")
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	cases := map[string]string{
		client.IdempotencyKey("reassign", "k1"):    "rd:idempotency:reassign:k1",
		client.AccessSessionKey("jti"):             "rd:session:access:jti",
		client.DirectoryKey("employees"):           "rd:directory:employees",
		client.DirectoryKey("employee", " ", "E1"): "rd:directory:employee:E1",
		client.LockKey("reassign", "asg-1"):        "rd:lock:reassign:asg-1",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %s got %s", want, got)
		}
	}
}

// mockCmdable answers the two Lua scripts the client sends the way Redis
// would.
type mockCmdable struct {
	data        map[string]string
	ttl         map[string]time.Duration
	expirations int
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) Eval(_ context.Context, script string, keys []string, args ...any) *redis.Cmd {
	key := keys[0]
	switch script {
	case incrScript:
		var n int64
		fmt.Sscan(m.data[key], &n)
		n++
		m.data[key] = fmt.Sprint(n)
		if n == 1 {
			m.ttl[key] = time.Duration(args[0].(int64)) * time.Millisecond
			m.expirations++
		}
		return redis.NewCmdResult(n, nil)
	case unlockScript:
		if v, ok := m.data[key]; ok && v == args[0].(string) {
			delete(m.data, key)
			return redis.NewCmdResult(int64(1), nil)
		}
		return redis.NewCmdResult(int64(0), nil)
	}
	return redis.NewCmdResult(nil, fmt.Errorf("unexpected script"))
}
