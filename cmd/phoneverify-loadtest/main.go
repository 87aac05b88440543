package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/phoneverify"
	"github.com/MrEthical07/phoneverify/gateway/console"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type phoneState struct {
	phone string
	mu    sync.Mutex
	otp   string
}

func main() {
	var (
		phones      = flag.Int("phones", 10000, "number of phones to register")
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		namespace   = flag.String("namespace", "loadtest", "key namespace")
	)
	flag.Parse()

	if *phones <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "phones, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := phoneverify.DefaultConfig()
	cfg.Records.Namespace = *namespace
	cfg.Password.BcryptCost = 4

	engine, err := phoneverify.New().
		WithConfig(cfg).
		WithRedis(client).
		WithGateway(console.New(io.Discard)).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	states := make([]phoneState, *phones)
	for i := range states {
		states[i].phone = phoneFor(i)
	}

	fmt.Printf("registering %d phones...\n", *phones)
	registerStats := runPhase(*phones, *concurrency, func(_ *rand.Rand, i int) error {
		res, err := engine.Register(ctx, states[i].phone)
		if err != nil {
			return err
		}
		states[i].mu.Lock()
		states[i].otp = res.OTP
		states[i].mu.Unlock()
		return nil
	})
	if registerStats.failures > 0 {
		fmt.Fprintf(os.Stderr, "register failed for %d phones\n", registerStats.failures)
		os.Exit(1)
	}

	confirmStats := runPhase(*ops, *concurrency, func(r *rand.Rand, _ int) error {
		state := &states[r.Intn(len(states))]
		state.mu.Lock()
		otp := state.otp
		state.mu.Unlock()
		_, err := engine.ConfirmOTP(ctx, phoneverify.ConfirmRequest{Phone: state.phone, OTP: otp})
		return err
	})

	// Resend and confirm race on the same phones; confirms that lose the
	// race to a resend see a superseded code.
	var superseded int64
	raceStats := runPhase(*ops, *concurrency, func(r *rand.Rand, i int) error {
		state := &states[r.Intn(len(states))]
		if i%2 == 0 {
			res, err := engine.ResendOTP(ctx, state.phone)
			if err == nil {
				state.mu.Lock()
				state.otp = res.OTP
				state.mu.Unlock()
			}
			return err
		}
		state.mu.Lock()
		otp := state.otp
		state.mu.Unlock()
		_, err := engine.ConfirmOTP(ctx, phoneverify.ConfirmRequest{Phone: state.phone, OTP: otp})
		if errors.Is(err, phoneverify.ErrOtpMismatch) {
			atomic.AddInt64(&superseded, 1)
			return nil
		}
		return err
	})

	fmt.Println("---- results ----")
	printStats("register", registerStats)
	printStats("confirm", confirmStats)
	printStats("resend+confirm", raceStats)
	fmt.Printf("superseded confirms: %d\n", superseded)
}

func runPhase(ops, concurrency int, op func(r *rand.Rand, i int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r, i)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

// phoneFor spreads numbers over Telkomsel simPATI 0812 numbers.
func phoneFor(i int) string {
	return fmt.Sprintf("0812%08d", i)
}
