package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(maxRetries int) Config {
	return Config{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, fastConfig(4))

	if err != nil {
		t.Fatalf("Do error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	wantErr := errors.New("still broken")
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return wantErr
	}, fastConfig(3))

	if !errors.Is(err, wantErr) {
		t.Errorf("Do error = %v, want %v", err, wantErr)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	cfg := fastConfig(5)
	cfg.RetryIf = RetryIfNotPermanent

	err := Do(context.Background(), func() error {
		calls++
		return Permanent(errors.New("bad ticker"))
	}, cfg)

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 for permanent error", calls)
	}
}

func TestDoRespectsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	cfg := fastConfig(0) // бесконечные retry

	err := Do(ctx, func() error {
		calls++
		if calls == 2 {
			cancel()
		}
		return errors.New("transient")
	}, cfg)

	if err == nil {
		t.Fatal("expected error after cancel")
	}
	if calls > 3 {
		t.Errorf("calls = %d, want retries stopped by cancel", calls)
	}
}

func TestDoOnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	}

	Do(context.Background(), func() error { return errors.New("transient") }, cfg)

	// 3 попытки = 2 повтора
	if len(attempts) != 2 {
		t.Fatalf("OnRetry calls = %d, want 2", len(attempts))
	}
	if attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("attempts = %v, want [1 2]", attempts)
	}
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), func() (int, error) {
		calls++
		if calls < 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	}, fastConfig(3))

	if err != nil {
		t.Fatalf("DoWithResult error = %v", err)
	}
	if got != 42 {
		t.Errorf("result = %d, want 42", got)
	}
}

func TestDoWithResultReturnsZeroOnFailure(t *testing.T) {
	got, err := DoWithResult(context.Background(), func() (string, error) {
		return "partial", errors.New("broken")
	}, fastConfig(2))

	if err == nil {
		t.Fatal("expected error")
	}
	if got != "" {
		t.Errorf("result = %q, want zero value", got)
	}
}

func TestCalculateDelayCappedAtMax(t *testing.T) {
	cfg := Config{
		InitialDelay: time.Second,
		MaxDelay:     4 * time.Second,
		Multiplier:   2.0,
	}
	cfg.validate()

	if got := cfg.calculateDelay(10); got > cfg.MaxDelay {
		t.Errorf("delay = %v, want capped at %v", got, cfg.MaxDelay)
	}
}

func TestIsPermanent(t *testing.T) {
	base := errors.New("boom")
	if IsPermanent(base) {
		t.Error("IsPermanent(plain error) = true")
	}
	if !IsPermanent(Permanent(base)) {
		t.Error("IsPermanent(Permanent(err)) = false")
	}
	// Обёртки сохраняют признак
	wrapped := Permanent(base)
	if !errors.Is(wrapped, base) {
		t.Error("Permanent breaks errors.Is chain")
	}
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) != nil")
	}
}
