package component

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/kbukum/storefront/logger"
)

type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health { return m.health }

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	if err := r.Register(&mockComponent{name: "db"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "db"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	_ = r.Register(&mockComponent{name: "db"})

	if got := r.Get("db"); got == nil || got.Name() != "db" {
		t.Fatalf("expected db component, got %v", got)
	}
	if got := r.Get("missing"); got != nil {
		t.Errorf("expected nil for missing component")
	}
}

func TestStartStopOrder(t *testing.T) {
	var started, stopped []string
	r := NewRegistry(logger.NewNop())
	for _, name := range []string{"database", "redis", "server"} {
		_ = r.Register(&mockComponent{name: name, startOrder: &started, stopOrder: &stopped})
	}

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	if !slices.Equal(started, []string{"database", "redis", "server"}) {
		t.Errorf("unexpected start order %v", started)
	}
	if !slices.Equal(stopped, []string{"server", "redis", "database"}) {
		t.Errorf("unexpected stop order %v", stopped)
	}
}

func TestStartFailureStopsStarted(t *testing.T) {
	var started, stopped []string
	r := NewRegistry(logger.NewNop())
	_ = r.Register(&mockComponent{name: "database", startOrder: &started, stopOrder: &stopped})
	_ = r.Register(&mockComponent{name: "redis", startErr: errors.New("refused"), startOrder: &started, stopOrder: &stopped})
	_ = r.Register(&mockComponent{name: "server", startOrder: &started, stopOrder: &stopped})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected start error")
	}
	if !slices.Equal(started, []string{"database", "redis"}) {
		t.Errorf("unexpected start order %v", started)
	}
	if !slices.Equal(stopped, []string{"database"}) {
		t.Errorf("expected only database to be stopped, got %v", stopped)
	}
}

func TestStopAllJoinsErrors(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	_ = r.Register(&mockComponent{name: "a", stopErr: errors.New("a failed")})
	_ = r.Register(&mockComponent{name: "b", stopErr: errors.New("b failed")})
	_ = r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if err == nil {
		t.Fatal("expected joined stop error")
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	_ = r.Register(&mockComponent{name: "db", health: Health{Name: "db", Status: StatusHealthy}})
	_ = r.Register(&mockComponent{name: "redis", health: Health{Name: "redis", Status: StatusUnhealthy, Message: "down"}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Status != StatusUnhealthy {
		t.Errorf("expected redis unhealthy, got %s", results[1].Status)
	}
}

func TestStartAllSkipsRunning(t *testing.T) {
	var started []string
	r := NewRegistry(logger.NewNop())
	_ = r.Register(&mockComponent{name: "database", startOrder: &started})
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}

	_ = r.Register(&mockComponent{name: "server", startOrder: &started})
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("second StartAll failed: %v", err)
	}
	if !slices.Equal(started, []string{"database", "server"}) {
		t.Errorf("expected each component started once, got %v", started)
	}
}
