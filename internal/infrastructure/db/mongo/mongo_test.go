package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/todolist/todo-api/internal/core/domain"
)

func TestDatabaseFromURI(t *testing.T) {
	cases := map[string]string{
		"mongodb://localhost:27017/todolist":              "todolist",
		"mongodb://user:pw@db:27017/app?authSource=admin": "app",
		"mongodb://localhost:27017":                       DefaultDatabase,
		"mongodb://localhost:27017/":                      DefaultDatabase,
		"not a uri":                                       DefaultDatabase,
	}
	for uri, want := range cases {
		if got := DatabaseFromURI(uri); got != want {
			t.Errorf("%q: expected %q, got %q", uri, want, got)
		}
	}
}

func TestConnect_MalformedURI(t *testing.T) {
	if _, _, err := Connect(context.Background(), Config{URI: "mongodb//localhost:27017/todolist"}); err == nil {
		t.Fatal("expected an error for a URI without a scheme separator")
	}
}

func TestRepositories_WithoutDatabase(t *testing.T) {
	ctx := context.Background()
	todos := NewTodoRepository(nil)
	users := NewUserRepository(nil, nil)
	activity := NewActivityRepository(nil)

	if _, err := todos.ListNewestFirst(ctx); !errors.Is(err, ErrNotConnected) {
		t.Errorf("list: expected ErrNotConnected, got %v", err)
	}
	todo, _ := domain.NewTodo("offline", time.Now())
	if err := todos.Create(ctx, todo); !errors.Is(err, ErrNotConnected) {
		t.Errorf("create: expected ErrNotConnected, got %v", err)
	}
	if _, err := todos.Delete(ctx, primitive.NewObjectID()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("delete: expected ErrNotConnected, got %v", err)
	}
	if err := users.Create(ctx, domain.NewUser("frankie", "frank@example.com", "secret1")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("user create: expected ErrNotConnected, got %v", err)
	}
	if _, err := users.FindByEmail(ctx, "frank@example.com"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("find user: expected ErrNotConnected, got %v", err)
	}
	if err := activity.Insert(ctx, &domain.TodoActivity{TodoID: primitive.NewObjectID()}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("activity: expected ErrNotConnected, got %v", err)
	}
	if err := EnsureIndexes(ctx, nil); !errors.Is(err, ErrNotConnected) {
		t.Errorf("indexes: expected ErrNotConnected, got %v", err)
	}
	if err := Ping(ctx, nil, time.Second); !errors.Is(err, ErrNotConnected) {
		t.Errorf("ping: expected ErrNotConnected, got %v", err)
	}
}

func TestKeepEnsuringIndexes_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	ensure := func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("server selection timeout")
		}
		return nil
	}

	err := KeepEnsuringIndexes(context.Background(), ensure, time.Millisecond, 2*time.Millisecond, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestKeepEnsuringIndexes_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	ensure := func(context.Context) error {
		calls++
		cancel()
		return errors.New("still down")
	}

	err := KeepEnsuringIndexes(ctx, ensure, time.Hour, time.Hour, zerolog.Nop())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}
