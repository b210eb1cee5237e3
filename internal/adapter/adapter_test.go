package adapter

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sadopc/sqlmeta/internal/metadata"
)

// mockAdapter is a minimal adapter for testing the registry.
type mockAdapter struct {
	name     string
	port     int
	provider metadata.Provider
}

func (m *mockAdapter) Name() string                { return m.name }
func (m *mockAdapter) DefaultPort() int            { return m.port }
func (m *mockAdapter) Provider() metadata.Provider { return m.provider }
func (m *mockAdapter) Connect(_ context.Context, _ string) (Connection, error) {
	return nil, errors.New("mock: not implemented")
}

func withEmptyRegistry(t *testing.T) {
	t.Helper()
	orig := make(map[string]Adapter)
	for k, v := range Registry {
		orig[k] = v
	}
	t.Cleanup(func() { Registry = orig })
	Registry = map[string]Adapter{}
}

func TestRegister(t *testing.T) {
	withEmptyRegistry(t)

	mock := &mockAdapter{name: "testdb", port: 9999, provider: metadata.Postgres}
	Register(mock)

	got, ok := Registry["testdb"]
	if !ok {
		t.Fatal("expected adapter 'testdb' to be registered")
	}
	if got.Name() != "testdb" {
		t.Errorf("Name() = %q, want %q", got.Name(), "testdb")
	}
	if got.DefaultPort() != 9999 {
		t.Errorf("DefaultPort() = %d, want %d", got.DefaultPort(), 9999)
	}
	if got.Provider() != metadata.Postgres {
		t.Errorf("Provider() = %q, want %q", got.Provider(), metadata.Postgres)
	}
}

func TestRegister_Multiple(t *testing.T) {
	withEmptyRegistry(t)

	adapters := []struct {
		name string
		port int
	}{
		{"charlie", 3333},
		{"alpha", 1111},
		{"bravo", 2222},
	}

	for _, a := range adapters {
		Register(&mockAdapter{name: a.name, port: a.port})
	}

	if len(Registry) != 3 {
		t.Fatalf("expected 3 adapters in registry, got %d", len(Registry))
	}

	want := []string{"alpha", "bravo", "charlie"}
	if got := Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestGet(t *testing.T) {
	withEmptyRegistry(t)
	Register(&mockAdapter{name: "alpha"})

	if _, err := Get("alpha"); err != nil {
		t.Errorf("Get(alpha) error = %v", err)
	}
	_, err := Get("missing")
	if !errors.Is(err, ErrUnknownAdapter) {
		t.Errorf("Get(missing) error = %v, want ErrUnknownAdapter", err)
	}
}

func TestSQLConn(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatal(err)
	}
	mock.ExpectPing()
	mock.ExpectClose()

	closed := false
	conn := NewSQLConn(db, "mysql", metadata.MySQL, "root@tcp(h:3306)/shop", "shop", func() { closed = true })

	var _ Connection = conn
	var _ metadata.Source = conn

	if conn.AdapterName() != "mysql" {
		t.Errorf("AdapterName() = %q, want %q", conn.AdapterName(), "mysql")
	}
	if conn.Provider() != metadata.MySQL {
		t.Errorf("Provider() = %q, want %q", conn.Provider(), metadata.MySQL)
	}
	if conn.DatabaseName() != "shop" {
		t.Errorf("DatabaseName() = %q, want %q", conn.DatabaseName(), "shop")
	}
	if conn.Querier() == nil {
		t.Error("Querier() returned nil")
	}
	if err := conn.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !closed {
		t.Error("extra closer was not called")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSQLConn_NilDB(t *testing.T) {
	conn := &SQLConn{}
	if err := conn.Ping(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Ping() error = %v, want ErrNotConnected", err)
	}
	if err := conn.Close(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Close() error = %v, want ErrNotConnected", err)
	}
}

func TestErrors(t *testing.T) {
	if errors.Is(ErrNotConnected, ErrUnknownAdapter) {
		t.Error("ErrNotConnected and ErrUnknownAdapter should be distinct")
	}
	if ErrNotConnected.Error() == ErrUnknownAdapter.Error() {
		t.Error("expected distinct error messages")
	}
}
