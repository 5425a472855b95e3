package db

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"testing"
)

// captureHandler records log records for assertion in tests.
type captureHandler struct {
	mu    sync.Mutex
	attrs []map[string]slog.Value
}

func (h *captureHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := make(map[string]slog.Value)
	m["msg"] = slog.StringValue(r.Message)
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value
		return true
	})
	h.attrs = append(h.attrs, m)
	return nil
}

func (h *captureHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(_ string) slog.Handler { return h }

func (h *captureHandler) last(t *testing.T) map[string]slog.Value {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.attrs) - 1; i >= 0; i-- {
		if h.attrs[i]["msg"].String() == "sql" {
			return h.attrs[i]
		}
	}
	t.Fatal("no sql log record captured")
	return nil
}

func (h *captureHandler) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attrs = nil
}

func openLogged(t *testing.T, handler *captureHandler) *sql.DB {
	t.Helper()
	connector, err := NewLoggingConnector(":memory:", slog.New(handler))
	if err != nil {
		t.Fatalf("NewLoggingConnector: %v", err)
	}
	db := sql.OpenDB(connector)
	// one connection, so the in-memory database survives between calls
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewLoggingConnector(t *testing.T) {
	t.Run("nil logger uses default", func(t *testing.T) {
		conn, err := NewLoggingConnector(":memory:", nil)
		if err != nil {
			t.Fatalf("NewLoggingConnector: %v", err)
		}
		lc, ok := conn.(*loggingConnector)
		if !ok {
			t.Fatalf("connector type = %T; want *loggingConnector", conn)
		}
		if lc.logger != slog.Default() {
			t.Error("logger is not slog.Default()")
		}
	})

	t.Run("empty dsn rejected", func(t *testing.T) {
		if _, err := NewLoggingConnector("", nil); err == nil {
			t.Fatal("NewLoggingConnector(\"\") = nil error; want error")
		}
	})
}

func TestLoggingConnector_ExecLogged(t *testing.T) {
	handler := &captureHandler{}
	db := openLogged(t, handler)

	const ddl = `CREATE TABLE measurement (id INTEGER PRIMARY KEY, station TEXT, date TEXT, prcp REAL, tobs REAL)`
	if _, err := db.Exec(ddl); err != nil {
		t.Fatalf("create table: %v", err)
	}
	got := handler.last(t)
	if got["op"].String() != "exec" {
		t.Errorf("op = %q; want exec", got["op"].String())
	}
	if got["sql"].String() != ddl {
		t.Errorf("sql = %q", got["sql"].String())
	}
	if _, ok := got["duration_ms"]; !ok {
		t.Error("expected duration_ms attribute")
	}

	handler.reset()
	_, err := db.Exec(`INSERT INTO measurement (station, date, prcp, tobs) VALUES (?, ?, ?, ?)`,
		"USC00519397", "2017-08-23", nil, 81.0)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	got = handler.last(t)
	args, ok := got["args"].Any().([]string)
	if !ok {
		t.Fatalf("args type = %T; want []string", got["args"].Any())
	}
	want := []string{"USC00519397", "2017-08-23", "NULL", "81"}
	if len(args) != len(want) {
		t.Fatalf("args = %v; want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %q; want %q", i, args[i], want[i])
		}
	}
}

func TestLoggingConnector_QueryLogged(t *testing.T) {
	handler := &captureHandler{}
	db := openLogged(t, handler)

	if _, err := db.Exec(`CREATE TABLE measurement (date TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	handler.reset()

	var maxDate sql.NullString
	if err := db.QueryRow(`SELECT MAX(date) FROM measurement WHERE date >= ?`, "2016-08-23").Scan(&maxDate); err != nil {
		t.Fatalf("query row: %v", err)
	}
	got := handler.last(t)
	if got["op"].String() != "query" {
		t.Errorf("op = %q; want query", got["op"].String())
	}
	if got["sql"].String() != `SELECT MAX(date) FROM measurement WHERE date >= ?` {
		t.Errorf("sql = %q", got["sql"].String())
	}
	if _, hasErr := got["error"]; hasErr {
		t.Error("unexpected error attribute on successful query")
	}
}

func TestLoggingConnector_FailedStatementLogsError(t *testing.T) {
	handler := &captureHandler{}
	db := openLogged(t, handler)

	if _, err := db.Exec(`CREATE TABLE station (station TEXT UNIQUE)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO station (station) VALUES (?)`, "USC00519397"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	handler.reset()

	if _, err := db.Exec(`INSERT INTO station (station) VALUES (?)`, "USC00519397"); err == nil {
		t.Fatal("duplicate insert succeeded; want constraint error")
	}
	got := handler.last(t)
	if _, hasErr := got["error"]; !hasErr {
		t.Error("expected error attribute for failed exec")
	}
}

func TestLoggingConnector_PingSucceeds(t *testing.T) {
	db := openLogged(t, &captureHandler{})
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestLoggingDriver_OpenUnsupported(t *testing.T) {
	if _, err := (&loggingDriver{}).Open(":memory:"); err == nil {
		t.Fatal("loggingDriver.Open = nil error; want error")
	}
}
