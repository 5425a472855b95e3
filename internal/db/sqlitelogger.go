package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// loggingConnector opens sqlite3 connections whose statements are logged
// at debug level after they run, with their arguments and duration.
type loggingConnector struct {
	dsn    string
	logger *slog.Logger
}

type loggingConn struct {
	conn   driver.Conn
	logger *slog.Logger
}

type loggingStmt struct {
	stmt   driver.Stmt
	query  string
	logger *slog.Logger
}

// NewLoggingConnector returns a driver.Connector for sql.OpenDB that logs
// every statement. A nil logger means slog.Default().
func NewLoggingConnector(dsn string, logger *slog.Logger) (driver.Connector, error) {
	if dsn == "" {
		return nil, errors.New("sqlite3-log: empty dsn")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingConnector{dsn: dsn, logger: logger}, nil
}

func (c *loggingConnector) Driver() driver.Driver {
	return &loggingDriver{}
}

func (c *loggingConnector) Connect(ctx context.Context) (driver.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	underlying := &sqlite3.SQLiteDriver{}
	conn, err := underlying.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return &loggingConn{conn: conn, logger: c.logger}, nil
}

type loggingDriver struct{}

func (d *loggingDriver) Open(name string) (driver.Conn, error) {
	return nil, fmt.Errorf("sqlite3-log: use sql.OpenDB(NewLoggingConnector(...)) instead of sql.Open")
}

func (c *loggingConn) Prepare(query string) (driver.Stmt, error) {
	stmt, err := c.conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	return &loggingStmt{stmt: stmt, query: query, logger: c.logger}, nil
}

func (c *loggingConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	prep, ok := c.conn.(driver.ConnPrepareContext)
	if !ok {
		return c.Prepare(query)
	}
	stmt, err := prep.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &loggingStmt{stmt: stmt, query: query, logger: c.logger}, nil
}

func (c *loggingConn) Close() error {
	return c.conn.Close()
}

func (c *loggingConn) Begin() (driver.Tx, error) {
	//nolint:staticcheck // SA1019 – required when underlying conn does not implement ConnBeginTx
	return c.conn.Begin()
}

func (c *loggingConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if beginTx, ok := c.conn.(driver.ConnBeginTx); ok {
		return beginTx.BeginTx(ctx, opts)
	}
	//nolint:staticcheck // SA1019 – fallback when underlying conn does not implement ConnBeginTx
	return c.conn.Begin()
}

// Ping lets database/sql verify pooled connections before handing them out.
func (c *loggingConn) Ping(ctx context.Context) error {
	if p, ok := c.conn.(driver.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *loggingStmt) Exec(args []driver.Value) (driver.Result, error) {
	start := time.Now()
	//nolint:staticcheck // SA1019 – required when underlying stmt does not implement StmtExecContext
	res, err := s.stmt.Exec(args)
	s.log("exec", valuesToSlice(args), start, err)
	return res, err
}

func (s *loggingStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	start := time.Now()
	var (
		res driver.Result
		err error
	)
	if execCtx, ok := s.stmt.(driver.StmtExecContext); ok {
		res, err = execCtx.ExecContext(ctx, args)
	} else {
		//nolint:staticcheck // SA1019 – fallback when underlying stmt does not implement StmtExecContext
		res, err = s.stmt.Exec(namedValuesToValues(args))
	}
	s.log("exec", namedValuesToSlice(args), start, err)
	return res, err
}

func (s *loggingStmt) Query(args []driver.Value) (driver.Rows, error) {
	start := time.Now()
	//nolint:staticcheck // SA1019 – required when underlying stmt does not implement StmtQueryContext
	rows, err := s.stmt.Query(args)
	s.log("query", valuesToSlice(args), start, err)
	return rows, err
}

func (s *loggingStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	start := time.Now()
	var (
		rows driver.Rows
		err  error
	)
	if queryCtx, ok := s.stmt.(driver.StmtQueryContext); ok {
		rows, err = queryCtx.QueryContext(ctx, args)
	} else {
		//nolint:staticcheck // SA1019 – fallback when underlying stmt does not implement StmtQueryContext
		rows, err = s.stmt.Query(namedValuesToValues(args))
	}
	s.log("query", namedValuesToSlice(args), start, err)
	return rows, err
}

func (s *loggingStmt) Close() error {
	return s.stmt.Close()
}

// NumInput returns -1 (unknown) unless the wrapped statement knows better.
func (s *loggingStmt) NumInput() int {
	if n, ok := s.stmt.(interface{ NumInput() int }); ok {
		return n.NumInput()
	}
	return -1
}

func (s *loggingStmt) log(op string, args []string, start time.Time, err error) {
	attrs := []any{
		"op", op,
		"sql", s.query,
		"args", args,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	s.logger.Debug("sql", attrs...)
}

func valuesToSlice(args []driver.Value) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = formatArg(a)
	}
	return out
}

func namedValuesToSlice(args []driver.NamedValue) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a.Name != "" {
			out[i] = a.Name + "=" + formatArg(a.Value)
		} else {
			out[i] = formatArg(a.Value)
		}
	}
	return out
}

func namedValuesToValues(args []driver.NamedValue) []driver.Value {
	out := make([]driver.Value, len(args))
	for i := range args {
		out[i] = args[i].Value
	}
	return out
}

func formatArg(v any) string {
	if v == nil {
		return "NULL"
	}
	switch t := v.(type) {
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
