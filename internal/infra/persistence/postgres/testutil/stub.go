// Package testutil provides an in-memory database/sql driver that understands
// the statements issued by the postgres snapshot store.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

var stubSeq atomic.Int64

// StubConn records statements and keeps table rows in insertion order.
type StubConn struct {
	mu         sync.Mutex
	Execs      []string
	Tables     map[string][]map[string]any
	FailPing   bool
	FailExec   bool
	FailBegin  bool
	FailCommit bool
	FailQuery  bool
}

// NewStubDB registers a sql.DB backed by a fresh stub connection.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{Tables: make(map[string][]map[string]any)}
	name := fmt.Sprintf("stubpg%d", stubSeq.Add(1))
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

// Rows returns a copy of the rows stored in table.
func (c *StubConn) Rows(table string) []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.Tables[table]))
	for _, row := range c.Tables[table] {
		cp := make(map[string]any, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out
}

type stubDriver struct {
	conn *StubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

// Prepare implements driver.Conn.
func (c *StubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// Ping implements driver.Pinger.
func (c *StubConn) Ping(context.Context) error {
	if c.FailPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

// BeginTx implements driver.ConnBeginTx. Writes inside the transaction are
// staged and applied on commit.
func (c *StubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	if c.FailBegin {
		return nil, fmt.Errorf("begin fail")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	staged := make(map[string][]map[string]any, len(c.Tables))
	for name, rows := range c.Tables {
		staged[name] = append([]map[string]any(nil), rows...)
	}
	prev := c.Tables
	c.Tables = staged
	return &stubTx{conn: c, prev: prev}, nil
}

// ExecContext implements driver.ExecerContext.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, fmt.Errorf("exec fail")
	}
	upper := strings.ToUpper(strings.TrimSpace(query))
	switch {
	case strings.HasPrefix(upper, "CREATE TABLE"):
		return driver.RowsAffected(0), nil
	case strings.HasPrefix(upper, "INSERT INTO"):
		table, cols, err := parseInsert(query)
		if err != nil {
			return nil, err
		}
		if len(cols) != len(args) {
			return nil, fmt.Errorf("column/arg mismatch for %s", table)
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = args[i].Value
		}
		if strings.Contains(upper, "ON CONFLICT") {
			primary := cols[0]
			kept := c.Tables[table][:0:0]
			for _, existing := range c.Tables[table] {
				if fmt.Sprint(existing[primary]) == fmt.Sprint(row[primary]) {
					continue
				}
				kept = append(kept, existing)
			}
			c.Tables[table] = kept
		}
		c.Tables[table] = append(c.Tables[table], row)
		return driver.RowsAffected(1), nil
	}
	return nil, fmt.Errorf("unsupported exec: %s", query)
}

// QueryContext implements driver.QueryerContext.
func (c *StubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailQuery {
		return nil, fmt.Errorf("query fail")
	}
	table, cols, err := parseSelect(query)
	if err != nil {
		return nil, err
	}
	out := &stubRows{cols: cols}
	for _, row := range c.Tables[table] {
		values := make([]driver.Value, len(cols))
		for i, col := range cols {
			values[i] = row[col]
		}
		out.data = append(out.data, values)
	}
	return out, nil
}

type stubTx struct {
	conn *StubConn
	prev map[string][]map[string]any
}

func (t *stubTx) Commit() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	if t.conn.FailCommit {
		t.conn.Tables = t.prev
		return fmt.Errorf("commit fail")
	}
	return nil
}

func (t *stubTx) Rollback() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	t.conn.Tables = t.prev
	return nil
}

type stubRows struct {
	cols []string
	data [][]driver.Value
	idx  int
}

func (r *stubRows) Columns() []string { return r.cols }

func (r *stubRows) Close() error { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.idx])
	r.idx++
	return nil
}

func parseInsert(query string) (string, []string, error) {
	rest := strings.TrimSpace(query[len("INSERT INTO"):])
	open := strings.Index(rest, "(")
	closeIdx := strings.Index(rest, ")")
	if open < 0 || closeIdx < open {
		return "", nil, fmt.Errorf("malformed insert: %s", query)
	}
	return strings.TrimSpace(rest[:open]), splitColumns(rest[open+1 : closeIdx]), nil
}

func parseSelect(query string) (string, []string, error) {
	trimmed := strings.TrimSpace(query)
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT ") {
		return "", nil, fmt.Errorf("unsupported query: %s", query)
	}
	from := strings.Index(upper, " FROM ")
	if from < 0 {
		return "", nil, fmt.Errorf("malformed select: %s", query)
	}
	cols := splitColumns(trimmed[len("SELECT "):from])
	table := strings.Fields(trimmed[from+len(" FROM "):])
	if len(table) == 0 {
		return "", nil, fmt.Errorf("malformed select: %s", query)
	}
	return table[0], cols, nil
}

func splitColumns(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
