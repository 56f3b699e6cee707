package db

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUnavailable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bad conn", fmt.Errorf("query: %w", driver.ErrBadConn), true},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"connection failure class", &pgconn.PgError{Code: "08006"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain", errors.New("syntax"), false},
	}
	for _, tc := range cases {
		if got := IsUnavailable(tc.err); got != tc.want {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, got)
		}
	}
}

func TestDataSource(t *testing.T) {
	c := Config{Host: "db", Port: 5432, User: "u", Password: "p", Name: "trit"}
	if got := c.DataSource(); got != "postgres://u:p@db:5432/trit?sslmode=disable" {
		t.Fatalf("unexpected dsn %q", got)
	}
	c.DSN = "postgres://override"
	if got := c.DataSource(); got != "postgres://override" {
		t.Fatalf("expected explicit dsn, got %q", got)
	}
}
