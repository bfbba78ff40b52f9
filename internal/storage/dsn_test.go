package storage

import (
	"strings"
	"testing"
)

func TestRebind(t *testing.T) {
	q := `UPDATE t SET a = ? WHERE id = ? AND b = ?`
	if got := sqliteDialect.rebind(q); got != q {
		t.Errorf("sqlite rebind changed query: %s", got)
	}
	want := `UPDATE t SET a = $1 WHERE id = $2 AND b = $3`
	if got := postgresDialect.rebind(q); got != want {
		t.Errorf("postgres rebind = %s", got)
	}
}

func TestUpsert(t *testing.T) {
	tests := []struct {
		d    dialect
		want string
	}{
		{sqliteDialect, " ON CONFLICT(id) DO UPDATE SET name = excluded.name, revision = notebooks.revision + 1"},
		{mysqlDialect, " ON DUPLICATE KEY UPDATE name = VALUES(name), revision = revision + 1"},
	}
	for _, tt := range tests {
		got := tt.d.upsert("id", []string{"name"}, "revision = "+tt.d.stored+" + 1")
		if got != tt.want {
			t.Errorf("%s upsert = %q, want %q", tt.d.driver, got, tt.want)
		}
	}
}

func TestMySQLDSN(t *testing.T) {
	dsn, err := mysqlDSN("notes@tcp(localhost:3306)/notes", "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(dsn, "notes:s3cret@tcp(localhost:3306)/notes") {
		t.Errorf("dsn = %s", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("parseTime missing: %s", dsn)
	}

	dsn, _ = mysqlDSN("notes:inline@tcp(db:3306)/notes", "s3cret")
	if !strings.HasPrefix(dsn, "notes:inline@") {
		t.Errorf("explicit password overwritten: %s", dsn)
	}
}

func TestPostgresDSN(t *testing.T) {
	got, err := postgresDSN("host=localhost user=notes dbname=notes", "pa'ss")
	if err != nil {
		t.Fatal(err)
	}
	want := `host=localhost user=notes dbname=notes password='pa\'ss' sslmode=disable`
	if got != want {
		t.Errorf("dsn = %s, want %s", got, want)
	}

	got, err = postgresDSN("postgres://notes@localhost:5432/notes?sslmode=require", "pw")
	if err != nil {
		t.Fatal(err)
	}
	for _, part := range []string{"host=localhost", "password=pw", "dbname=notes", "sslmode=require"} {
		if !strings.Contains(got, part) {
			t.Errorf("%q missing from %s", part, got)
		}
	}
}

func TestMongoDatabase(t *testing.T) {
	tests := []struct{ uri, want string }{
		{"mongodb+srv://u:p@cluster0.example.net/notes?retryWrites=true", "notes"},
		{"mongodb://localhost:27017/team", "team"},
		{"mongodb://localhost:27017", defaultMongoDatabase},
		{"mongodb://localhost:27017/?replicaSet=rs0", defaultMongoDatabase},
	}
	for _, tt := range tests {
		if got := mongoDatabase(tt.uri); got != tt.want {
			t.Errorf("mongoDatabase(%s) = %s, want %s", tt.uri, got, tt.want)
		}
	}
}
