package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"canvasnotes/internal/domain"
	"canvasnotes/internal/notebookfile"
)

// dialect captures the SQL differences between the supported servers.
type dialect struct {
	driver   string
	textType string
	// dollar placeholders ($1, $2) instead of ?
	dollar bool
	// conflict opens the upsert tail for a duplicate primary key.
	conflict string
	// incoming names a column of the row being inserted.
	incoming func(col string) string
	// stored names the existing notebooks.revision inside an upsert.
	stored string
}

// upsert renders the conflict clause: each col takes the incoming value and
// extra assignments are appended verbatim.
func (d dialect) upsert(key string, cols []string, extra ...string) string {
	set := make([]string, 0, len(cols)+len(extra))
	for _, c := range cols {
		set = append(set, c+" = "+d.incoming(c))
	}
	set = append(set, extra...)
	return fmt.Sprintf(d.conflict, key) + strings.Join(set, ", ")
}

func excluded(col string) string { return "excluded." + col }

var (
	sqliteDialect = dialect{
		driver:   "sqlite",
		textType: "TEXT",
		conflict: " ON CONFLICT(%s) DO UPDATE SET ",
		incoming: excluded,
		stored:   "notebooks.revision",
	}
	postgresDialect = dialect{
		driver:   "postgres",
		textType: "TEXT",
		dollar:   true,
		conflict: " ON CONFLICT(%s) DO UPDATE SET ",
		incoming: excluded,
		stored:   "notebooks.revision",
	}
	mysqlDialect = dialect{
		driver:   "mysql",
		textType: "LONGTEXT",
		conflict: " ON DUPLICATE KEY UPDATE %.0s",
		incoming: func(col string) string { return "VALUES(" + col + ")" },
		stored:   "revision",
	}
)

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(q string) string {
	if !d.dollar {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLStore implements Store on database/sql.
type SQLStore struct {
	conn *sql.DB
	d    dialect
}

// OpenSQLite opens (or creates) the SQLite file at dbPath.
func OpenSQLite(dbPath string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer; a single connection avoids SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	s := &SQLStore{conn: conn, d: sqliteDialect}
	if err := s.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func openSQL(ctx context.Context, d dialect, dsn string) (*SQLStore, error) {
	conn, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	conn.SetMaxOpenConns(5)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", d.driver, err)
	}

	s := &SQLStore{conn: conn, d: d}
	if err := s.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.conn.Close()
}

// Conn returns the underlying database connection.
func (s *SQLStore) Conn() *sql.DB {
	return s.conn
}

func (s *SQLStore) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS notebooks (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			data ` + s.d.textType + ` NOT NULL,
			revision BIGINT NOT NULL DEFAULT 0,
			updated_at BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS app_settings (
			name VARCHAR(128) PRIMARY KEY,
			value ` + s.d.textType + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS mcp_approvals (
			id VARCHAR(64) PRIMARY KEY,
			tool VARCHAR(128) NOT NULL,
			description ` + s.d.textType + ` NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			metadata ` + s.d.textType + ` NOT NULL,
			created_at BIGINT NOT NULL DEFAULT 0
		)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %s: %w", m[:40], err)
		}
	}
	return nil
}

func (s *SQLStore) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return s.conn.ExecContext(ctx, s.d.rebind(q), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	return s.conn.QueryRowContext(ctx, s.d.rebind(q), args...)
}

func (s *SQLStore) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return s.conn.QueryContext(ctx, s.d.rebind(q), args...)
}

// ============================================================
// Notebooks
// ============================================================

// SaveNotebook writes the whole notebook, assigning an id when it has none.
// The revision is read back inside the write's transaction, whose row lock
// keeps another writer from bumping it in between.
func (s *SQLStore) SaveNotebook(ctx context.Context, nb *domain.Notebook) (domain.NotebookInfo, error) {
	if nb.ID == "" {
		nb.ID = domain.NewID()
	}
	data, err := notebookfile.Marshal(*nb)
	if err != nil {
		return domain.NotebookInfo{}, fmt.Errorf("encode notebook: %w", err)
	}
	info := domain.NotebookInfo{ID: nb.ID, Name: nb.Name, UpdatedAt: time.UnixMilli(time.Now().UnixMilli())}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return domain.NotebookInfo{}, fmt.Errorf("save notebook: %w", err)
	}
	defer tx.Rollback()

	q := `INSERT INTO notebooks (id, name, data, revision, updated_at) VALUES (?, ?, ?, 1, ?)` +
		s.d.upsert("id", []string{"name", "data", "updated_at"}, "revision = "+s.d.stored+" + 1")
	if _, err := tx.ExecContext(ctx, s.d.rebind(q), nb.ID, nb.Name, string(data), info.UpdatedAt.UnixMilli()); err != nil {
		return domain.NotebookInfo{}, fmt.Errorf("save notebook: %w", err)
	}
	if err := tx.QueryRowContext(ctx, s.d.rebind(`SELECT revision FROM notebooks WHERE id = ?`), nb.ID).Scan(&info.Revision); err != nil {
		return domain.NotebookInfo{}, fmt.Errorf("save notebook: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.NotebookInfo{}, fmt.Errorf("save notebook: %w", err)
	}
	return info, nil
}

func (s *SQLStore) GetNotebook(ctx context.Context, id string) (*domain.Notebook, error) {
	return s.loadNotebook(ctx, `SELECT id, data FROM notebooks WHERE id = ?`, id)
}

// LatestNotebook returns the most recently saved notebook.
func (s *SQLStore) LatestNotebook(ctx context.Context) (*domain.Notebook, error) {
	return s.loadNotebook(ctx, `SELECT id, data FROM notebooks ORDER BY updated_at DESC LIMIT 1`)
}

func (s *SQLStore) loadNotebook(ctx context.Context, q string, args ...any) (*domain.Notebook, error) {
	var id, data string
	err := s.queryRow(ctx, q, args...).Scan(&id, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get notebook: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get notebook: %w", err)
	}
	nb, err := notebookfile.Unmarshal([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("decode notebook %s: %w", id, err)
	}
	nb.ID = id
	return &nb, nil
}

func (s *SQLStore) StatNotebook(ctx context.Context, id string) (domain.NotebookInfo, error) {
	var (
		info    domain.NotebookInfo
		updated int64
	)
	err := s.queryRow(ctx, `SELECT id, name, revision, updated_at FROM notebooks WHERE id = ?`, id).
		Scan(&info.ID, &info.Name, &info.Revision, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return info, fmt.Errorf("stat notebook: %w", domain.ErrNotFound)
	}
	if err != nil {
		return info, fmt.Errorf("stat notebook: %w", err)
	}
	info.UpdatedAt = time.UnixMilli(updated)
	return info, nil
}

func (s *SQLStore) ListNotebooks(ctx context.Context) ([]domain.NotebookInfo, error) {
	rows, err := s.query(ctx, `SELECT id, name, revision, updated_at FROM notebooks ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notebooks: %w", err)
	}
	defer rows.Close()

	var out []domain.NotebookInfo
	for rows.Next() {
		var (
			info    domain.NotebookInfo
			updated int64
		)
		if err := rows.Scan(&info.ID, &info.Name, &info.Revision, &updated); err != nil {
			return nil, err
		}
		info.UpdatedAt = time.UnixMilli(updated)
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteNotebook(ctx context.Context, id string) error {
	_, err := s.exec(ctx, `DELETE FROM notebooks WHERE id = ?`, id)
	return err
}

// ============================================================
// Settings
// ============================================================

func (s *SQLStore) GetSetting(ctx context.Context, key string) (string, error) {
	var v string
	err := s.queryRow(ctx, `SELECT value FROM app_settings WHERE name = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	return v, err
}

func (s *SQLStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.exec(ctx, `INSERT INTO app_settings (name, value) VALUES (?, ?)`+s.d.upsert("name", []string{"value"}), key, value)
	return err
}

// ============================================================
// MCP approvals
// ============================================================

func (s *SQLStore) CreateApproval(ctx context.Context, a domain.Approval) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := s.exec(ctx,
		`INSERT INTO mcp_approvals (id, tool, description, status, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Tool, a.Description, domain.ApprovalPending, a.Metadata, a.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	return nil
}

func (s *SQLStore) ApprovalStatus(ctx context.Context, id string) (domain.ApprovalStatus, error) {
	var status string
	err := s.queryRow(ctx, `SELECT status FROM mcp_approvals WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	return domain.ApprovalStatus(status), err
}

func (s *SQLStore) ResolveApproval(ctx context.Context, id string, approved bool) error {
	status := domain.ApprovalRejected
	if approved {
		status = domain.ApprovalApproved
	}
	_, err := s.exec(ctx, `UPDATE mcp_approvals SET status = ? WHERE id = ? AND status = ?`, status, id, domain.ApprovalPending)
	return err
}

func (s *SQLStore) DeleteApproval(ctx context.Context, id string) error {
	_, err := s.exec(ctx, `DELETE FROM mcp_approvals WHERE id = ?`, id)
	return err
}

func (s *SQLStore) PendingApprovals(ctx context.Context) ([]domain.Approval, error) {
	rows, err := s.query(ctx,
		`SELECT id, tool, description, metadata, created_at FROM mcp_approvals WHERE status = ? ORDER BY created_at`,
		domain.ApprovalPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	var out []domain.Approval
	for rows.Next() {
		var (
			a       domain.Approval
			created int64
		)
		if err := rows.Scan(&a.ID, &a.Tool, &a.Description, &a.Metadata, &created); err != nil {
			return nil, err
		}
		a.Status = domain.ApprovalPending
		a.CreatedAt = time.UnixMilli(created)
		out = append(out, a)
	}
	return out, rows.Err()
}
