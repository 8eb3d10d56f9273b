package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"floorplan-sketch/internal/sketch/session"
)

// ============================================================
// SQLite Repository
// ============================================================

var ErrNotFound = errors.New("sketch not found")

//go:embed migrations/001_init_sketches.sql
var initSketches string

// Sketch: сохранённая сцена с именем.
type Sketch struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Scene     session.Scene `json:"scene"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Init применяет встроенные миграции.
func (r *Repository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, initSketches); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// Save вставляет новый эскиз или обновляет существующий.
// Пустой ID заменяется новым uuid.
func (r *Repository) Save(ctx context.Context, s *Sketch) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	scene, err := json.Marshal(s.Scene)
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}

	now := r.now().UTC().Truncate(time.Second)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO sketches (id, name, scene, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            scene = excluded.scene,
            updated_at = excluded.updated_at
    `, s.ID, s.Name, string(scene), formatTime(s.CreatedAt), formatTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save sketch %s: %w", s.ID, err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Sketch, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, scene, created_at, updated_at
        FROM sketches
        WHERE id = ?
    `, id)

	s, err := scanSketch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// List возвращает эскизы, последние изменённые первыми.
func (r *Repository) List(ctx context.Context) ([]*Sketch, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, scene, created_at, updated_at
        FROM sketches
        ORDER BY updated_at DESC, id
    `)
	if err != nil {
		return nil, fmt.Errorf("list sketches: %w", err)
	}
	defer rows.Close()

	sketches := []*Sketch{}
	for rows.Next() {
		s, err := scanSketch(rows)
		if err != nil {
			return nil, err
		}
		sketches = append(sketches, s)
	}
	return sketches, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sketches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sketch %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSketch(row scanner) (*Sketch, error) {
	var (
		s                Sketch
		scene            string
		created, updated string
	)
	if err := row.Scan(&s.ID, &s.Name, &scene, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(scene), &s.Scene); err != nil {
		return nil, fmt.Errorf("decode scene %s: %w", s.ID, err)
	}

	var err error
	if s.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339, updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &s, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
