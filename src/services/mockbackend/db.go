package mockbackend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when registering an existing email.
var ErrEmailTaken = errors.New("email already registered")

type UserRecord struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type ChatRecord struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type MessageRecord struct {
	Type      string
	Content   string
	ModelName string
	CreatedAt time.Time
}

type ModelRecord struct {
	Name        string
	Description string
}

// DefaultModels seed the model list of a fresh database.
var DefaultModels = []ModelRecord{
	{Name: "llama3.1:8b", Description: "General purpose, fast"},
	{Name: "qwen2.5:14b", Description: "Multilingual, stronger reasoning"},
	{Name: "gpt-4o-mini", Description: "Hosted model"},
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS chats (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chats_user ON chats(user_id, updated_at DESC);
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	chat_id TEXT NOT NULL,
	type TEXT NOT NULL,
	content TEXT NOT NULL,
	model_name TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, id);
CREATE TABLE IF NOT EXISTS models (
	name TEXT PRIMARY KEY,
	description TEXT NOT NULL DEFAULT ''
);
`

// DB is the mock backend's SQLite database.
type DB struct {
	db *sql.DB
}

// OpenDB opens path (":memory:" for a throwaway database) and applies the schema.
func OpenDB(path string) (*DB, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	d := &DB{db: db}
	if err := d.seedModels(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error { return d.db.Close() }

func (d *DB) seedModels(ctx context.Context) error {
	for _, m := range DefaultModels {
		if _, err := d.db.ExecContext(ctx, `INSERT OR IGNORE INTO models (name, description) VALUES (?, ?)`, m.Name, m.Description); err != nil {
			return fmt.Errorf("failed to seed models: %w", err)
		}
	}
	return nil
}

func (d *DB) CreateUser(ctx context.Context, name, email, hash string) (*UserRecord, error) {
	u := &UserRecord{ID: uuid.NewString(), Name: name, Email: email, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	if _, err := d.UserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}
	_, err := d.db.ExecContext(ctx, `INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (d *DB) UserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return d.scanUser(d.db.QueryRowContext(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`, email))
}

func (d *DB) UserByID(ctx context.Context, id string) (*UserRecord, error) {
	return d.scanUser(d.db.QueryRowContext(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (d *DB) scanUser(row *sql.Row) (*UserRecord, error) {
	var u UserRecord
	var created int64
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read user: %w", err)
	}
	u.CreatedAt = time.UnixMilli(created).UTC()
	return &u, nil
}

func (d *DB) CreateChat(ctx context.Context, userID, title string) (*ChatRecord, error) {
	now := time.Now().UTC()
	c := &ChatRecord{ID: uuid.NewString(), UserID: userID, Title: title, CreatedAt: now, UpdatedAt: now}
	_, err := d.db.ExecContext(ctx, `INSERT INTO chats (id, user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Title, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	return c, nil
}

// ListChats returns the user's chats, most recently updated first.
func (d *DB) ListChats(ctx context.Context, userID string) ([]ChatRecord, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, user_id, title, created_at, updated_at FROM chats
		WHERE user_id = ? ORDER BY updated_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	var out []ChatRecord
	for rows.Next() {
		var c ChatRecord
		var created, updated int64
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		c.CreatedAt = time.UnixMilli(created).UTC()
		c.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) ChatExists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM chats WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to look up chat: %w", err)
	}
	return n > 0, nil
}

func (d *DB) Messages(ctx context.Context, chatID string) ([]MessageRecord, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT type, content, model_name, created_at FROM messages WHERE chat_id = ? ORDER BY id`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	out := []MessageRecord{}
	for rows.Next() {
		var m MessageRecord
		var created int64
		if err := rows.Scan(&m.Type, &m.Content, &m.ModelName, &created); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

// AppendExchange stores a user message and its reply and bumps the chat.
func (d *DB) AppendExchange(ctx context.Context, chatID string, user, bot MessageRecord) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range []MessageRecord{user, bot} {
		if _, err := tx.ExecContext(ctx, `INSERT INTO messages (chat_id, type, content, model_name, created_at) VALUES (?, ?, ?, ?, ?)`,
			chatID, m.Type, m.Content, m.ModelName, m.CreatedAt.UnixMilli()); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}
	// The chat always moves to the top of its user's list, even within the same millisecond.
	if _, err := tx.ExecContext(ctx, `UPDATE chats SET updated_at = MAX(?,
		(SELECT COALESCE(MAX(c2.updated_at), 0) + 1 FROM chats c2 WHERE c2.user_id = chats.user_id))
		WHERE id = ?`, bot.CreatedAt.UnixMilli(), chatID); err != nil {
		return fmt.Errorf("failed to touch chat: %w", err)
	}
	return tx.Commit()
}

func (d *DB) Models(ctx context.Context) ([]ModelRecord, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT name, description FROM models ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()

	var out []ModelRecord
	for rows.Next() {
		var m ModelRecord
		if err := rows.Scan(&m.Name, &m.Description); err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (d *DB) ModelExists(ctx context.Context, name string) (bool, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM models WHERE name = ?`, name).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to look up model: %w", err)
	}
	return n > 0, nil
}
