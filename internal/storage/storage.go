package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/liquidevz/rangaone/internal/models"

	_ "modernc.org/sqlite"
)

// ErrUserNotFound - пользователя с таким именем/ID нет
var ErrUserNotFound = errors.New("user not found")

// Storage хранит администраторов дашборда и лог активности.
// Сами сущности (акции, типы, подписки) живут на удаленном backend.
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
}

// New открывает (или создает) базу и применяет схему
func New(dbPath string, logger *slog.Logger) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// sqlite не любит параллельную запись
	db.SetMaxOpenConns(1)

	storage := &Storage{
		db:     db,
		logger: logger,
	}

	if err := storage.init(); err != nil {
		db.Close()
		return nil, err
	}

	return storage, nil
}

func (s *Storage) init() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS activity_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER,
    level TEXT NOT NULL,
    action TEXT NOT NULL,
    message TEXT NOT NULL,
    details TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_activity_log_user ON activity_log(user_id);
CREATE INDEX IF NOT EXISTS idx_activity_log_created ON activity_log(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_activity_log_level ON activity_log(level);
`)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	s.logger.Info("✅ Database initialized")

	return nil
}

// === Users ===

// CreateUser создает администратора
func (s *Storage) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES (?, ?)
	`, username, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, _ := result.LastInsertId()

	return &models.User{
		ID:           int(id),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}, nil
}

// GetUserByUsername получает пользователя по имени
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "username = ?", username)
}

// GetUserByID получает пользователя по ID
func (s *Storage) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *Storage) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var user models.User

	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE `+where, arg).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// === Activity Log ===

// AddLog добавляет запись в лог
func (s *Storage) AddLog(ctx context.Context, log models.ActivityLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (user_id, level, action, message, details)
		VALUES (?, ?, ?, ?, ?)
	`, log.UserID, log.Level, log.Action, log.Message, log.Details)

	return err
}

// LogFilter - фильтр выборки лога
type LogFilter struct {
	UserID *int
	Level  string
	Limit  int
	Offset int
}

// GetLogs получает логи с пагинацией, новые первыми.
// Записи без пользователя (системные) видны всем.
func (s *Storage) GetLogs(ctx context.Context, filter LogFilter) ([]models.ActivityLog, int, error) {
	var (
		conds []string
		args  []any
	)

	if filter.UserID != nil {
		conds = append(conds, "(user_id = ? OR user_id IS NULL)")
		args = append(args, *filter.UserID)
	}
	if filter.Level != "" {
		conds = append(conds, "level = ?")
		args = append(args, strings.ToUpper(filter.Level))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM activity_log "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, level, action, message, coalesce(details, ''), created_at
		FROM activity_log
		`+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	logs := make([]models.ActivityLog, 0, max(filter.Limit, 0))
	for rows.Next() {
		var log models.ActivityLog
		err := rows.Scan(
			&log.ID, &log.UserID, &log.Level, &log.Action, &log.Message, &log.Details, &log.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}

		logs = append(logs, log)
	}

	return logs, total, rows.Err()
}

// Close закрывает соединение с БД
func (s *Storage) Close() error {
	return s.db.Close()
}
