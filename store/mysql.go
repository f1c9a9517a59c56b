package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"TaskClient/models"

	"github.com/go-sql-driver/mysql"
)

// MySQLConfig holds the connection settings of the backend database.
type MySQLConfig struct {
	User     string
	Password string
	Address  string
	DBName   string
}

// DSN formats the driver connection string for cfg.
func (cfg MySQLConfig) DSN() string {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = cfg.Address
	c.DBName = cfg.DBName
	c.AllowNativePasswords = true
	return c.FormatDSN()
}

// MySQL is a TaskStore backed by the "task" table:
//
//	CREATE TABLE task (
//	  id INT AUTO_INCREMENT PRIMARY KEY,
//	  name VARCHAR(255) NOT NULL,
//	  description TEXT NOT NULL,
//	  status TINYINT NOT NULL DEFAULT 0
//	);
type MySQL struct {
	db *sql.DB
}

// OpenMySQL connects to the database described by cfg and checks the connection.
//
// Returns:
// - *MySQL: The connected store.
// - error: An error if the connection cannot be opened or the ping fails.
func OpenMySQL(ctx context.Context, cfg MySQLConfig) (*MySQL, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}
	return NewMySQL(db), nil
}

// NewMySQL wraps an open database handle.
func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{db: db}
}

// Close releases the database handle.
func (s *MySQL) Close() error {
	return s.db.Close()
}

func (s *MySQL) List(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, description, status FROM task ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to execute SQL query: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}
	return tasks, nil
}

func (s *MySQL) Create(ctx context.Context, draft models.Draft) (models.Task, error) {
	task := models.Task{
		Name:        strings.TrimSpace(draft.Name),
		Description: strings.TrimSpace(draft.Description),
		Status:      models.Pending,
	}
	res, err := s.db.ExecContext(ctx, "INSERT INTO task(name, description, status) VALUES(?, ?, ?)",
		task.Name, task.Description, int(task.Status))
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to execute SQL statement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to retrieve the last inserted ID: %w", err)
	}
	task.ID = models.NumericID(id)
	return task, nil
}

func (s *MySQL) Update(ctx context.Context, id models.TaskID, task models.Task) (models.Task, error) {
	key, err := numericID(id)
	if err != nil {
		return models.Task{}, err
	}
	_, err = s.db.ExecContext(ctx, "UPDATE task SET name=?, description=?, status=? WHERE id=?",
		strings.TrimSpace(task.Name), strings.TrimSpace(task.Description), int(task.Status), key)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to execute SQL statement: %w", err)
	}
	// RowsAffected is 0 for an update that changes nothing, so read the row back instead.
	row := s.db.QueryRowContext(ctx, "SELECT id, name, description, status FROM task WHERE id=?", key)
	return scanTask(row)
}

func (s *MySQL) Delete(ctx context.Context, id models.TaskID) error {
	key, err := numericID(id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM task WHERE id=?", key)
	if err != nil {
		return fmt.Errorf("failed to execute SQL statement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (models.Task, error) {
	var (
		id     int64
		task   models.Task
		status int
	)
	if err := row.Scan(&id, &task.Name, &task.Description, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("failed to scan task: %w", err)
	}
	task.ID = models.NumericID(id)
	task.Status = models.Status(status)
	return task, nil
}

// numericID converts an id for the integer primary key; anything else cannot exist in the table.
func numericID(id models.TaskID) (int64, error) {
	key, err := strconv.ParseInt(id.String(), 10, 64)
	if err != nil || strconv.FormatInt(key, 10) != id.String() {
		return 0, ErrNotFound
	}
	return key, nil
}
