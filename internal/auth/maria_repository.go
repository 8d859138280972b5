package auth

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

// MariaConfig contains connection settings for the MariaDB user repository.
type MariaConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// MariaUserRepo implements UserRepository on MariaDB. Kept as an alternative
// to the default MongoDB backend for deployments that already run MariaDB.
type MariaUserRepo struct {
	db *sql.DB
}

// NewMariaUserRepo opens the connection and ensures the schema exists.
func NewMariaUserRepo(cfg MariaConfig) (*MariaUserRepo, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 3306
	}
	if cfg.Database == "" {
		cfg.Database = "casino"
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mariadb connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to mariadb: %w", err)
	}

	repo := &MariaUserRepo{db: db}
	if err := repo.createTables(); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return repo, nil
}

func (m *MariaUserRepo) createTables() error {
	createUsersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(50) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		role VARCHAR(20) NOT NULL DEFAULT 'ROLE_USER',
		coins INT NOT NULL DEFAULT 0,
		wins INT NOT NULL DEFAULT 0,
		bjwins INT NOT NULL DEFAULT 0,
		skins JSON NOT NULL,
		last_login_date DATETIME NOT NULL DEFAULT '1970-01-01 00:00:00',
		reset_token VARCHAR(64) NULL,
		reset_token_expiry DATETIME NULL,
		INDEX idx_username (username),
		INDEX idx_email (email),
		INDEX idx_reset_token (reset_token)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`

	if _, err := m.db.Exec(createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

const userColumns = `id, username, password_hash, email, role, coins, wins, bjwins, skins,
	last_login_date, reset_token, reset_token_expiry`

func (m *MariaUserRepo) scanUser(row *sql.Row) (*User, error) {
	var (
		user       User
		id         uint64
		skinsJSON  []byte
		resetToken sql.NullString
		resetExp   sql.NullTime
	)
	err := row.Scan(&id, &user.Username, &user.PasswordHash, &user.Email, &user.Role,
		&user.Coins, &user.Wins, &user.BJWins, &skinsJSON,
		&user.LastLoginDate, &resetToken, &resetExp)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	user.ID = strconv.FormatUint(id, 10)
	if err := json.Unmarshal(skinsJSON, &user.Skins); err != nil {
		return nil, fmt.Errorf("decode skins column: %w", err)
	}
	if user.Skins == nil {
		user.Skins = []string{}
	}
	if resetToken.Valid {
		user.ResetToken = resetToken.String
	}
	if resetExp.Valid {
		user.ResetExpiry = resetExp.Time
	}
	return &user, nil
}

// Create implements UserRepository.
func (m *MariaUserRepo) Create(user *User) (*User, error) {
	skinsJSON, err := json.Marshal(user.Skins)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO users (username, password_hash, email, role, coins, wins, bjwins, skins, last_login_date)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := m.db.Exec(query,
		strings.ToLower(user.Username), user.PasswordHash, strings.ToLower(user.Email),
		string(user.Role), user.Coins, user.Wins, user.BJWins, skinsJSON, user.LastLoginDate)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	userID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("fetch inserted id: %w", err)
	}

	stored := *user
	stored.ID = strconv.FormatInt(userID, 10)
	stored.Username = strings.ToLower(user.Username)
	stored.Email = strings.ToLower(user.Email)
	return &stored, nil
}

// GetByUsername implements UserRepository.
func (m *MariaUserRepo) GetByUsername(username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return m.scanUser(m.db.QueryRow(query, strings.ToLower(username)))
}

// GetByEmail implements UserRepository.
func (m *MariaUserRepo) GetByEmail(email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return m.scanUser(m.db.QueryRow(query, strings.ToLower(email)))
}

// GetByID implements UserRepository.
func (m *MariaUserRepo) GetByID(id string) (*User, error) {
	numeric, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return nil, ErrUserNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return m.scanUser(m.db.QueryRow(query, numeric))
}

// GetByResetToken implements UserRepository.
func (m *MariaUserRepo) GetByResetToken(token string) (*User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token = ?`
	return m.scanUser(m.db.QueryRow(query, token))
}

// Update implements UserRepository.
func (m *MariaUserRepo) Update(user *User) (*User, error) {
	numeric, err := strconv.ParseUint(user.ID, 10, 64)
	if err != nil {
		return nil, ErrUserNotFound
	}
	skinsJSON, err := json.Marshal(user.Skins)
	if err != nil {
		return nil, err
	}

	var resetToken interface{}
	var resetExp interface{}
	if user.ResetToken != "" {
		resetToken = user.ResetToken
		resetExp = user.ResetExpiry
	}

	query := `UPDATE users SET password_hash = ?, role = ?, coins = ?, wins = ?, bjwins = ?,
			  skins = ?, last_login_date = ?, reset_token = ?, reset_token_expiry = ?
			  WHERE id = ?`
	result, err := m.db.Exec(query,
		user.PasswordHash, string(user.Role), user.Coins, user.Wins, user.BJWins,
		skinsJSON, user.LastLoginDate, resetToken, resetExp, numeric)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op update,
		// so confirm existence before reporting not-found.
		if _, getErr := m.GetByID(user.ID); getErr != nil {
			return nil, getErr
		}
	}
	return user, nil
}

// Delete implements UserRepository.
func (m *MariaUserRepo) Delete(id string) error {
	numeric, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return ErrUserNotFound
	}
	result, err := m.db.Exec(`DELETE FROM users WHERE id = ?`, numeric)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// List implements UserRepository.
func (m *MariaUserRepo) List() ([]*User, error) {
	rows, err := m.db.Query(`SELECT ` + userColumns + ` FROM users`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var (
			user       User
			id         uint64
			skinsJSON  []byte
			resetToken sql.NullString
			resetExp   sql.NullTime
		)
		err := rows.Scan(&id, &user.Username, &user.PasswordHash, &user.Email, &user.Role,
			&user.Coins, &user.Wins, &user.BJWins, &skinsJSON,
			&user.LastLoginDate, &resetToken, &resetExp)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		user.ID = strconv.FormatUint(id, 10)
		if err := json.Unmarshal(skinsJSON, &user.Skins); err != nil {
			return nil, fmt.Errorf("decode skins column: %w", err)
		}
		if user.Skins == nil {
			user.Skins = []string{}
		}
		if resetToken.Valid {
			user.ResetToken = resetToken.String
		}
		if resetExp.Valid {
			user.ResetExpiry = resetExp.Time
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if users == nil {
		users = []*User{}
	}
	return users, nil
}

// Close closes the database connection.
func (m *MariaUserRepo) Close() error {
	return m.db.Close()
}
