package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/sultonabiev/task-management/internal/common/db"
	"github.com/sultonabiev/task-management/internal/user/domain"
)

type Repository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, target string, user domain.User) (domain.User, error)
	Delete(ctx context.Context, username string) error
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO users (username, hashed_password, supervisor)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		user.Username,
		user.PasswordHash,
		user.Supervisor,
	)

	err := row.Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.User{}, ErrUsernameAlreadyExists
		}
		return domain.User{}, db.HandleExecError(err, "create user", start)
	}

	_ = db.HandleExecError(nil, "create user", start)
	return user, nil
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, hashed_password, supervisor FROM users WHERE username = $1`,
		username,
	)

	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Supervisor)
	if err := db.HandleQueryError(err, ErrUserNotFound, "find user by username", start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, hashed_password, supervisor FROM users WHERE id = $1`,
		int64(id),
	)

	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Supervisor)
	if err := db.HandleQueryError(err, ErrUserNotFound, "find user by id", start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *PgRepository) List(ctx context.Context) ([]domain.User, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, username, hashed_password, supervisor FROM users ORDER BY id`,
	)
	if err != nil {
		return nil, db.HandleExecError(err, "list users", start)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Supervisor); err != nil {
			return nil, db.HandleExecError(err, "list users", start)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, db.HandleExecError(err, "list users", start)
	}

	_ = db.HandleExecError(nil, "list users", start)
	return users, nil
}

// Update overwrites username, credential hash and supervisor flag in one
// statement. A rename onto a taken username violates the unique constraint
// and propagates as a plain database error.
func (r *PgRepository) Update(ctx context.Context, target string, user domain.User) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`UPDATE users
		 SET username = $2, hashed_password = $3, supervisor = $4
		 WHERE username = $1
		 RETURNING id, username, hashed_password, supervisor`,
		target,
		user.Username,
		user.PasswordHash,
		user.Supervisor,
	)

	var updated domain.User
	err := row.Scan(&updated.ID, &updated.Username, &updated.PasswordHash, &updated.Supervisor)
	if err := db.HandleQueryError(err, ErrUserNotFound, "update user", start); err != nil {
		return domain.User{}, err
	}
	return updated, nil
}

func (r *PgRepository) Delete(ctx context.Context, username string) error {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM users WHERE username = $1`,
		username,
	)
	if err := db.HandleExecError(err, "delete user", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

var ErrUserNotFound = errors.New("user not found")

var ErrUsernameAlreadyExists = errors.New("username already exists")
