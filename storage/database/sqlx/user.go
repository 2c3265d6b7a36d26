package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chama/core"
	"github.com/trezcool/chama/core/user"
)

type userRow struct {
	ID           string      `db:"id"`
	Name         null.String `db:"name"`
	Username     null.String `db:"username"`
	Email        null.String `db:"email"`
	IsActive     bool        `db:"is_active"`
	PasswordHash null.Bytes  `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) row(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         null.NewString(usr.Name, usr.Name != ""),
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		IsActive:     usr.IsActive,
		PasswordHash: null.BytesFrom(usr.PasswordHash),
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) unrow(row userRow) user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name.String,
		Username:     row.Username.String,
		Email:        row.Email.String,
		IsActive:     row.IsActive,
		PasswordHash: row.PasswordHash.Bytes,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		LastLogin:    row.LastLogin.Time,
	}
}

func (repo userRepository) unrowSlice(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.unrow(row))
	}
	return users
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	query := "SELECT username, email FROM users WHERE (username = $1 OR email = $2)"
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		inQuery, inArgs, err := sqlx.In("SELECT username, email FROM users WHERE (username = ? OR email = ?) AND id NOT IN (?)", username, email, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
		query = repo.db.Rebind(inQuery)
		args = inArgs
	}

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, row := range rows {
		if row.Username.String == username {
			return user.ErrUsernameExists
		}
		if row.Email.String == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := repo.row(usr)
	query := `
		INSERT INTO users (id, name, username, email, is_active, password_hash, created_at, updated_at, last_login)
		VALUES (:id, :name, :username, :email, :is_active, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.unrow(row), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}
	var row userRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM users WHERE id = $1", id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by ID")
	}
	return repo.unrow(row), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM users WHERE email = $1", email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by email")
	}
	return repo.unrow(row), nil
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (user.User, error) {
	var row userRow
	query := "SELECT * FROM users WHERE username = $1 OR email = $1"
	if err := repo.db.GetContext(ctx, &row, query, usernameOrEmail); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return repo.unrow(row), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	var conds []string
	var args []interface{}

	if filter != nil {
		// users with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			conds = append(conds, "(name ILIKE ? OR username ILIKE ? OR email ILIKE ?)")
			val := "%" + filter.Search + "%"
			args = append(args, val, val, val)
		}
		if filter.IsActive != nil {
			conds = append(conds, "is_active = ?")
			args = append(args, *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			conds = append(conds, "created_at >= ?")
			args = append(args, filter.CreatedFrom.UTC())
		}
		if !filter.CreatedTo.IsZero() {
			conds = append(conds, "created_at <= ?")
			args = append(args, filter.CreatedTo.UTC())
		}
	}

	query := "SELECT * FROM users"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering, userColumns)
	query = repo.db.Rebind(query)

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.unrowSlice(rows), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	if isActive != nil {
		usr.IsActive = *isActive
	}
	row := repo.row(usr)
	query := `
		UPDATE users
		SET name = :name, username = :username, email = :email, is_active = :is_active,
		    password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.unrow(row), nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	query, args, err := sqlx.In("DELETE FROM users WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
