package repository

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	userserrors "roomly/internal/users/errors"
	"roomly/pkg/model"
	"roomly/pkg/storage"
	"roomly/pkg/timeutil"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindAll(ctx context.Context) ([]*model.User, error)

	// Update persists email, full_name, password_hash and role.
	Update(ctx context.Context, user *model.User) error

	Delete(ctx context.Context, id int64) error

	// AdminExists reports whether any admin account exists, for the
	// bootstrap rule on registration.
	AdminExists(ctx context.Context) (bool, error)

	// BookingHistory reads the bookings table directly, resolving room
	// names in one query. The services share the database file.
	BookingHistory(ctx context.Context, userID int64) ([]*model.BookingSummary, error)
}

type sqliteUserRepository struct {
	db *storage.DB
}

func NewUserRepository(db *storage.DB) UserRepository {
	return &sqliteUserRepository{db: db}
}

const userColumns = "id, username, email, full_name, role, password_hash, created_at"

func readUser(stmt *sqlite.Stmt) (*model.User, error) {
	createdAt, err := timeutil.Parse(stmt.ColumnText(6))
	if err != nil {
		return nil, fmt.Errorf("corrupt created_at: %w", err)
	}

	user := &model.User{
		ID:           stmt.ColumnInt64(0),
		Username:     stmt.ColumnText(1),
		Email:        stmt.ColumnText(2),
		Role:         stmt.ColumnText(4),
		PasswordHash: stmt.ColumnText(5),
		CreatedAt:    createdAt,
	}
	if stmt.ColumnType(3) != sqlite.TypeNull {
		fullName := stmt.ColumnText(3)
		user.FullName = &fullName
	}
	return user, nil
}

func (r *sqliteUserRepository) Create(ctx context.Context, user *model.User) error {
	conn, err := r.db.Take(ctx)
	if err != nil {
		return err
	}
	defer r.db.Put(conn)

	now := timeutil.Now()

	var fullName any
	if user.FullName != nil {
		fullName = *user.FullName
	}

	err = sqlitex.Execute(conn, `
		INSERT INTO users (username, email, full_name, role, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{user.Username, user.Email, fullName, user.Role, user.PasswordHash, now.String()},
		})
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return userserrors.ErrDuplicate
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	user.ID = conn.LastInsertRowID()
	user.CreatedAt = now
	return nil
}

func (r *sqliteUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.findOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", []any{id})
}

func (r *sqliteUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", []any{username})
}

func (r *sqliteUserRepository) findOne(ctx context.Context, query string, args []any) (*model.User, error) {
	conn, err := r.db.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.db.Put(conn)

	var user *model.User
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			user, err = readUser(stmt)
			return err
		},
	})
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	if user == nil {
		return nil, userserrors.ErrNotFound
	}
	return user, nil
}

func (r *sqliteUserRepository) FindAll(ctx context.Context) ([]*model.User, error) {
	conn, err := r.db.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.db.Put(conn)

	users := make([]*model.User, 0)
	err = sqlitex.Execute(conn,
		"SELECT "+userColumns+" FROM users ORDER BY id ASC",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				user, err := readUser(stmt)
				if err != nil {
					return err
				}
				users = append(users, user)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (r *sqliteUserRepository) Update(ctx context.Context, user *model.User) error {
	conn, err := r.db.Take(ctx)
	if err != nil {
		return err
	}
	defer r.db.Put(conn)

	var fullName any
	if user.FullName != nil {
		fullName = *user.FullName
	}

	err = sqlitex.Execute(conn, `
		UPDATE users SET email = ?, full_name = ?, role = ?, password_hash = ?
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{user.Email, fullName, user.Role, user.PasswordHash, user.ID},
		})
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return userserrors.ErrDuplicate
		}
		return fmt.Errorf("updating user %d: %w", user.ID, err)
	}
	if conn.Changes() == 0 {
		return userserrors.ErrNotFound
	}
	return nil
}

func (r *sqliteUserRepository) Delete(ctx context.Context, id int64) error {
	conn, err := r.db.Take(ctx)
	if err != nil {
		return err
	}
	defer r.db.Put(conn)

	err = sqlitex.Execute(conn, "DELETE FROM users WHERE id = ?",
		&sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	if conn.Changes() == 0 {
		return userserrors.ErrNotFound
	}
	return nil
}

func (r *sqliteUserRepository) BookingHistory(ctx context.Context, userID int64) ([]*model.BookingSummary, error) {
	conn, err := r.db.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.db.Put(conn)

	entries := make([]*model.BookingSummary, 0)
	err = sqlitex.Execute(conn, `
		SELECT b.id, r.name, b.start_time, b.end_time, b.status
		FROM bookings b
		LEFT JOIN rooms r ON r.id = b.room_id
		WHERE b.user_id = ?
		ORDER BY b.start_time DESC`,
		&sqlitex.ExecOptions{
			Args: []any{userID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				start, err := timeutil.Parse(stmt.ColumnText(2))
				if err != nil {
					return fmt.Errorf("corrupt start_time: %w", err)
				}
				end, err := timeutil.Parse(stmt.ColumnText(3))
				if err != nil {
					return fmt.Errorf("corrupt end_time: %w", err)
				}
				entry := &model.BookingSummary{
					ID:        stmt.ColumnInt64(0),
					StartTime: start,
					EndTime:   end,
					Status:    stmt.ColumnText(4),
				}
				if stmt.ColumnType(1) != sqlite.TypeNull {
					name := stmt.ColumnText(1)
					entry.RoomName = &name
				}
				entries = append(entries, entry)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("loading booking history for user %d: %w", userID, err)
	}
	return entries, nil
}

func (r *sqliteUserRepository) AdminExists(ctx context.Context) (bool, error) {
	conn, err := r.db.Take(ctx)
	if err != nil {
		return false, err
	}
	defer r.db.Put(conn)

	var exists bool
	err = sqlitex.Execute(conn,
		"SELECT 1 FROM users WHERE role = ? LIMIT 1",
		&sqlitex.ExecOptions{
			Args: []any{model.RoleAdmin},
			ResultFunc: func(*sqlite.Stmt) error {
				exists = true
				return nil
			},
		})
	if err != nil {
		return false, fmt.Errorf("checking for admin: %w", err)
	}
	return exists, nil
}
