package repository

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	bookingserrors "roomly/internal/bookings/errors"
	"roomly/pkg/model"
	"roomly/pkg/storage"
	"roomly/pkg/timeutil"
)

type BookingRepository interface {
	// CreateIfFree inserts the booking unless an active booking of the
	// same room overlaps its window. The conflict check and the insert
	// run inside one IMMEDIATE transaction, so two concurrent creates
	// for the same slot serialize and the loser gets ErrTimeConflict.
	CreateIfFree(ctx context.Context, booking *model.Booking) error

	FindByID(ctx context.Context, id int64) (*model.Booking, error)
	FindAll(ctx context.Context) ([]*model.Booking, error)
	FindByUser(ctx context.Context, userID int64) ([]*model.Booking, error)

	// UpdateWindow persists room/start/end and bumps updated_at. With
	// enforceConflict set it re-checks overlap (excluding the booking
	// itself) inside the same transaction as the write.
	UpdateWindow(ctx context.Context, booking *model.Booking, enforceConflict bool) error

	UpdateStatus(ctx context.Context, id int64, status string) error

	HasConflict(ctx context.Context, roomID int64, window timeutil.Window, excludeID int64) (bool, error)
	HasActiveAt(ctx context.Context, roomID int64, at timeutil.Naive) (bool, error)
}

type sqliteBookingRepository struct {
	db *storage.DB
}

func NewBookingRepository(db *storage.DB) BookingRepository {
	return &sqliteBookingRepository{db: db}
}

const bookingColumns = "id, user_id, room_id, start_time, end_time, status, created_at, updated_at"

func readBooking(stmt *sqlite.Stmt) (*model.Booking, error) {
	start, err := timeutil.Parse(stmt.ColumnText(3))
	if err != nil {
		return nil, fmt.Errorf("corrupt start_time: %w", err)
	}
	end, err := timeutil.Parse(stmt.ColumnText(4))
	if err != nil {
		return nil, fmt.Errorf("corrupt end_time: %w", err)
	}
	createdAt, err := timeutil.Parse(stmt.ColumnText(6))
	if err != nil {
		return nil, fmt.Errorf("corrupt created_at: %w", err)
	}
	updatedAt, err := timeutil.Parse(stmt.ColumnText(7))
	if err != nil {
		return nil, fmt.Errorf("corrupt updated_at: %w", err)
	}

	return &model.Booking{
		ID:        stmt.ColumnInt64(0),
		UserID:    stmt.ColumnInt64(1),
		RoomID:    stmt.ColumnInt64(2),
		StartTime: start,
		EndTime:   end,
		Status:    stmt.ColumnText(5),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// conflictOnConn is the half-open interval overlap test against active
// bookings: existing.start < window.end AND existing.end > window.start.
// Touching endpoints do not conflict. excludeID 0 excludes nothing,
// since ids start at 1.
func conflictOnConn(conn *sqlite.Conn, roomID int64, window timeutil.Window, excludeID int64) (bool, error) {
	var conflict bool
	err := sqlitex.Execute(conn, `
		SELECT 1 FROM bookings
		WHERE room_id = ? AND status = ? AND id != ?
		  AND start_time < ? AND end_time > ?
		LIMIT 1`,
		&sqlitex.ExecOptions{
			Args: []any{roomID, model.BookingActive, excludeID, window.End.String(), window.Start.String()},
			ResultFunc: func(*sqlite.Stmt) error {
				conflict = true
				return nil
			},
		})
	if err != nil {
		return false, fmt.Errorf("checking booking conflict: %w", err)
	}
	return conflict, nil
}

func (r *sqliteBookingRepository) CreateIfFree(ctx context.Context, booking *model.Booking) error {
	now := timeutil.Now()

	return r.db.WithTx(ctx, func(conn *sqlite.Conn) error {
		conflict, err := conflictOnConn(conn, booking.RoomID, booking.Window(), 0)
		if err != nil {
			return err
		}
		if conflict {
			return bookingserrors.ErrTimeConflict
		}

		err = sqlitex.Execute(conn, `
			INSERT INTO bookings (user_id, room_id, start_time, end_time, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{
					booking.UserID,
					booking.RoomID,
					booking.StartTime.String(),
					booking.EndTime.String(),
					booking.Status,
					now.String(),
					now.String(),
				},
			})
		if err != nil {
			return fmt.Errorf("inserting booking: %w", err)
		}

		booking.ID = conn.LastInsertRowID()
		booking.CreatedAt = now
		booking.UpdatedAt = now
		return nil
	})
}

func (r *sqliteBookingRepository) FindByID(ctx context.Context, id int64) (*model.Booking, error) {
	conn, err := r.db.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.db.Put(conn)

	var booking *model.Booking
	err = sqlitex.Execute(conn,
		"SELECT "+bookingColumns+" FROM bookings WHERE id = ?",
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				booking, err = readBooking(stmt)
				return err
			},
		})
	if err != nil {
		return nil, fmt.Errorf("finding booking %d: %w", id, err)
	}
	if booking == nil {
		return nil, bookingserrors.ErrNotFound
	}
	return booking, nil
}

func (r *sqliteBookingRepository) FindAll(ctx context.Context) ([]*model.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingColumns+" FROM bookings ORDER BY start_time ASC", nil)
}

func (r *sqliteBookingRepository) FindByUser(ctx context.Context, userID int64) ([]*model.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE user_id = ? ORDER BY start_time ASC",
		[]any{userID})
}

func (r *sqliteBookingRepository) list(ctx context.Context, query string, args []any) ([]*model.Booking, error) {
	conn, err := r.db.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.db.Put(conn)

	bookings := make([]*model.Booking, 0)
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			booking, err := readBooking(stmt)
			if err != nil {
				return err
			}
			bookings = append(bookings, booking)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	return bookings, nil
}

func (r *sqliteBookingRepository) UpdateWindow(ctx context.Context, booking *model.Booking, enforceConflict bool) error {
	now := timeutil.Now()

	return r.db.WithTx(ctx, func(conn *sqlite.Conn) error {
		if enforceConflict {
			conflict, err := conflictOnConn(conn, booking.RoomID, booking.Window(), booking.ID)
			if err != nil {
				return err
			}
			if conflict {
				return bookingserrors.ErrTimeConflict
			}
		}

		err := sqlitex.Execute(conn, `
			UPDATE bookings
			SET room_id = ?, start_time = ?, end_time = ?, updated_at = ?
			WHERE id = ?`,
			&sqlitex.ExecOptions{
				Args: []any{
					booking.RoomID,
					booking.StartTime.String(),
					booking.EndTime.String(),
					now.String(),
					booking.ID,
				},
			})
		if err != nil {
			return fmt.Errorf("updating booking %d: %w", booking.ID, err)
		}
		if conn.Changes() == 0 {
			return bookingserrors.ErrNotFound
		}

		booking.UpdatedAt = now
		return nil
	})
}

func (r *sqliteBookingRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	conn, err := r.db.Take(ctx)
	if err != nil {
		return err
	}
	defer r.db.Put(conn)

	err = sqlitex.Execute(conn,
		"UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?",
		&sqlitex.ExecOptions{
			Args: []any{status, timeutil.Now().String(), id},
		})
	if err != nil {
		return fmt.Errorf("updating booking %d status: %w", id, err)
	}
	if conn.Changes() == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func (r *sqliteBookingRepository) HasConflict(ctx context.Context, roomID int64, window timeutil.Window, excludeID int64) (bool, error) {
	conn, err := r.db.Take(ctx)
	if err != nil {
		return false, err
	}
	defer r.db.Put(conn)

	return conflictOnConn(conn, roomID, window, excludeID)
}

func (r *sqliteBookingRepository) HasActiveAt(ctx context.Context, roomID int64, at timeutil.Naive) (bool, error) {
	conn, err := r.db.Take(ctx)
	if err != nil {
		return false, err
	}
	defer r.db.Put(conn)

	var booked bool
	err = sqlitex.Execute(conn, `
		SELECT 1 FROM bookings
		WHERE room_id = ? AND status = ? AND start_time <= ? AND end_time > ?
		LIMIT 1`,
		&sqlitex.ExecOptions{
			Args: []any{roomID, model.BookingActive, at.String(), at.String()},
			ResultFunc: func(*sqlite.Stmt) error {
				booked = true
				return nil
			},
		})
	if err != nil {
		return false, fmt.Errorf("checking active booking: %w", err)
	}
	return booked, nil
}
