package repository

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	roomserrors "roomly/internal/rooms/errors"
	"roomly/pkg/model"
	"roomly/pkg/storage"
)

type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	FindByID(ctx context.Context, id int64) (*model.Room, error)
	FindAll(ctx context.Context, activeOnly bool) ([]*model.Room, error)
	Update(ctx context.Context, room *model.Room) error
	Delete(ctx context.Context, id int64) error
}

type sqliteRoomRepository struct {
	db *storage.DB
}

func NewRoomRepository(db *storage.DB) RoomRepository {
	return &sqliteRoomRepository{db: db}
}

const roomColumns = "id, name, capacity, equipment, location, is_active"

func readRoom(stmt *sqlite.Stmt) *model.Room {
	room := &model.Room{
		ID:       stmt.ColumnInt64(0),
		Name:     stmt.ColumnText(1),
		Capacity: stmt.ColumnInt64(2),
		IsActive: stmt.ColumnInt64(5) != 0,
	}
	if stmt.ColumnType(3) != sqlite.TypeNull {
		equipment := stmt.ColumnText(3)
		room.Equipment = &equipment
	}
	if stmt.ColumnType(4) != sqlite.TypeNull {
		location := stmt.ColumnText(4)
		room.Location = &location
	}
	return room
}

func optText(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func (r *sqliteRoomRepository) Create(ctx context.Context, room *model.Room) error {
	conn, err := r.db.Take(ctx)
	if err != nil {
		return err
	}
	defer r.db.Put(conn)

	err = sqlitex.Execute(conn, `
		INSERT INTO rooms (name, capacity, equipment, location, is_active)
		VALUES (?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{room.Name, room.Capacity, optText(room.Equipment), optText(room.Location), boolToInt(room.IsActive)},
		})
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return roomserrors.ErrDuplicate
		}
		return fmt.Errorf("inserting room: %w", err)
	}

	room.ID = conn.LastInsertRowID()
	return nil
}

func (r *sqliteRoomRepository) FindByID(ctx context.Context, id int64) (*model.Room, error) {
	conn, err := r.db.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.db.Put(conn)

	var room *model.Room
	err = sqlitex.Execute(conn,
		"SELECT "+roomColumns+" FROM rooms WHERE id = ?",
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				room = readRoom(stmt)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("finding room %d: %w", id, err)
	}
	if room == nil {
		return nil, roomserrors.ErrNotFound
	}
	return room, nil
}

func (r *sqliteRoomRepository) FindAll(ctx context.Context, activeOnly bool) ([]*model.Room, error) {
	conn, err := r.db.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.db.Put(conn)

	query := "SELECT " + roomColumns + " FROM rooms ORDER BY id ASC"
	if activeOnly {
		query = "SELECT " + roomColumns + " FROM rooms WHERE is_active = 1 ORDER BY id ASC"
	}

	rooms := make([]*model.Room, 0)
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			rooms = append(rooms, readRoom(stmt))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	return rooms, nil
}

func (r *sqliteRoomRepository) Update(ctx context.Context, room *model.Room) error {
	conn, err := r.db.Take(ctx)
	if err != nil {
		return err
	}
	defer r.db.Put(conn)

	err = sqlitex.Execute(conn, `
		UPDATE rooms SET name = ?, capacity = ?, equipment = ?, location = ?, is_active = ?
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{room.Name, room.Capacity, optText(room.Equipment), optText(room.Location), boolToInt(room.IsActive), room.ID},
		})
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return roomserrors.ErrDuplicate
		}
		return fmt.Errorf("updating room %d: %w", room.ID, err)
	}
	if conn.Changes() == 0 {
		return roomserrors.ErrNotFound
	}
	return nil
}

func (r *sqliteRoomRepository) Delete(ctx context.Context, id int64) error {
	conn, err := r.db.Take(ctx)
	if err != nil {
		return err
	}
	defer r.db.Put(conn)

	err = sqlitex.Execute(conn, "DELETE FROM rooms WHERE id = ?",
		&sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return fmt.Errorf("deleting room %d: %w", id, err)
	}
	if conn.Changes() == 0 {
		return roomserrors.ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
