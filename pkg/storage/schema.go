package storage

// Timestamps are stored as canonical naive-UTC text ("2006-01-02T15:04:05"),
// which compares correctly both lexicographically in SQL and after parsing
// in Go. strftime with 'now' yields exactly that shape.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    email         TEXT NOT NULL UNIQUE,
    full_name     TEXT,
    role          TEXT NOT NULL DEFAULT 'user',
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%S','now'))
);

CREATE TABLE IF NOT EXISTS rooms (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    name      TEXT NOT NULL UNIQUE,
    capacity  INTEGER NOT NULL,
    equipment TEXT,
    location  TEXT,
    is_active INTEGER NOT NULL DEFAULT 1
);

-- No cross-table foreign keys: each service owns its tables and
-- validates references through the owning service's API, and booking
-- history survives user/room deletion.
CREATE TABLE IF NOT EXISTS bookings (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    INTEGER NOT NULL,
    room_id    INTEGER NOT NULL,
    start_time TEXT NOT NULL,
    end_time   TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'active',
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%S','now')),
    updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%S','now'))
);

CREATE INDEX IF NOT EXISTS idx_bookings_room_window
    ON bookings (room_id, status, start_time, end_time);
`
