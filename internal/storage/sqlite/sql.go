package sqlite

const schemaSQL = `
CREATE TABLE IF NOT EXISTS hotels (
  id         TEXT PRIMARY KEY,
  title      TEXT NOT NULL DEFAULT '',
  room       TEXT NOT NULL DEFAULT '',
  price      REAL NOT NULL DEFAULT 0,
  rating_avg REAL NOT NULL DEFAULT 0,
  reviews    INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS visits (
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  hotel_id    TEXT NOT NULL REFERENCES hotels(id),
  user_rating REAL NOT NULL,
  visited_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const upsertHotelSQL = `
INSERT INTO hotels (id, title, room, price, rating_avg, reviews)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  title      = excluded.title,
  room       = excluded.room,
  price      = excluded.price,
  rating_avg = excluded.rating_avg,
  reviews    = excluded.reviews,
  updated_at = CURRENT_TIMESTAMP
`

const insertVisitSQL = `INSERT INTO visits (hotel_id, user_rating, visited_at) VALUES (?, ?, ?)`

const rateVisitSQL = `UPDATE visits SET user_rating = ? WHERE id = ?`

const listRatedSQL = `
SELECT v.id, v.hotel_id, h.title, h.room, v.user_rating, v.visited_at
FROM visits v
LEFT JOIN hotels h ON h.id = v.hotel_id
WHERE v.id > ?
ORDER BY v.id
LIMIT ?
`

const getRatedSQL = `
SELECT v.id, v.hotel_id, h.title, h.room, v.user_rating, v.visited_at
FROM visits v
LEFT JOIN hotels h ON h.id = v.hotel_id
WHERE v.id = ?
`
