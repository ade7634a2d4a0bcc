package mysql

const insertHotelsPrefix = "INSERT INTO hotels\n  (id, title, room, price, rating_avg, reviews)\nVALUES "

// Use VALUES(col) for broad compatibility.
const insertHotelsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  title      = VALUES(title),\n" +
	"  room       = VALUES(room),\n" +
	"  price      = VALUES(price),\n" +
	"  rating_avg = VALUES(rating_avg),\n" +
	"  reviews    = VALUES(reviews),\n" +
	"  updated_at = CURRENT_TIMESTAMP\n"

const insertVisitSQL = `
INSERT INTO visits (hotel_id, user_rating, visited_at)
VALUES (?, ?, ?)
`

const rateVisitSQL = `UPDATE visits SET user_rating = ? WHERE id = ?`

const visitExistsSQL = `SELECT EXISTS(SELECT 1 FROM visits WHERE id = ?)`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Visits in insertion order after a cursor. LEFT JOIN so a visit whose hotel
// snapshot is missing still shows up (with an empty title).
const listRatedSQL = `
SELECT
  v.id,
  v.hotel_id,
  h.title,
  h.room,
  v.user_rating,
  v.visited_at
FROM visits v
LEFT JOIN hotels h ON h.id = v.hotel_id
WHERE v.id > ?
ORDER BY v.id
LIMIT ?
`

const getRatedSQL = `
SELECT
  v.id,
  v.hotel_id,
  h.title,
  h.room,
  v.user_rating,
  v.visited_at
FROM visits v
LEFT JOIN hotels h ON h.id = v.hotel_id
WHERE v.id = ?
`
