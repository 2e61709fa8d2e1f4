package store

import "time"

// UpsertNotification inserts or updates a notification (idempotent on
// user_key + id). Replaying a push event that carries a server id updates
// the content in place without resetting the read flag.
func (db *DB) UpsertNotification(n *Notification) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO notifications (user_key, id, title, body, category, timestamp, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_key, id) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			category = excluded.category,
			timestamp = excluded.timestamp`,
		n.UserKey, n.ID, n.Title, n.Body, string(n.Category), n.Timestamp, n.Read, now)
	return err
}

// ListNotifications returns a user's notifications sorted by timestamp
// descending. An empty collection yields an empty slice, never an error.
func (db *DB) ListNotifications(userKey string) ([]Notification, error) {
	rows, err := db.Query(`
		SELECT user_key, id, title, body, category, timestamp, read
		FROM notifications
		WHERE user_key = ?
		ORDER BY timestamp DESC, id`, userKey)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Notification{}
	for rows.Next() {
		var n Notification
		var cat string
		if err := rows.Scan(&n.UserKey, &n.ID, &n.Title, &n.Body, &cat, &n.Timestamp, &n.Read); err != nil {
			return nil, err
		}
		n.Category = Category(cat)
		items = append(items, n)
	}
	return items, rows.Err()
}

// MarkNotificationRead sets the read flag for one notification. A missing
// id is a no-op, not an error.
func (db *DB) MarkNotificationRead(userKey, id string) error {
	_, err := db.Exec(`UPDATE notifications SET read = 1 WHERE user_key = ? AND id = ?`, userKey, id)
	return err
}

// MarkAllNotificationsRead sets the read flag on a user's entire feed.
func (db *DB) MarkAllNotificationsRead(userKey string) error {
	_, err := db.Exec(`UPDATE notifications SET read = 1 WHERE user_key = ?`, userKey)
	return err
}

// ClearNotifications deletes a user's entire feed.
func (db *DB) ClearNotifications(userKey string) error {
	_, err := db.Exec(`DELETE FROM notifications WHERE user_key = ?`, userKey)
	return err
}
