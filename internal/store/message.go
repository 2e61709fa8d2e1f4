package store

import "database/sql"

// IngestMessage inserts a message unless one with the same (ride_id, msg_id)
// already exists. Returns whether a new row was inserted; a duplicate from
// the competing delivery path reports false.
func (db *DB) IngestMessage(m *Message) (bool, error) {
	res, err := db.Exec(`
		INSERT INTO messages (ride_id, msg_id, conversation_id, body, message_type, sender_role, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ride_id, msg_id) DO NOTHING`,
		m.RideID, m.MsgID, m.ConversationID, m.Body, m.MessageType, m.SenderRole, m.CreatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListMessages returns a ride room's messages in arrival order.
func (db *DB) ListMessages(rideID string) ([]Message, error) {
	rows, err := db.Query(`
		SELECT seq, ride_id, msg_id, conversation_id, body, message_type, sender_role, created_at
		FROM messages
		WHERE ride_id = ?
		ORDER BY seq ASC`, rideID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	msgs := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Seq, &m.RideID, &m.MsgID, &m.ConversationID, &m.Body, &m.MessageType, &m.SenderRole, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// HasMessage reports whether a message id is already present for a ride.
func (db *DB) HasMessage(rideID, msgID string) (bool, error) {
	var one int
	err := db.QueryRow(`SELECT 1 FROM messages WHERE ride_id = ? AND msg_id = ?`, rideID, msgID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
