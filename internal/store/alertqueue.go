package store

// EnqueueAlert appends an alert to the persisted FIFO queue.
func (db *DB) EnqueueAlert(a *QueuedAlert) error {
	_, err := db.Exec(`
		INSERT INTO alert_queue (driver_id, message, include_location, queued_at)
		VALUES (?, ?, ?, ?)`,
		a.DriverID, a.Message, a.IncludeLocation, a.QueuedAt)
	return err
}

// PendingAlerts returns queued alerts in FIFO order.
func (db *DB) PendingAlerts() ([]QueuedAlert, error) {
	rows, err := db.Query(`
		SELECT id, driver_id, message, include_location, queued_at
		FROM alert_queue ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []QueuedAlert
	for rows.Next() {
		var a QueuedAlert
		if err := rows.Scan(&a.ID, &a.DriverID, &a.Message, &a.IncludeLocation, &a.QueuedAt); err != nil {
			return nil, err
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}

// DeleteAlert removes an alert after a confirmed successful send. Entries
// whose retry failed stay in place for the next flush cycle.
func (db *DB) DeleteAlert(id int64) error {
	_, err := db.Exec(`DELETE FROM alert_queue WHERE id = ?`, id)
	return err
}
