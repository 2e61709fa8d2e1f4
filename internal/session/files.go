package session

import "os"

// createPrivate opens a file for writing with 0600 permissions, truncating
// any existing content.
func createPrivate(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
}
