package repository

import "errors"

// ErrUnsupportedDatabaseURL is returned by Open for a URL it cannot map to a driver.
var ErrUnsupportedDatabaseURL = errors.New("unsupported database url")
