package main

import (
	"errors"
	"fmt"
	"net/http"

	"snapsync/internal/hypermedia"
)

// describeError adds a hint for failures a user can fix themselves.
func describeError(err error) error {
	var httpErr *hypermedia.HTTPError
	if errors.As(err, &httpErr) && (httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
		return fmt.Errorf("TeamSnap rejected the access token, run 'snapsync auth teamsnap' to get a new one: %w", err)
	}
	return err
}
