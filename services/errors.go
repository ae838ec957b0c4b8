// services/errors.go
package services

import (
	"errors"
	"fmt"

	"github.com/PhilHen99/InplayBasketSourceFinder/source"
)

var (
	// ErrRefresh matches every *RefreshError.
	ErrRefresh = errors.New("refresh failed")
	// ErrNoDataAvailable is returned before the first successful load.
	ErrNoDataAvailable = errors.New("no data available")
	// ErrNotFound is returned by FindByName when no team matches.
	ErrNotFound = errors.New("team not found")
	// ErrInvalidGender is returned for a gender filter other than men/women.
	ErrInvalidGender = errors.New("invalid gender filter")
)

// RefreshError reports that both the primary provider and the fallback source
// failed. It unwraps to ErrRefresh and to the primary cause.
type RefreshError struct {
	Provider source.Provider
	Primary  error
	Fallback error
}

func (e *RefreshError) Error() string {
	if e.Fallback == nil {
		return fmt.Sprintf("refresh from %s failed: %v", e.Provider, e.Primary)
	}
	return fmt.Sprintf("refresh from %s failed: %v (fallback: %v)", e.Provider, e.Primary, e.Fallback)
}

func (e *RefreshError) Unwrap() []error {
	return []error{ErrRefresh, e.Primary}
}
