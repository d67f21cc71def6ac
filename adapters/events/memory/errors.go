package memory

import "fmt"

// ErrNotFound reports a consume on a queue that was never declared.
func ErrNotFound(queue string) error {
	return fmt.Errorf("NOT_FOUND - no queue '%s'", queue)
}
