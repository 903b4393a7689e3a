package countdown

import "fmt"

// Format renders a non-negative number of seconds as m:ss.
func Format(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
