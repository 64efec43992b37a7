package sheets

import "fmt"

// boxLabel renders the box column for a multi-box request, e.g. "1/3"
func boxLabel(no, total int) string {
	if total <= 1 {
		return "1/1"
	}
	return fmt.Sprintf("%d/%d", no, total)
}
