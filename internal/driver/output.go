package driver

import (
	"bufio"
	"io"
)

// WriteModules writes the text of every successful unit in plan order,
// modules separated by a blank line.
func WriteModules(w io.Writer, res *Result) error {
	bw := bufio.NewWriter(w)
	first := true
	for _, u := range res.Units {
		if u.Err != nil || u.Text == "" {
			continue
		}
		if !first {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		first = false
		if _, err := bw.WriteString(u.Text); err != nil {
			return err
		}
	}
	return bw.Flush()
}
