package fileset

import (
	"os"
)

// OutOfDate reports whether any of outputs is missing or older than the
// newest file matched by the input patterns.
func OutOfDate(outputs []string, inputs []string) (bool, error) {
	var minOutputTime int64 = -1
	for _, o := range outputs {
		st, err := os.Stat(o)
		if err != nil {
			return true, nil
		}
		t := st.ModTime().UnixNano()
		if minOutputTime == -1 || t < minOutputTime {
			minOutputTime = t
		}
	}

	var maxInputTime int64
	for _, pattern := range inputs {
		matches, err := Glob(pattern)
		if err != nil {
			return false, err
		}
		for _, m := range matches {
			st, err := os.Stat(m)
			if err != nil {
				return false, err
			}
			if t := st.ModTime().UnixNano(); t > maxInputTime {
				maxInputTime = t
			}
		}
	}

	return maxInputTime > minOutputTime, nil
}
