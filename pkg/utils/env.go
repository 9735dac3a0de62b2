package utils

import (
	"fmt"
	log "github.com/sirupsen/logrus"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// ParseEnvConfigList returns the value of prefix (index -1) and of all indexed
// variants prefix_0, prefix_1, ...
func ParseEnvConfigList(prefix string) map[int]string {
	ret := make(map[int]string)

	r := regexp.MustCompile(fmt.Sprintf(`^%s(_(\d+))?$`, regexp.QuoteMeta(prefix)))

	for _, e := range os.Environ() {
		eq := strings.Index(e, "=")
		if eq == -1 {
			log.Panicf("unexpected env var %s", e)
		}
		n := e[:eq]
		v := e[eq+1:]

		m := r.FindStringSubmatch(n)
		if m == nil {
			continue
		}
		idx := -1
		if m[2] != "" {
			x, _ := strconv.ParseInt(m[2], 10, 32)
			idx = int(x)
		}
		ret[idx] = v
	}
	return ret
}

// SortedEnvConfigList returns the values from ParseEnvConfigList ordered by index.
func SortedEnvConfigList(prefix string) []string {
	m := ParseEnvConfigList(prefix)
	if len(m) == 0 {
		return nil
	}
	maxIdx := -1
	for i := range m {
		if i > maxIdx {
			maxIdx = i
		}
	}
	var ret []string
	for i := -1; i <= maxIdx; i++ {
		if v, ok := m[i]; ok {
			ret = append(ret, v)
		}
	}
	return ret
}
