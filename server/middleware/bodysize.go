package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

const defaultMaxBodySize = 26 << 20

// sizeUnits is checked in order so "MB" wins over "B".
var sizeUnits = []struct {
	suffix string
	factor int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// BodySizeLimit caps request bodies at maxSize ("26MB", "512KB"). Reading
// past the cap fails with *http.MaxBytesError, which the upload handler
// reports as FILE_TOO_LARGE.
func BodySizeLimit(maxSize string) Middleware {
	limit := ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// ParseSize converts "10MB", "512kb" or "2048" to bytes. Units are binary.
// Anything unparsable or not positive yields def.
func ParseSize(s string, def int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	factor := int64(1)
	for _, u := range sizeUnits {
		if strings.HasSuffix(s, u.suffix) {
			s, factor = strings.TrimSpace(strings.TrimSuffix(s, u.suffix)), u.factor
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n * factor
}
