package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig lets browser front-ends call the API. An empty AllowedOrigins
// list disables CORS headers entirely.
type CORSConfig struct {
	// AllowedOrigins holds exact origins, "*", or one-level wildcards such
	// as "https://*.example.com".
	AllowedOrigins   []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials" mapstructure:"allow_credentials"`
	// MaxAge is the preflight cache lifetime in seconds. Zero omits the header.
	MaxAge int `yaml:"max_age" mapstructure:"max_age" validate:"gte=0"`
}

// CORS echoes an allowed Origin back and answers preflight requests with
// 204. X-Request-Id is exposed so browser clients can quote it.
func CORS(cfg *CORSConfig) Middleware {
	if cfg == nil {
		cfg = &CORSConfig{}
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := ""
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(cfg.MaxAge)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !originAllowed(origin, cfg.AllowedOrigins) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Expose-Headers", HeaderRequestID)
			setIf(h, "Access-Control-Allow-Methods", methods)
			setIf(h, "Access-Control-Allow-Headers", headers)
			setIf(h, "Access-Control-Max-Age", maxAge)
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func setIf(h http.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
		if scheme, host, ok := strings.Cut(a, "://*."); ok {
			if rest, found := strings.CutPrefix(origin, scheme+"://"); found &&
				strings.HasSuffix(rest, "."+host) && !strings.Contains(strings.TrimSuffix(rest, "."+host), ".") {
				return true
			}
		}
	}
	return false
}
