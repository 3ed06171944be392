package crpt

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"crpt-gateway/client/crpt/application"
	"crpt-gateway/client/crpt/domain"

	"github.com/hashicorp/go-hclog"
)

// ParticipantHeader identifica o participante (INN) que chama o relay.
const ParticipantHeader = "X-Participant-Inn"

type KeyFunc func(r *http.Request) string

type CallerLimitOptions struct {
	Store               domain.LimiterStore
	KeyFn               KeyFunc
	KeyHeader           string
	TrustXForwardedFor  bool
	RejectStatus        int
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
	Logger              hclog.Logger
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

// DefaultKeyFunc usa o header do participante; sem ele, o IP do cliente.
func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	if keyHeader == "" {
		keyHeader = ParticipantHeader
	}
	return func(r *http.Request) string {
		if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
			return "inn:" + v
		}
		return "ip:" + clientIP(r, trustXFF)
	}
}

func clientIP(r *http.Request, trustXFF bool) string {
	if trustXFF {
		// primeiro IP do X-Forwarded-For (cliente original)
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}

	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	if addr != "" {
		return addr
	}
	return "unknown"
}

// CallerLimit aplica um token bucket por chamador antes do relay.
// Bloqueado: 429 + Retry-After (segundos, arredondado para baixo).
func CallerLimit(opts CallerLimitOptions) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.RetryAfter == 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	svc := application.CallerLimitService{
		Store:      opts.Store,
		RetryAfter: opts.RetryAfter,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Key", key)
				if ri, ok := opts.Store.(rateInfo); ok {
					w.Header().Set("X-RateLimit-RPS", strconv.FormatFloat(ri.RPS(), 'f', -1, 64))
					w.Header().Set("X-RateLimit-Burst", strconv.Itoa(ri.Burst()))
				}
			}

			dec := svc.Decide(domain.Key(key))
			if !dec.Allowed {
				opts.Logger.Debug("caller throttled", "key", key)
				w.Header().Set("Retry-After", strconv.Itoa(int(dec.RetryAfter.Seconds())))
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
