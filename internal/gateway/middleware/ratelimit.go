package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"vastra-system/config"
)

// RateLimit throttles a route group. The format is limiter's, e.g. "60-M"
// for sixty requests per minute per client IP. Counters live in process
// memory; limits are per instance, not cluster-wide.
func RateLimit(formatted string) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		config.GetLogger().WithField("rate", formatted).
			Fatal("invalid rate limit format")
	}

	store := memory.NewStore()
	return mgin.NewMiddleware(limiter.New(store, rate))
}
