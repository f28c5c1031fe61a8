package logging

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Sampler keeps one zerolog.Sampler per key, so that a burst of requests to
// one path does not hide requests to another.
type Sampler struct {
	fn       func() zerolog.Sampler
	samplers map[string]zerolog.Sampler
	mu       sync.Mutex
}

func NewSampler(fn func() zerolog.Sampler) *Sampler {
	return &Sampler{
		fn:       fn,
		samplers: make(map[string]zerolog.Sampler),
	}
}

func (c *Sampler) Get(fields ...string) zerolog.Sampler {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.Join(fields, "-")
	sampler, ok := c.samplers[key]
	if !ok {
		sampler = c.fn()
		c.samplers[key] = sampler
	}

	return sampler
}

// Middleware logs every request handled by the metrics server. Successful
// requests are sampled per method and path, because scrapers poll on a short
// interval.
func Middleware() gin.HandlerFunc {
	sampler := NewSampler(func() zerolog.Sampler {
		return &zerolog.BurstSampler{
			Burst:  1,
			Period: 30 * time.Second,
		}
	})

	return func(c *gin.Context) {
		begin := time.Now()

		c.Next()

		log := L.With().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("remoteAddr", c.Request.RemoteAddr).
			Logger()

		level := zerolog.DebugLevel
		if c.Writer.Status() >= 400 {
			level = zerolog.WarnLevel
		} else {
			log = log.Sample(sampler.Get(c.Request.Method, c.FullPath()))
		}

		log.WithLevel(level).
			Dur("elapsed", time.Since(begin)).
			Int("statusCode", c.Writer.Status()).
			Msg("")
	}
}
