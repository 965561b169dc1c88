package tokens

import (
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"
)

const defaultEncoding = "o200k_base"

// Counter estimates prompt token counts with a tiktoken encoding.
// The encoding is fetched in the background; until it is ready, or when it cannot be
// loaded (offline hosts), Count falls back to a rune-based estimate of one token per
// four characters. Count never waits on the fetch.
type Counter struct {
	encoding string
	log      *zerolog.Logger
	load     func(string) (*tiktoken.Tiktoken, error)

	once  sync.Once
	ready chan struct{}
	enc   atomic.Pointer[tiktoken.Tiktoken]
}

func NewCounter(encoding string, log *zerolog.Logger) *Counter {
	if encoding == "" {
		encoding = defaultEncoding
	}
	return &Counter{
		encoding: encoding,
		log:      log,
		load:     tiktoken.GetEncoding,
		ready:    make(chan struct{}),
	}
}

// Load starts fetching the encoding once and returns a channel closed when the
// attempt finishes, successful or not.
func (c *Counter) Load() <-chan struct{} {
	c.once.Do(func() {
		go func() {
			defer close(c.ready)
			enc, err := c.load(c.encoding)
			if err != nil {
				c.log.Warn().Err(err).Str("encoding", c.encoding).Msg("tiktoken unavailable, using rough token estimate")
				return
			}
			c.enc.Store(enc)
			c.log.Debug().Str("encoding", c.encoding).Msg("tiktoken encoding loaded")
		}()
	})
	return c.ready
}

// Count returns the estimated token count of text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	c.Load()
	if enc := c.enc.Load(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return Estimate(text)
}

// Estimate is the offline fallback: ceil(runes / 4).
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
