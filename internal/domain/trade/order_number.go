package trade

import (
	"crypto/rand"
	"io"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// DefaultOrderNumberPrefix is used when no prefix is configured
const DefaultOrderNumberPrefix = "LAT"

const (
	orderSuffixLength   = 4
	orderSuffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// OrderNumberGenerator builds PREFIX-<base36 ms>-<4 random chars> numbers.
// Uniqueness is enforced by the order store, not here.
type OrderNumberGenerator struct {
	prefix string
	now    func() time.Time
	random io.Reader
}

// OrderNumberOption configures an OrderNumberGenerator
type OrderNumberOption func(*OrderNumberGenerator)

// WithClock overrides the time source
func WithClock(now func() time.Time) OrderNumberOption {
	return func(g *OrderNumberGenerator) {
		g.now = now
	}
}

// WithRandom overrides the random source used for the suffix
func WithRandom(r io.Reader) OrderNumberOption {
	return func(g *OrderNumberGenerator) {
		g.random = r
	}
}

// NewOrderNumberGenerator creates a generator. An empty prefix falls back to
// DefaultOrderNumberPrefix.
func NewOrderNumberGenerator(prefix string, opts ...OrderNumberOption) *OrderNumberGenerator {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = DefaultOrderNumberPrefix
	}
	g := &OrderNumberGenerator{
		prefix: prefix,
		now:    time.Now,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a new candidate order number
func (g *OrderNumberGenerator) Generate() (string, error) {
	ts := strings.ToUpper(strconv.FormatInt(g.now().UnixMilli(), 36))

	var suffix [orderSuffixLength]byte
	max := big.NewInt(int64(len(orderSuffixAlphabet)))
	for i := range suffix {
		n, err := rand.Int(g.random, max)
		if err != nil {
			return "", err
		}
		suffix[i] = orderSuffixAlphabet[n.Int64()]
	}
	return g.prefix + "-" + ts + "-" + string(suffix[:]), nil
}
