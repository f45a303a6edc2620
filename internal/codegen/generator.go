package codegen

import (
	"errors"
	"math/rand"
	"time"
)

// Character classes for coupon codes. Visually ambiguous characters (I, O,
// i, l, o, 0, 1) are excluded so codes survive being read off a printed QR
// sheet or typed from a phone.
const (
	uppercase = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowercase = "abcdefghjkmnpqrstuvwxyz"
	digits    = "23456789"
	special   = "@#$%&*!"

	allChars = uppercase + lowercase + digits + special

	// CodeLength is the fixed length of every generated code.
	CodeLength = 10

	// maxAttempts caps rejection sampling against the existing-code set.
	maxAttempts = 10000
)

// ErrExhausted is returned when no unique code could be produced within the
// retry ceiling.
var ErrExhausted = errors.New("codegen: unable to generate unique code after maximum attempts")

// Generator produces unique coupon codes. It is not safe for concurrent use;
// each generation workflow owns its own Generator.
type Generator struct {
	rng *rand.Rand
}

// New returns a Generator seeded from the wall clock.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator. Tests use this to force
// collisions and replay sequences.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate returns a fresh code absent from existing. Codes are 10
// characters, contain at least one character from each of the four classes,
// and are shuffled so class positions are unpredictable. Uniqueness is by
// rejection sampling; exceeding the retry ceiling returns ErrExhausted and
// the caller must abort its batch.
//
// The randomness source is deliberately not cryptographic: guessing
// resistance only has to hold against the expected coupon population (tens
// to low thousands of codes in a 10^17+ space).
func (g *Generator) Generate(existing map[string]struct{}) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := g.candidate()
		if _, taken := existing[code]; !taken {
			return code, nil
		}
	}
	return "", ErrExhausted
}

func (g *Generator) candidate() string {
	buf := make([]byte, 0, CodeLength)

	// One guaranteed slot per class.
	buf = append(buf, uppercase[g.rng.Intn(len(uppercase))])
	buf = append(buf, lowercase[g.rng.Intn(len(lowercase))])
	buf = append(buf, digits[g.rng.Intn(len(digits))])
	buf = append(buf, special[g.rng.Intn(len(special))])

	for i := len(buf); i < CodeLength; i++ {
		buf = append(buf, allChars[g.rng.Intn(len(allChars))])
	}

	g.rng.Shuffle(len(buf), func(i, j int) {
		buf[i], buf[j] = buf[j], buf[i]
	})

	return string(buf)
}
