package namegen

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"unicode"
)

const (
	// DefaultMinLength is the minimum generated length when no option is given.
	DefaultMinLength = 2
	// DefaultMaxLength is the maximum generated length when no option is given.
	DefaultMaxLength = 12
	// DefaultMaxAttempts bounds the retry loop of a single Generate call.
	DefaultMaxAttempts = 50

	// FallbackUnknown is returned when neither the selected category table
	// nor the global table holds any trained data.
	FallbackUnknown = "Unknown"
	// FallbackUnnamed is returned when every attempt produced a name below
	// the minimum length and no prefix was supplied.
	FallbackUnnamed = "Unnamed"

	// fallbackFiller extends the prefix when every attempt came up short.
	fallbackFiller = "ara"
)

var (
	// ErrInvalidLength reports length bounds that are out of range or inverted.
	ErrInvalidLength = errors.New("invalid length bounds")
	// ErrInvalidPrefix reports a prefix that cannot fit within the maximum length.
	ErrInvalidPrefix = errors.New("prefix exceeds maximum length")
	// ErrInvalidCount reports a non-positive count passed to GenerateMany.
	ErrInvalidCount = errors.New("count must be positive")
	// ErrInvalidAttempts reports a non-positive attempt bound.
	ErrInvalidAttempts = errors.New("max attempts must be positive")
)

// generateOptions is used by the generate functions to configure default options.
type generateOptions struct {
	category    string
	prefix      string
	minLength   int
	maxLength   int
	maxAttempts int
}

// GenerateOption is a function that configures generation parameters. It's
// used as a variadic argument in Generate and GenerateMany.
type GenerateOption func(*generateOptions)

// WithCategory selects the category model to sample from. Generation falls
// back to the global model when the category is unknown or empty.
func WithCategory(category string) GenerateOption {
	return func(o *generateOptions) { o.category = category }
}

// WithPrefix requires the generated name to start with the given letters.
// The prefix steers the initial state, so a prefix ending in an untrained
// window can shorten or end the walk early.
func WithPrefix(prefix string) GenerateOption {
	return func(o *generateOptions) { o.prefix = prefix }
}

// WithMinLength sets the minimum acceptable name length in characters.
func WithMinLength(n int) GenerateOption {
	return func(o *generateOptions) { o.minLength = n }
}

// WithMaxLength sets the maximum name length in characters. The walk stops
// extending once this length is reached.
func WithMaxLength(n int) GenerateOption {
	return func(o *generateOptions) { o.maxLength = n }
}

// WithMaxAttempts overrides the bound on the retry loop.
func WithMaxAttempts(n int) GenerateOption {
	return func(o *generateOptions) { o.maxAttempts = n }
}

func (o *generateOptions) validate() error {
	if o.minLength < 1 {
		return fmt.Errorf("%w: min length %d must be at least 1", ErrInvalidLength, o.minLength)
	}
	if o.maxLength < o.minLength {
		return fmt.Errorf("%w: max length %d is below min length %d", ErrInvalidLength, o.maxLength, o.minLength)
	}
	if o.maxAttempts < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidAttempts, o.maxAttempts)
	}
	if n := len([]rune(o.prefix)); n > o.maxLength {
		return fmt.Errorf("%w: prefix %q has %d characters, max length is %d", ErrInvalidPrefix, o.prefix, n, o.maxLength)
	}
	return nil
}

// Generate produces one name by walking randomized state transitions over
// the selected model. It only returns an error for invalid arguments;
// missing training data and exhausted retries resolve to the documented
// fallback strings instead, so a valid call always yields a name.
func (r *Registry) Generate(opts ...GenerateOption) (string, error) {
	options := &generateOptions{
		minLength:   DefaultMinLength,
		maxLength:   DefaultMaxLength,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(options)
	}
	if err := options.validate(); err != nil {
		return "", err
	}

	table := r.tableFor(options.category)
	if len(table) == 0 {
		r.logger.Debug("Generation fell back: no trained data",
			slog.String("category", options.category),
		)
		return FallbackUnknown, nil
	}

	prefix := strings.ToLower(options.prefix)
	for attempt := 0; attempt < options.maxAttempts; attempt++ {
		name := r.walk(table, prefix, options.maxLength)
		if len([]rune(name)) >= options.minLength {
			return capitalize(name), nil
		}
	}

	r.logger.Debug("Generation fell back: attempts exhausted",
		slog.String("category", options.category),
		slog.String("prefix", options.prefix),
		slog.Int("max_attempts", options.maxAttempts),
	)
	if prefix != "" {
		return capitalize(prefix + fallbackFiller), nil
	}
	return FallbackUnnamed, nil
}

// walk performs a single attempt: starting from the prefix (or an all-start
// state), it samples successors until the end sentinel is drawn, the state
// leaves the trained region, or maxLength is reached.
func (r *Registry) walk(table StateTable, prefix string, maxLength int) string {
	out := []rune(prefix)

	state := make([]rune, 0, r.width)
	for i := len(out); i < r.width; i++ {
		state = append(state, StartSentinel)
	}
	if len(out) >= r.width {
		state = append(state, out[len(out)-r.width:]...)
	} else {
		state = append(state, out...)
	}

	for len(out) < maxLength {
		successors, ok := table[string(state)]
		if !ok {
			// Untrained state: an exhausted path ends the attempt, it is
			// not a fault.
			break
		}
		next := successors[rand.IntN(len(successors))]
		if next == string(EndSentinel) {
			break
		}
		nr := []rune(next)[0]
		out = append(out, nr)
		copy(state, state[1:])
		state[r.width-1] = nr
	}
	return string(out)
}

// GenerateMany produces up to count names. When unique is true, duplicate
// outputs are dropped; the total number of attempts is bounded by count*10
// so a small model cannot loop forever, which means fewer than count names
// may be returned.
func (r *Registry) GenerateMany(count int, unique bool, opts ...GenerateOption) ([]string, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}

	names := make([]string, 0, count)
	var seen map[string]struct{}
	if unique {
		seen = make(map[string]struct{}, count)
	}

	maxAttempts := count * 10
	for attempts := 0; len(names) < count && attempts < maxAttempts; attempts++ {
		name, err := r.Generate(opts...)
		if err != nil {
			return nil, err
		}
		if unique {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
		}
		names = append(names, name)
	}
	return names, nil
}

// capitalize returns the display form of a generated name: first character
// upper-cased, everything after it lower-cased.
func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
