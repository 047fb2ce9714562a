package namegen

const (
	// StartSentinel is the reserved character that pads the beginning of a
	// name during training. A state of all start sentinels marks the start
	// of a chain.
	StartSentinel = '^'
	// EndSentinel is the reserved character appended to a name during
	// training. Sampling it terminates a chain.
	EndSentinel = '$'
)

// StateTable maps a state (a window of exactly windowWidth characters) to
// the ordered sequence of successor characters observed after it. A
// character appearing k times in a sequence of length n has probability
// k/n of being sampled, so the sequence itself is the frequency
// distribution and its order must be preserved.
//
// Keys are only ever written through addTransitions and Import, both of
// which guarantee the fixed key width and that no key holds an empty
// successor list.
type StateTable map[string][]string

// addTransitions slides a width-sized window across the padded form of a
// normalized name and appends each observed successor to the table. The
// name must already be trimmed and lowercased.
func addTransitions(t StateTable, name string, width int) {
	runes := []rune(name)
	padded := make([]rune, 0, width+len(runes)+1)
	for i := 0; i < width; i++ {
		padded = append(padded, StartSentinel)
	}
	padded = append(padded, runes...)
	padded = append(padded, EndSentinel)

	for i := 0; i+width < len(padded); i++ {
		state := string(padded[i : i+width])
		t[state] = append(t[state], string(padded[i+width]))
	}
}
