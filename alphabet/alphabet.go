/*
Package alphabet provides a generic symbol-set encoder used to validate
sequence characters against a fixed set of accepted symbols.
*/
package alphabet

import "fmt"

// Alphabet holds a list of symbols and a map of symbols to their index in
// the list.
type Alphabet struct {
	symbols  []string
	encoding map[interface{}]uint8
}

// NewAlphabet creates a new alphabet from a list of symbols.
func NewAlphabet(symbols []string) *Alphabet {
	encoding := make(map[interface{}]uint8)
	for index, symbol := range symbols {
		encoding[symbol] = uint8(index)
		encoding[index] = uint8(index)
	}
	return &Alphabet{symbols, encoding}
}

// Encode returns the index of a symbol in the alphabet.
func (alphabet *Alphabet) Encode(symbol interface{}) (uint8, error) {
	c, ok := alphabet.encoding[symbol]
	if !ok {
		return 0, fmt.Errorf("symbol %v not in alphabet", symbol)
	}
	return c, nil
}

// Check returns the index of the first character in seq that is not a
// member of the alphabet, or -1 if every character is valid.
func (alphabet *Alphabet) Check(seq string) int {
	for i, r := range seq {
		if _, err := alphabet.Encode(string(r)); err != nil {
			return i
		}
	}
	return -1
}
