// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnknownSignal is returned by ParseSignal for names it does not know.
var ErrUnknownSignal = errors.New("unknown signal")

// ParseSignal returns the signal named name ("SIGTERM"; the "SIG" prefix
// and case are optional).
func ParseSignal(name string) (os.Signal, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if !strings.HasPrefix(key, "SIG") {
		key = "SIG" + key
	}
	sig, ok := signalTable[key]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSignal, name)
	}
	return sig, nil
}

// ParseSignals parses every name, reporting the first unknown one.
func ParseSignals(names []string) ([]os.Signal, error) {
	out := make([]os.Signal, 0, len(names))
	for _, n := range names {
		sig, err := ParseSignal(n)
		if err != nil {
			return nil, err
		}
		out = append(out, sig)
	}
	return out, nil
}
