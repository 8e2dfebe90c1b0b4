package agent

import (
	"crypto/sha256"
	"fmt"
)

// actionSignature computes a deterministic signature for an executed action
// (name + hash of its canonical arguments).
func actionSignature(name, canonicalArgs string) string {
	h := sha256.Sum256([]byte(canonicalArgs))
	return fmt.Sprintf("%s:%x", name, h[:8])
}

// detectActionLoop checks whether the last windowSize action signatures
// follow a repeating pattern of length 1, 2, or 3. The loop injects a
// steering observation when this fires so the model breaks out of the cycle
// instead of burning the step budget.
func detectActionLoop(sigs []string, windowSize int) bool {
	if windowSize <= 0 || len(sigs) < windowSize {
		return false
	}
	recent := sigs[len(sigs)-windowSize:]

	for patternLen := 1; patternLen <= 3; patternLen++ {
		if windowSize%patternLen != 0 {
			continue
		}
		pattern := recent[:patternLen]
		allMatch := true
		for i := patternLen; i < windowSize && allMatch; i += patternLen {
			for j := 0; j < patternLen; j++ {
				if recent[i+j] != pattern[j] {
					allMatch = false
					break
				}
			}
		}
		if allMatch {
			return true
		}
	}
	return false
}
