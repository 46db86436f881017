package services

import "fmt"

// firstFreeShortID returns the lowest unassigned code in "01".."99".
// The scan order makes freed codes reusable. Returns
// ErrShortIDExhausted when all 99 slots are taken.
func firstFreeShortID(used []string) (string, error) {
	taken := make(map[string]bool, len(used))
	for _, id := range used {
		taken[id] = true
	}

	for i := 1; i <= 99; i++ {
		candidate := fmt.Sprintf("%02d", i)
		if !taken[candidate] {
			return candidate, nil
		}
	}

	return "", ErrShortIDExhausted
}
