package gatherer

import (
	"fmt"
	"strconv"
	"strings"
)

// Gatherer image alt texts, with their symbol
var symbolNames = map[string]string{
	"White":              "W",
	"Blue":               "U",
	"Black":              "B",
	"Red":                "R",
	"Green":              "G",
	"Colorless":          "C",
	"Variable Colorless": "X",
	"Snow":               "S",
	"Tap":                "T",
	"Untap":              "Q",
	"Energy":             "E",
	"Two":                "2",
	"Infinite":           "INF",
	"Half a White":       "HW",
	"Half a Red":         "HR",
}

// parseSymbol converts the alt text of a mana symbol image (e.g. "Green",
// "White or Blue", "Phyrexian Red") to its symbol (G, W/U, R/P).
func parseSymbol(alt string) (string, error) {
	alt = strings.TrimSpace(alt)

	if symbol, found := symbolNames[alt]; found {
		return symbol, nil
	}

	if _, err := strconv.Atoi(alt); err == nil {
		return alt, nil
	}

	if name := strings.TrimPrefix(alt, "Phyrexian "); name != alt {
		symbol, err := parseSymbol(name)
		if err != nil {
			return "", err
		}
		return symbol + "/P", nil
	}

	if parts := strings.Split(alt, " or "); len(parts) == 2 {
		left, err := parseSymbol(parts[0])
		if err != nil {
			return "", err
		}
		right, err := parseSymbol(parts[1])
		if err != nil {
			return "", err
		}
		return left + "/" + right, nil
	}

	return "", fmt.Errorf("unknown symbol %q", alt)
}
