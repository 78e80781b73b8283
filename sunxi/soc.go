package sunxi

import (
	"bytes"
	"errors"
	"fmt"
	"os"
)

const COMPATIBLE_FILE = "/proc/device-tree/compatible"

var ErrUnsupportedSoC = errors.New("unsupported SoC")

type SoC struct {
	Compatible string
	Name       string
}

// Chips with the PWM controller at 0x01c21400 and PWM0 on PA5. Older sunxi
// parts (A10, A13, A20) put the PWM at 0x01c20e00 on PB2 and are rejected.
var sunxiVariants = map[string]SoC{
	"allwinner,sun8i-h2-plus": {
		Compatible: "allwinner,sun8i-h2-plus",
		Name:       "Allwinner H2+",
	},
	"allwinner,sun8i-h3": {
		Compatible: "allwinner,sun8i-h3",
		Name:       "Allwinner H3",
	},
}

// DetectSoC identifies the SoC we're running on from the device tree.
func DetectSoC() (*SoC, error) {
	b, err := os.ReadFile(COMPATIBLE_FILE)
	if err != nil {
		return nil, fmt.Errorf("couldn't read %s: %w", COMPATIBLE_FILE, err)
	}
	return parseCompatible(b)
}

// parseCompatible matches a NUL-separated device tree compatible list. The
// board comes first and the SoC later, so every entry is tried.
func parseCompatible(b []byte) (*SoC, error) {
	for _, c := range bytes.Split(b, []byte{0}) {
		if s, ok := sunxiVariants[string(c)]; ok {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedSoC, bytes.TrimRight(b, "\x00"))
}
