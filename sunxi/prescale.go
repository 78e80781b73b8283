package sunxi

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/physic"
)

const (
	BaseClock = 24000000 // OSC24M, feeds the PWM prescaler

	// minPeriodTicks is the smallest period we accept when choosing a
	// prescaler, so that duty has at least percent granularity.
	minPeriodTicks = 200
	maxPeriodTicks = 0xffff
)

// Prescaler is the 4-bit PWM_CH0_PRESCAL selector of the PWM control register.
type Prescaler uint32

const (
	Prescaler120  Prescaler = 0x0
	Prescaler180  Prescaler = 0x1
	Prescaler240  Prescaler = 0x2
	Prescaler360  Prescaler = 0x3
	Prescaler480  Prescaler = 0x4
	Prescaler12k  Prescaler = 0x8
	Prescaler24k  Prescaler = 0x9
	Prescaler36k  Prescaler = 0xa
	Prescaler48k  Prescaler = 0xb
	Prescaler72k  Prescaler = 0xc
	PrescalerDiv1 Prescaler = 0xf
)

// prescalers lists the selectors the datasheet defines, in ascending divider
// order. SelectPrescaler walks it in this order, so on equal scores the
// smaller divider wins.
var prescalers = []struct {
	p   Prescaler
	div uint32
}{
	{PrescalerDiv1, 1},
	{Prescaler120, 120},
	{Prescaler180, 180},
	{Prescaler240, 240},
	{Prescaler360, 360},
	{Prescaler480, 480},
	{Prescaler12k, 12000},
	{Prescaler24k, 24000},
	{Prescaler36k, 36000},
	{Prescaler48k, 48000},
	{Prescaler72k, 72000},
}

var (
	ErrZeroFrequency  = errors.New("frequency must be greater than 0")
	ErrFrequencyRange = fmt.Errorf("frequency must not exceed %d Hz", BaseClock)
	ErrDutyRange      = errors.New("duty must be between 0 and 100")
	ErrPeriodRange    = fmt.Errorf("period doesn't fit in %d ticks", maxPeriodTicks)
)

// Divider returns the clock divider p selects, or 0 if p is reserved.
func (p Prescaler) Divider() uint32 {
	for _, c := range prescalers {
		if c.p == p {
			return c.div
		}
	}
	return 0
}

func (p Prescaler) Valid() bool {
	return p.Divider() != 0
}

func (p Prescaler) String() string {
	if !p.Valid() {
		return fmt.Sprintf("%04b (reserved)", uint32(p))
	}
	return fmt.Sprintf("%04b (/%d)", uint32(p), p.Divider())
}

// SelectPrescaler picks the prescaler for freq whose period comes closest to,
// without going below, minPeriodTicks, and returns it with the resulting
// period in ticks. If no divider gives that many ticks, it falls back to
// PrescalerDiv1.
func SelectPrescaler(freq uint32) (Prescaler, uint32, error) {
	if freq == 0 {
		return 0, 0, ErrZeroFrequency
	}
	best := PrescalerDiv1
	found := false
	var bestScore uint32
	for _, c := range prescalers {
		ticks := BaseClock / c.div / freq
		if ticks < minPeriodTicks {
			continue
		}
		score := ticks - minPeriodTicks
		if !found || score < bestScore {
			best, bestScore, found = c.p, score, true
		}
	}
	period := BaseClock / best.Divider() / freq
	if period == 0 {
		return 0, 0, fmt.Errorf("%d Hz: %w", freq, ErrFrequencyRange)
	}
	return best, period, nil
}

// DutyTicks converts a duty percentage into ticks of a period.
func DutyTicks(period, pct uint32) uint32 {
	return uint32(uint64(period) * uint64(pct) / 100)
}

// OutputFrequency is the frequency the hardware actually generates for p and period.
func OutputFrequency(p Prescaler, period uint32) physic.Frequency {
	div := p.Divider()
	if div == 0 || period == 0 {
		return 0
	}
	return physic.Frequency(BaseClock) * physic.Hertz / physic.Frequency(uint64(div)*uint64(period))
}
