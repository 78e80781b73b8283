package sunxi

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestSelectPrescaler(t *testing.T) {
	tests := []struct {
		freq       uint32
		wantP      Prescaler
		wantPeriod uint32
	}{
		{1, Prescaler72k, 333},
		{50, Prescaler480, 1000},
		{100, Prescaler480, 500},
		{1000, Prescaler120, 200}, // exactly 200 ticks at /120
		{1001, PrescalerDiv1, 23976},
		{200000, PrescalerDiv1, 120},
		{1000000, PrescalerDiv1, 24},
		{10000000, PrescalerDiv1, 2},
		{BaseClock, PrescalerDiv1, 1},
	}

	for _, test := range tests {
		p, period, err := SelectPrescaler(test.freq)
		if err != nil {
			t.Errorf("%d Hz: unexpected error %v", test.freq, err)
			continue
		}
		if p != test.wantP {
			t.Errorf("%d Hz: wrong prescaler, got: %v, want: %v", test.freq, p, test.wantP)
		}
		if period != test.wantPeriod {
			t.Errorf("%d Hz: wrong period, got: %d, want: %d", test.freq, period, test.wantPeriod)
		}
	}
}

func TestSelectPrescalerErrors(t *testing.T) {
	tests := []struct {
		freq uint32
		want error
	}{
		{0, ErrZeroFrequency},
		{BaseClock + 1, ErrFrequencyRange},
		{4000000000, ErrFrequencyRange},
	}

	for _, test := range tests {
		if _, _, err := SelectPrescaler(test.freq); !errors.Is(err, test.want) {
			t.Errorf("%d Hz: got: %v, want: %v", test.freq, err, test.want)
		}
	}
}

// TestSelectPrescalerSweep checks every frequency up to 1 MHz against a
// brute force search over all candidates.
func TestSelectPrescalerSweep(t *testing.T) {
	for f := uint32(1); f <= 1000000; f++ {
		p, period, err := SelectPrescaler(f)
		if err != nil {
			t.Fatalf("%d Hz: unexpected error %v", f, err)
		}
		div := p.Divider()
		if div == 0 {
			t.Fatalf("%d Hz: selected reserved prescaler %v", f, p)
		}
		if period != BaseClock/div/f || period < 1 {
			t.Fatalf("%d Hz: bad period %d for %v", f, period, p)
		}

		bestScore := int64(-1)
		for _, c := range prescalers {
			score := int64(BaseClock/c.div/f) - minPeriodTicks
			if score >= 0 && (bestScore < 0 || score < bestScore) {
				bestScore = score
			}
		}
		if bestScore < 0 {
			if p != PrescalerDiv1 {
				t.Fatalf("%d Hz: no eligible prescaler, got: %v, want fallback %v", f, p, PrescalerDiv1)
			}
			continue
		}
		if got := int64(period) - minPeriodTicks; got != bestScore {
			t.Fatalf("%d Hz: %v scores %d, best eligible score is %d", f, p, got, bestScore)
		}
		if period > maxPeriodTicks {
			t.Fatalf("%d Hz: period %d overflows the period field", f, period)
		}
	}
}

func TestPrescalerDivider(t *testing.T) {
	want := map[Prescaler]uint32{
		0x0: 120, 0x1: 180, 0x2: 240, 0x3: 360, 0x4: 480,
		0x8: 12000, 0x9: 24000, 0xa: 36000, 0xb: 48000, 0xc: 72000,
		0xf: 1,
	}
	for p := Prescaler(0); p < 16; p++ {
		if got := p.Divider(); got != want[p] {
			t.Errorf("%v: wrong divider, got: %d, want: %d", p, got, want[p])
		}
		if _, ok := want[p]; p.Valid() != ok {
			t.Errorf("%v: Valid() got: %v, want: %v", p, p.Valid(), ok)
		}
	}
}

func TestDutyTicks(t *testing.T) {
	tests := []struct {
		period uint32
		pct    uint32
		want   uint32
	}{
		{200, 50, 100},
		{200, 0, 0},
		{200, 100, 200},
		{333, 33, 109},
		{2, 50, 1},
		{2, 49, 0},
		{65535, 99, 64879},
	}

	for _, test := range tests {
		got := DutyTicks(test.period, test.pct)
		if got != test.want {
			t.Errorf("DutyTicks(%d, %d) got: %d, want: %d", test.period, test.pct, got, test.want)
		}
		if got > test.period {
			t.Errorf("DutyTicks(%d, %d) = %d exceeds period", test.period, test.pct, got)
		}
	}
}

func TestOutputFrequency(t *testing.T) {
	tests := []struct {
		p      Prescaler
		period uint32
		want   physic.Frequency
	}{
		{Prescaler120, 200, 1000 * physic.Hertz},
		{Prescaler480, 1000, 50 * physic.Hertz},
		{PrescalerDiv1, 2, 12 * physic.MegaHertz},
		{PrescalerDiv1, 23976, BaseClock * physic.Hertz / 23976},
		{Prescaler(0x5), 200, 0},
		{Prescaler120, 0, 0},
	}

	for _, test := range tests {
		if got := OutputFrequency(test.p, test.period); got != test.want {
			t.Errorf("OutputFrequency(%v, %d) got: %v, want: %v", test.p, test.period, got, test.want)
		}
	}
}
