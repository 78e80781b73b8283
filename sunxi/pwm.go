package sunxi

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/physic"
)

const (
	PWM_PHYS       = uintptr(0x01c21000) // page holding the PWM controller at 0x01c21400
	PWM_SIZE       = 0x1000
	PWM_CH_CTRL    = uintptr(0x400) // PWM control register
	PWM_CH0_PERIOD = uintptr(0x404) // PWM channel 0 period register

	// Written to the enable field: SCLK_CH0_GATING | PWM_CH0_ACT_STA | PWM_CH0_EN
	PWM_CH0_ENABLE = 0x7
)

var (
	pwmPrescalerField = field{offset: PWM_CH_CTRL, shift: 0, width: 4}
	pwmEnableField    = field{offset: PWM_CH_CTRL, shift: 4, width: 3}
	pwmPeriodField    = field{offset: PWM_CH0_PERIOD, shift: 16, width: 16}
	pwmDutyField      = field{offset: PWM_CH0_PERIOD, shift: 0, width: 16}
)

type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// PWM drives PWM channel 0, output on PA5.
//
// Every hardware access maps the register block it needs through mem and
// unmaps it again afterwards. Nothing coordinates with other processes that
// map the same registers.
type PWM struct {
	mem       Mem
	freq      uint32
	prescaler Prescaler
	period    uint32 // ticks per cycle
	dutyPct   uint32
	duty      uint32 // ticks high per cycle, <= period
	state     State
}

// NewPWM computes the timing for freq and programs the prescaler. The output
// is left untouched; call Run or Stop to change it.
func NewPWM(mem Mem, freq uint32) (*PWM, error) {
	pw := &PWM{
		mem:   mem,
		state: Stopped,
	}
	err := pw.setFrequency(freq)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// setFrequency selects the timing for freq and writes the prescaler. The new
// timing is only recorded once the prescaler write has succeeded.
func (pw *PWM) setFrequency(freq uint32) error {
	p, period, err := SelectPrescaler(freq)
	if err != nil {
		return fmt.Errorf("couldn't select prescaler: %w", err)
	}
	err = pw.configurePrescaler(p)
	if err != nil {
		return err
	}
	pw.freq = freq
	pw.prescaler = p
	pw.period = period
	pw.duty = DutyTicks(period, pw.dutyPct)
	log.Printf("%d Hz: prescaler %v, period %d ticks, output %v", freq, p, period, pw.Frequency())
	return nil
}

func (pw *PWM) configurePrescaler(p Prescaler) error {
	return pw.withWindow(PWM_PHYS, PWM_SIZE, func(w Window) error {
		pwmPrescalerField.set(w, uint32(p))
		return nil
	})
}

// Reset switches to a new frequency. The duty percentage is kept and, if the
// PWM is running, the new timing is applied to the output straight away.
func (pw *PWM) Reset(freq uint32) error {
	err := pw.setFrequency(freq)
	if err != nil {
		return err
	}
	return pw.refresh()
}

// SetDuty sets the duty cycle in percent and, if running, applies it.
func (pw *PWM) SetDuty(pct uint32) error {
	if pct > 100 {
		return fmt.Errorf("%d%%: %w", pct, ErrDutyRange)
	}
	pw.dutyPct = pct
	pw.duty = DutyTicks(pw.period, pct)
	return pw.refresh()
}

// refresh re-runs the output if it is running, so that changed parameters reach the hardware.
func (pw *PWM) refresh() error {
	if pw.state != Running {
		return nil
	}
	return pw.Run()
}

// Run muxes PA5 to the PWM, enables channel 0 and programs its period and
// duty. Calling it again while running just reprograms the same registers.
func (pw *PWM) Run() error {
	if pw.period > maxPeriodTicks {
		return fmt.Errorf("%d Hz gives %d ticks: %w", pw.freq, pw.period, ErrPeriodRange)
	}
	err := pw.withWindow(PIO_PHYS, PIO_SIZE, func(w Window) error {
		return gpioSetPinFunction(w, pwmPin, PinPWM0)
	})
	if err != nil {
		return fmt.Errorf("couldn't set PA%d to PWM: %w", pwmPin, err)
	}
	err = pw.withWindow(PWM_PHYS, PWM_SIZE, func(w Window) error {
		pwmEnableField.set(w, PWM_CH0_ENABLE)
		rmw(w, PWM_CH0_PERIOD, func(word uint32) uint32 {
			word = pwmPeriodField.insert(word, pw.period)
			return pwmDutyField.insert(word, pw.duty)
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("couldn't enable PWM: %w", err)
	}
	pw.state = Running
	log.Printf("PWM running, period %d, duty %d (%d%%)", pw.period, pw.duty, pw.dutyPct)
	return nil
}

// Stop returns PA5 to a GPIO output driven low and disables channel 0.
func (pw *PWM) Stop() error {
	err := pw.withWindow(PIO_PHYS, PIO_SIZE, func(w Window) error {
		err := gpioSetPinFunction(w, pwmPin, PinOutput)
		if err != nil {
			return err
		}
		return gpioSetPin(w, pwmPin, false)
	})
	if err != nil {
		return fmt.Errorf("couldn't set PA%d low: %w", pwmPin, err)
	}
	err = pw.withWindow(PWM_PHYS, PWM_SIZE, func(w Window) error {
		pwmEnableField.set(w, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("couldn't disable PWM: %w", err)
	}
	pw.state = Stopped
	log.Printf("PWM stopped")
	return nil
}

// withWindow maps size bytes at physAddr for the duration of fn.
func (pw *PWM) withWindow(physAddr uintptr, size int, fn func(w Window) error) error {
	r, err := pw.mem.Map(physAddr, size)
	if err != nil {
		return fmt.Errorf("couldn't map %08X: %w", physAddr, err)
	}
	err = fn(r)
	te := r.Close()
	if err == nil {
		err = te
	}
	return err
}

func (pw *PWM) State() State {
	return pw.state
}

func (pw *PWM) Running() bool {
	return pw.state == Running
}

func (pw *PWM) Prescaler() Prescaler {
	return pw.prescaler
}

func (pw *PWM) PeriodTicks() uint32 {
	return pw.period
}

func (pw *PWM) DutyTicks() uint32 {
	return pw.duty
}

func (pw *PWM) DutyPercent() uint32 {
	return pw.dutyPct
}

// Frequency returns the frequency the hardware generates, which can differ
// from the requested one because the period is a whole number of ticks.
func (pw *PWM) Frequency() physic.Frequency {
	return OutputFrequency(pw.prescaler, pw.period)
}

// RequestedFrequency returns the frequency passed to NewPWM or Reset, in Hz.
func (pw *PWM) RequestedFrequency() uint32 {
	return pw.freq
}
