package sunxi

import (
	"fmt"
)

const (
	PIO_PHYS    = uintptr(0x01c20000) // page holding the PIO controller at 0x01c20800
	PIO_SIZE    = 0x1000
	PA_CFG0_REG = uintptr(0x800) // Port A configure register 0, pins PA0-PA7
	PA_DAT_REG  = uintptr(0x810) // Port A data register

	pwmPin = 5 // PA5
)

// PinFunction is the 3-bit multiplexer setting of a PIO pin.
type PinFunction uint32

const (
	PinInput  PinFunction = 0
	PinOutput PinFunction = 1
	PinPWM0   PinFunction = 3 // PA5 function 3 on H3
	PinIODis  PinFunction = 7
)

// pinFunctionField returns the configure register field of a port A pin.
// Each CFG register holds eight pins, four bits apart, of which the low three are used.
func pinFunctionField(pin int) (field, error) {
	if pin < 0 || pin > 21 { // PA0-PA21
		return field{}, fmt.Errorf("pin PA%d not supported", pin)
	}
	return field{
		offset: PA_CFG0_REG + uintptr(pin/8)*4,
		shift:  uint(pin%8) * 4,
		width:  3,
	}, nil
}

func pinDataField(pin int) (field, error) {
	if pin < 0 || pin > 21 {
		return field{}, fmt.Errorf("pin PA%d not supported", pin)
	}
	return field{offset: PA_DAT_REG, shift: uint(pin), width: 1}, nil
}

func gpioSetPinFunction(w Window, pin int, fnc PinFunction) error {
	f, err := pinFunctionField(pin)
	if err != nil {
		return err
	}
	f.set(w, uint32(fnc))
	return nil
}

func gpioSetPin(w Window, pin int, high bool) error {
	f, err := pinDataField(pin)
	if err != nil {
		return err
	}
	val := uint32(0)
	if high {
		val = 1
	}
	f.set(w, val)
	return nil
}
