package main

import (
	"errors"
	"flag"
	"math"
)

var memDev = flag.String("mem", "/dev/mem", "The device through which physical memory is mapped")
var force = flag.Bool("force", false, "Drive the registers even if the SoC is known not to be an H3/H2+")

var (
	freq     int
	duty     int
	runFlag  bool
	stopFlag bool
)

func init() {
	flag.IntVar(&freq, "frequency", 1000, "frequency of PWM, in Hz")
	flag.IntVar(&freq, "f", 1000, "shorthand for -frequency")
	flag.IntVar(&duty, "duty", 50, "duty of PWM - percentage value")
	flag.IntVar(&duty, "d", 50, "shorthand for -duty")
	flag.BoolVar(&runFlag, "run", false, "start the PWM")
	flag.BoolVar(&runFlag, "r", false, "shorthand for -run")
	flag.BoolVar(&stopFlag, "stop", false, "stop the PWM")
	flag.BoolVar(&stopFlag, "s", false, "shorthand for -stop")
}

type options struct {
	freq int
	duty int
	run  bool
	stop bool
}

func parsedOptions() options {
	return options{freq, duty, runFlag, stopFlag}
}

var (
	errRunAndStop  = errors.New("Both run and stop are specified")
	errNoRunOrStop = errors.New("Neither run or stop are specified")
	errInvalidFreq = errors.New("Invalid frequency specified")
	errInvalidDuty = errors.New("Invalid duty specified\nexpected: 0<=duty <=100")
)

// validate rejects option combinations that must never reach the hardware.
func (o options) validate() error {
	if o.run && o.stop {
		return errRunAndStop
	}
	if !o.run && !o.stop {
		return errNoRunOrStop
	}
	if o.freq < 0 || int64(o.freq) > math.MaxUint32 {
		return errInvalidFreq
	}
	if o.duty < 0 || o.duty > 100 {
		return errInvalidDuty
	}
	return nil
}
