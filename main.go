package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Jon-Bright/pwmctl/sunxi"
)

func usageError(err error) {
	flag.Usage()
	fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
	os.Exit(1)
}

// run drives the PWM as o asks, mapping registers through mem. o must have
// passed validate.
func run(o options, mem sunxi.Mem) error {
	pw, err := sunxi.NewPWM(mem, uint32(o.freq))
	if err != nil {
		return fmt.Errorf("couldn't create PWM: %w", err)
	}
	if !o.run {
		err = pw.Stop()
		if err != nil {
			return fmt.Errorf("couldn't stop PWM: %w", err)
		}
		return nil
	}
	err = pw.SetDuty(uint32(o.duty))
	if err != nil {
		return fmt.Errorf("couldn't set duty: %w", err)
	}
	err = pw.Run()
	if err != nil {
		return fmt.Errorf("couldn't start PWM: %w", err)
	}
	return nil
}

func main() {
	flag.Parse()
	o := parsedOptions()
	err := o.validate()
	if err != nil {
		usageError(err)
	}

	soc, err := sunxi.DetectSoC()
	switch {
	case err == nil:
		log.Printf("Detected %s", soc.Name)
	case errors.Is(err, sunxi.ErrUnsupportedSoC) && !*force:
		log.Fatalf("Refusing to touch registers: %v (use -force to override)", err)
	default:
		log.Printf("Couldn't detect SoC, assuming an H3 register layout: %v", err)
	}

	err = run(o, sunxi.NewDevMem(*memDev))
	if err != nil {
		log.Fatalf("Failed: %v", err)
	}
}
