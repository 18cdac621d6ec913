package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	kitlog "github.com/go-kit/kit/log"

	flarepie "github.com/Elexs1zz/FlarePie"
)

// This command only reads a scenario file and runs the propagation; all
// plotting and reporting is left to downstream tooling.

var (
	scenario string
	verbose  bool
)

func init() {
	flag.StringVar(&scenario, "scenario", "", "scenario TOML file")
	flag.BoolVar(&verbose, "verbose", false, "emit the throttled progress log")
}

func main() {
	flag.Parse()
	if scenario == "" {
		log.Fatal("no scenario provided")
	}
	cfg, stages, err := flarepie.LoadScenario(scenario)
	if err != nil {
		log.Fatalf("%s: %s", scenario, err)
	}

	var logger kitlog.Logger = kitlog.NewNopLogger()
	if verbose {
		logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	}

	if len(stages) > 0 {
		mission, err := flarepie.NewMission(stages, logger)
		if err != nil {
			log.Fatal(err)
		}
		res := mission.Run(cfg.Vehicle.TimeStep, cfg.MaxTime)
		fmt.Printf("mission: t=%.1fs samples=%d maxAlt=%.1fm maxVel=%.1fm/s truncated=%v\n",
			res.FinalTime, len(res.Samples), res.MaxAltitude, res.MaxVelocity, res.Truncated)
		for _, ev := range res.Events {
			fmt.Printf("  t=%8.2fs  %-18s stage=%d alt=%.1fm v=%.1fm/s\n",
				ev.Time, ev.Type, ev.Stage, ev.Altitude, ev.Velocity)
		}
		return
	}

	flight, err := flarepie.NewFlight(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	res := flight.Run()
	fmt.Printf("flight: phase=%s t=%.1fs samples=%d Δv=%.1fm/s thrust0=%.0fN truncated=%v\n",
		res.Phase, res.FinalTime, len(res.Samples), res.DeltaV, res.InitialThrust, res.Truncated)
	for _, ev := range res.Events {
		fmt.Printf("  t=%8.2fs  %-18s alt=%.1fm v=%.1fm/s\n", ev.Time, ev.Type, ev.Altitude, ev.Velocity)
	}
}
