// Command conflictcheck runs conflict detection between two trajectory
// files and reports the earliest conflict time, optionally listing every
// conflict and rendering a debug plot.
//
// Trajectory files are JSON:
//
//	{"waypoints": [{"t": 0, "x": 0, "y": 0, "yaw": 0, "vx": 1, "vy": 0, "vyaw": 0}, ...]}
//
// with t in seconds from a common origin.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/Sunshengjin/rmf-core/internal/config"
	"github.com/Sunshengjin/rmf-core/internal/monitoring"
	"github.com/Sunshengjin/rmf-core/traffic"
	"github.com/Sunshengjin/rmf-core/traffic/monitor"
)

// trajectoryFile is the on-disk trajectory format.
type trajectoryFile struct {
	Waypoints []struct {
		T    float64 `json:"t"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
		Yaw  float64 `json:"yaw"`
		VX   float64 `json:"vx"`
		VY   float64 `json:"vy"`
		VYaw float64 `json:"vyaw"`
	} `json:"waypoints"`
}

var origin = time.Unix(0, 0).UTC()

func loadTrajectory(path string) (*traffic.Trajectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trajectory: %w", err)
	}
	var file trajectoryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse trajectory %s: %w", path, err)
	}

	traj := &traffic.Trajectory{}
	for _, w := range file.Waypoints {
		err := traj.Insert(traffic.Waypoint{
			Time:     origin.Add(time.Duration(w.T * float64(time.Second))),
			Position: [3]float64{w.X, w.Y, w.Yaw},
			Velocity: [3]float64{w.VX, w.VY, w.VYaw},
		})
		if err != nil {
			return nil, fmt.Errorf("trajectory %s: %w", path, err)
		}
	}
	return traj, nil
}

func circleProfile(footprint, vicinity float64) (traffic.Profile, error) {
	p := traffic.Profile{}
	if footprint > 0 {
		final, err := geometryCircle(footprint)
		if err != nil {
			return p, err
		}
		p.Footprint = final
	}
	if vicinity > 0 {
		final, err := geometryCircle(vicinity)
		if err != nil {
			return p, err
		}
		p.Vicinity = final
	}
	return p, nil
}

func main() {
	// Optional .env in the working directory can pre-seed flag defaults.
	_ = godotenv.Load()

	var (
		fileA      = flag.String("a", "", "trajectory file for vehicle A")
		fileB      = flag.String("b", "", "trajectory file for vehicle B")
		footprintA = flag.Float64("footprint-a", envFloat("CONFLICTCHECK_FOOTPRINT_A", 0.5), "footprint radius of A in meters")
		footprintB = flag.Float64("footprint-b", envFloat("CONFLICTCHECK_FOOTPRINT_B", 0.5), "footprint radius of B in meters")
		vicinityA  = flag.Float64("vicinity-a", envFloat("CONFLICTCHECK_VICINITY_A", 0), "vicinity radius of A in meters (0 = same as footprint)")
		vicinityB  = flag.Float64("vicinity-b", envFloat("CONFLICTCHECK_VICINITY_B", 0), "vicinity radius of B in meters (0 = same as footprint)")
		tuningPath = flag.String("tuning", "", "optional tolerance tuning JSON")
		listAll    = flag.Bool("all", false, "list every detected conflict")
		plotPath   = flag.String("plot", "", "save a debug plot PNG to this path")
	)
	flag.Parse()

	if *fileA == "" || *fileB == "" {
		fmt.Fprintln(os.Stderr, "usage: conflictcheck -a a.json -b b.json [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	runID := uuid.NewString()
	monitoring.Logf("conflictcheck run %s: %s vs %s", runID, *fileA, *fileB)

	trajA, err := loadTrajectory(*fileA)
	if err != nil {
		fatal(err)
	}
	trajB, err := loadTrajectory(*fileB)
	if err != nil {
		fatal(err)
	}

	profileA, err := circleProfile(*footprintA, *vicinityA)
	if err != nil {
		fatal(err)
	}
	profileB, err := circleProfile(*footprintB, *vicinityB)
	if err != nil {
		fatal(err)
	}

	detectorCfg := traffic.DefaultDetectorConfig()
	if *tuningPath != "" {
		tuning, err := config.LoadTuningConfig(*tuningPath)
		if err != nil {
			fatal(err)
		}
		detectorCfg = tuning.DetectorConfig()
	}
	detector := traffic.NewDetector(detectorCfg)

	var conflicts []traffic.Conflict
	var when time.Time
	var ok bool
	if *listAll {
		when, ok, err = detector.BetweenAll(profileA, trajA, profileB, trajB, &conflicts)
	} else {
		when, ok, err = detector.Between(profileA, trajA, profileB, trajB)
	}
	if err != nil {
		fatal(err)
	}

	if !ok {
		fmt.Println("no conflict")
	} else {
		fmt.Printf("conflict at t=%.3fs\n", when.Sub(origin).Seconds())
		for _, c := range conflicts {
			fmt.Printf("  segments (%d, %d) at t=%.3fs\n",
				c.SegmentA, c.SegmentB, c.Time.Sub(origin).Seconds())
		}
	}

	if *plotPath != "" {
		times := make([]time.Time, 0, len(conflicts))
		for _, c := range conflicts {
			times = append(times, c.Time)
		}
		if ok && len(times) == 0 {
			times = append(times, when)
		}

		cfg := monitor.DefaultPlotConfig()
		cfg.Title = "conflictcheck " + runID
		err := monitor.SavePlot(*plotPath, cfg,
			[]traffic.Profile{profileA, profileB},
			[]*traffic.Trajectory{trajA, trajB},
			times)
		if err != nil {
			fatal(err)
		}
		monitoring.Logf("plot written to %s", *plotPath)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "conflictcheck:", err)
	os.Exit(1)
}
