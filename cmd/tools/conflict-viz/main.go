// Command conflict-viz renders a detection run as an interactive HTML
// chart: the x/y paths of both trajectories with the detected conflict
// points marked. It reads the same trajectory JSON files as conflictcheck.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/google/uuid"

	"github.com/Sunshengjin/rmf-core/geometry"
	"github.com/Sunshengjin/rmf-core/internal/monitoring"
	"github.com/Sunshengjin/rmf-core/traffic"
)

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

func pathSeries(traj *traffic.Trajectory, samples int) []opts.LineData {
	start := traj.StartTime()
	span := traj.FinishTime().Sub(start)

	data := make([]opts.LineData, 0, samples+1)
	for i := 0; i <= samples; i++ {
		at := start.Add(time.Duration(float64(i) / float64(samples) * float64(span)))
		pos := traj.Segment(traj.FindSegment(at)).Position(at)
		data = append(data, opts.LineData{Value: []interface{}{pos[0], pos[1]}})
	}
	return data
}

func main() {
	var (
		fileA     = flag.String("a", "", "trajectory file for vehicle A")
		fileB     = flag.String("b", "", "trajectory file for vehicle B")
		footprint = flag.Float64("footprint", 0.5, "footprint radius of both vehicles in meters")
		vicinity  = flag.Float64("vicinity", 0, "vicinity radius of both vehicles in meters (0 = same as footprint)")
		outPath   = flag.String("out", "conflicts.html", "output HTML file")
	)
	flag.Parse()

	if *fileA == "" || *fileB == "" {
		fmt.Fprintln(os.Stderr, "usage: conflict-viz -a a.json -b b.json [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	trajA, err := loadTrajectory(*fileA)
	if err != nil {
		fatal(err)
	}
	trajB, err := loadTrajectory(*fileB)
	if err != nil {
		fatal(err)
	}

	profile := traffic.Profile{}
	if *footprint > 0 {
		profile.Footprint = geometry.MustFinalizeConvex(geometry.Circle{Radius: *footprint})
	}
	if *vicinity > 0 {
		profile.Vicinity = geometry.MustFinalizeConvex(geometry.Circle{Radius: *vicinity})
	}

	var conflicts []traffic.Conflict
	_, ok, err := traffic.BetweenAll(profile, trajA, profile, trajB, &conflicts)
	if err != nil {
		fatal(err)
	}

	runID := uuid.NewString()
	subtitle := "no conflict"
	if ok {
		subtitle = fmt.Sprintf("%d conflict(s), earliest t=%.3fs",
			len(conflicts), conflicts[0].Time.Sub(origin).Seconds())
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "conflict-viz " + runID,
			Width:     "900px",
			Height:    "900px",
		}),
		charts.WithTitleOpts(opts.Title{Title: "Trajectory conflicts", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "X (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Y (m)"}),
	)

	const samples = 100
	line.AddSeries("vehicle A", pathSeries(trajA, samples))
	line.AddSeries("vehicle B", pathSeries(trajB, samples))

	if len(conflicts) > 0 {
		marks := make([]opts.ScatterData, 0, len(conflicts))
		for _, c := range conflicts {
			pos := trajA.Segment(trajA.FindSegment(c.Time)).Position(c.Time)
			marks = append(marks, opts.ScatterData{
				Value:      []interface{}{pos[0], pos[1]},
				SymbolSize: 12,
			})
		}
		scatter := charts.NewScatter()
		scatter.AddSeries("conflicts", marks)
		line.Overlap(scatter)
	}

	out, err := os.Create(*outPath)
	if err != nil {
		fatal(err)
	}
	defer out.Close()

	if err := line.Render(out); err != nil {
		fatal(err)
	}
	monitoring.Logf("conflict-viz run %s written to %s", runID, *outPath)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "conflict-viz:", err)
	os.Exit(1)
}
