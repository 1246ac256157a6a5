// Package monitor renders trajectory debugging plots: the spline paths of
// a trajectory pair together with the inflated bounding envelopes the
// broadphase prunes with, and the detected conflict points.
package monitor

import (
	"fmt"
	"image/color"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Sunshengjin/rmf-core/traffic"
)

// PlotConfig controls the rendered output.
type PlotConfig struct {
	Title   string
	Samples int // points sampled along each whole trajectory; default 50
	Width   vg.Length
	Height  vg.Length
}

// DefaultPlotConfig returns the rendering defaults.
func DefaultPlotConfig() PlotConfig {
	return PlotConfig{
		Title:   "trajectories",
		Samples: 50,
		Width:   8 * vg.Inch,
		Height:  8 * vg.Inch,
	}
}

var seriesColors = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
}

// SavePlot renders the paths of the given trajectories, their per-segment
// bounding envelopes inflated by the matching profile's vicinity, and any
// conflict times, then saves the figure as a PNG.
func SavePlot(
	path string,
	cfg PlotConfig,
	profiles []traffic.Profile,
	trajectories []*traffic.Trajectory,
	conflicts []time.Time,
) error {
	if len(profiles) != len(trajectories) {
		return fmt.Errorf("monitor: %d profiles for %d trajectories", len(profiles), len(trajectories))
	}
	if cfg.Samples <= 1 {
		cfg.Samples = 50
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	for i, traj := range trajectories {
		pts := samplePath(traj, cfg.Samples)
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("monitor: path line: %w", err)
		}
		line.Width = vg.Points(1.5)
		line.Color = seriesColors[i%len(seriesColors)]
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("vehicle %d", i), line)

		boxes, err := envelopeBoxes(traj, profiles[i])
		if err != nil {
			return err
		}
		for _, box := range boxes {
			box.Color = line.Color
			box.Width = vg.Points(0.5)
			box.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
			p.Add(box)
		}
	}

	if len(conflicts) > 0 {
		marks, err := conflictMarks(trajectories, conflicts)
		if err != nil {
			return err
		}
		p.Add(marks)
		p.Legend.Add("conflicts", marks)
	}

	if err := p.Save(cfg.Width, cfg.Height, path); err != nil {
		return fmt.Errorf("monitor: save plot: %w", err)
	}
	return nil
}

func samplePath(traj *traffic.Trajectory, samples int) plotter.XYs {
	start := traj.StartTime()
	span := traj.FinishTime().Sub(start)

	pts := make(plotter.XYs, 0, samples+1)
	for i := 0; i <= samples; i++ {
		at := start.Add(time.Duration(float64(i) / float64(samples) * float64(span)))
		seg := traj.FindSegment(at)
		pos := traj.Segment(seg).Position(at)
		pts = append(pts, plotter.XY{X: pos[0], Y: pos[1]})
	}
	return pts
}

func envelopeBoxes(traj *traffic.Trajectory, profile traffic.Profile) ([]*plotter.Line, error) {
	ell := 0.0
	if profile.Vicinity != nil {
		ell = profile.Vicinity.CharacteristicLength()
	} else if profile.Footprint != nil {
		ell = profile.Footprint.CharacteristicLength()
	}

	var out []*plotter.Line
	for i := 1; i < traj.Size(); i++ {
		box := traj.Segment(i).BoundingBox().Inflated(ell)
		outline := plotter.XYs{
			{X: box.Min[0], Y: box.Min[1]},
			{X: box.Max[0], Y: box.Min[1]},
			{X: box.Max[0], Y: box.Max[1]},
			{X: box.Min[0], Y: box.Max[1]},
			{X: box.Min[0], Y: box.Min[1]},
		}
		line, err := plotter.NewLine(outline)
		if err != nil {
			return nil, fmt.Errorf("monitor: envelope outline: %w", err)
		}
		out = append(out, line)
	}
	return out, nil
}

func conflictMarks(trajectories []*traffic.Trajectory, conflicts []time.Time) (*plotter.Scatter, error) {
	var pts plotter.XYs
	for _, at := range conflicts {
		for _, traj := range trajectories {
			if at.Before(traj.StartTime()) || at.After(traj.FinishTime()) {
				continue
			}
			pos := traj.Segment(traj.FindSegment(at)).Position(at)
			pts = append(pts, plotter.XY{X: pos[0], Y: pos[1]})
		}
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("monitor: conflict marks: %w", err)
	}
	scatter.GlyphStyle.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	scatter.GlyphStyle.Radius = vg.Points(4)
	return scatter, nil
}
