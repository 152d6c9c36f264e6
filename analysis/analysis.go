// Package analysis collects per-step metrics of a run and renders them
// into comparison plots.
package analysis

import (
	"fmt"
	"os"
	"path"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/zeu5/managed-rl-env/record"
)

// Curve is one named metric series over the steps of a run
type Curve struct {
	Name   string
	Values []float64
}

// Collector accumulates the scalar metrics observed during a run into
// per-key curves
type Collector struct {
	curves map[string]*Curve
	order  []string
}

func NewCollector() *Collector {
	return &Collector{
		curves: make(map[string]*Curve),
	}
}

// Observe appends one value to the named curve
func (c *Collector) Observe(name string, value float64) {
	curve, ok := c.curves[name]
	if !ok {
		curve = &Curve{Name: name}
		c.curves[name] = curve
		c.order = append(c.order, name)
	}
	curve.Values = append(curve.Values, value)
}

// Curves returns the collected curves in first-observed order
func (c *Collector) Curves() []*Curve {
	out := make([]*Curve, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.curves[name])
	}
	return out
}

// PlotCurves renders the curves into a single comparison plot
func PlotCurves(curves []*Curve, title, savePath string) error {
	if _, err := os.Stat(path.Dir(savePath)); err != nil {
		os.MkdirAll(path.Dir(savePath), os.ModePerm)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "Value"
	for i, curve := range curves {
		points := make(plotter.XYs, len(curve.Values))
		for j, v := range curve.Values {
			points[j] = plotter.XY{
				X: float64(j),
				Y: v,
			}
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			continue
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(curve.Name, line)
	}
	return p.Save(8*vg.Inch, 8*vg.Inch, savePath)
}

// CurvesFromRecords rebuilds per-key mean-value curves from the records
// of one run, post-step phase only, ordered by step
func CurvesFromRecords(records []record.Record) []*Curve {
	type point struct {
		step int
		mean float64
	}
	byKey := make(map[string][]point)
	for _, r := range records {
		if r.Phase != "post_step" || len(r.Values) == 0 {
			continue
		}
		sum := 0.0
		for _, v := range r.Values {
			sum += v
		}
		byKey[r.Key] = append(byKey[r.Key], point{step: r.Step, mean: sum / float64(len(r.Values))})
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*Curve, 0, len(keys))
	for _, k := range keys {
		points := byKey[k]
		sort.Slice(points, func(i, j int) bool { return points[i].step < points[j].step })
		curve := &Curve{Name: k}
		for _, pt := range points {
			curve.Values = append(curve.Values, pt.mean)
		}
		out = append(out, curve)
	}
	return out
}

// Summarize prints the final value of every curve
func Summarize(curves []*Curve) {
	for _, curve := range curves {
		if len(curve.Values) == 0 {
			continue
		}
		fmt.Printf("Final value %f after %d steps for curve: %s\n",
			curve.Values[len(curve.Values)-1], len(curve.Values), curve.Name)
	}
}
