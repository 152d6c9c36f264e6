package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/spf13/cobra"

	"github.com/zeu5/managed-rl-env/analysis"
	"github.com/zeu5/managed-rl-env/envs"
	"github.com/zeu5/managed-rl-env/managers"
	_ "github.com/zeu5/managed-rl-env/mdp"
	"github.com/zeu5/managed-rl-env/monitor"
	"github.com/zeu5/managed-rl-env/record"
	"github.com/zeu5/managed-rl-env/util"
)

var (
	sqlitePath  string
	redisAddr   string
	monitorPort int
)

// Demo runs the full manager stack over the toy scene for the given
// number of control steps and writes the run data to saveDir. The
// collected metric curves are returned for inspection.
func Demo(numEnvs, steps int, seed uint64, saveDir string) ([]*analysis.Curve, error) {
	if err := util.EnsureDir(saveDir); err != nil {
		return nil, err
	}
	env := envs.NewEnv(envs.EnvConfig{
		NumEnvs: numEnvs,
		Seed:    seed,
	})

	om, err := managers.NewObservationManager(&managers.ObservationManagerCfg{
		Groups: []managers.ObservationGroup{
			{Name: "policy", Cfg: &managers.ObservationGroupCfg{
				ConcatenateTerms: true,
				EnableCorruption: true,
				Terms: []managers.ObservationTerm{
					{Name: "base_lin_vel", Cfg: &managers.ObservationTermCfg{
						Func:  "base_lin_vel",
						Scale: managers.Scalar(2.0),
						Noise: managers.UniformNoise(-0.1, 0.1),
					}},
					{Name: "joint_pos", Cfg: &managers.ObservationTermCfg{
						Func: "joint_pos",
						Clip: managers.Range(-1, 1),
					}},
					{Name: "time", Cfg: &managers.ObservationTermCfg{
						Func: "elapsed_time",
					}},
				},
			}},
			{Name: "sensors", Cfg: &managers.ObservationGroupCfg{
				Terms: []managers.ObservationTerm{
					{Name: "height_scan", Cfg: &managers.ObservationTermCfg{
						Func:   "height_scan",
						Params: managers.Params{"resolution": 8},
					}},
				},
			}},
		},
	}, env)
	if err != nil {
		return nil, err
	}

	ev, err := managers.NewEventManager(&managers.EventManagerCfg{
		Terms: []managers.EventTerm{
			{Name: "startup_masses", Cfg: &managers.EventTermCfg{
				Func:   "scale_body_masses",
				Mode:   managers.ModeStartup,
				Params: managers.Params{"scale_range": []float64{0.8, 1.2}},
			}},
			{Name: "reset_scene", Cfg: &managers.EventTermCfg{
				Func: "reset_scene_to_default",
				Mode: managers.ModeReset,
			}},
			{Name: "reset_materials", Cfg: &managers.EventTermCfg{
				Func:   "randomize_material",
				Mode:   managers.ModeReset,
				Params: managers.Params{"frictions": []float64{0.4, 0.8, 1.2}},
				// avoid thrashing the material buffers on rapid resets
				MinStepCountBetweenReset: 20,
			}},
			{Name: "push", Cfg: &managers.EventTermCfg{
				Func:           "push_robot",
				Mode:           managers.ModeInterval,
				Params:         managers.Params{"velocity_range": 0.5},
				IntervalRangeS: managers.Range(1.0, 3.0),
			}},
		},
	}, env)
	if err != nil {
		return nil, err
	}

	rm, err := managers.NewRewardManager(&managers.RewardManagerCfg{
		Terms: []managers.RewardTerm{
			{Name: "alive", Cfg: &managers.RewardTermCfg{Func: "alive_bonus", Weight: 1.0}},
			{Name: "vel_z", Cfg: &managers.RewardTermCfg{Func: "lin_vel_z_penalty", Weight: -0.5}},
		},
	}, env)
	if err != nil {
		return nil, err
	}

	tm, err := managers.NewTerminationManager(&managers.TerminationManagerCfg{
		Terms: []managers.TerminationTerm{
			{Name: "time_out", Cfg: &managers.TerminationTermCfg{
				Func:    "time_out",
				Params:  managers.Params{"max_steps": 200},
				TimeOut: true,
			}},
			{Name: "fell", Cfg: &managers.TerminationTermCfg{
				Func:   "root_height_below",
				Params: managers.Params{"minimum_height": -0.5},
			}},
		},
	}, env)
	if err != nil {
		return nil, err
	}

	cm, err := managers.NewCurriculumManager(&managers.CurriculumManagerCfg{
		Terms: []managers.CurriculumTerm{
			{Name: "terrain", Cfg: &managers.CurriculumTermCfg{
				Func:   "terrain_levels",
				Params: managers.Params{"max_level": 5},
			}},
		},
	}, env)
	if err != nil {
		return nil, err
	}

	sinks := []record.Sink{record.NewJSONLSink(path.Join(saveDir, "records.jsonl"))}
	if sqlitePath != "" {
		sinks = append(sinks, record.NewSQLiteSink(sqlitePath))
	}
	if redisAddr != "" {
		sinks = append(sinks, record.NewRedisSink(redisAddr, "records"))
	}
	rec, err := managers.NewRecorderManager(&managers.RecorderManagerCfg{
		Terms: []managers.RecorderTermEntry{
			{Name: "initial_state", Cfg: &managers.RecorderTermCfg{Func: "initial_state"}},
			{Name: "states", Cfg: &managers.RecorderTermCfg{Func: "post_step_states"}},
		},
		Sinks: sinks,
	}, env)
	if err != nil {
		return nil, err
	}
	defer rec.Close()

	fmt.Print(om)
	fmt.Print(ev)
	fmt.Print(rm)
	fmt.Print(tm)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var mon *monitor.Monitor
	if monitorPort > 0 {
		mon = monitor.NewMonitor(ctx, monitorPort)
		mon.AddSource("observation", monitor.SourceFunc(om.ActiveTerms))
		mon.AddSource("event", monitor.SourceFunc(ev.ActiveTerms))
		mon.AddSource("reward", monitor.SourceFunc(func() map[string][]string {
			return map[string][]string{"reward": rm.ActiveTerms()}
		}))
		mon.AddSource("termination", monitor.SourceFunc(func() map[string][]string {
			return map[string][]string{"termination": tm.ActiveTerms()}
		}))
		mon.AddSummary("observation", om.String)
		mon.AddSummary("event", ev.String)
		mon.AddSummary("reward", rm.String)
		mon.AddSummary("termination", tm.String)
		mon.AddSummary("curriculum", cm.String)
		mon.AddSummary("recorder", rec.String)
		mon.Start()
	}

	collector := analysis.NewCollector()

	ev.Apply(managers.ModeStartup, envs.All(), -1, -1)

	for step := 0; step < steps; step++ {
		if ctx.Err() != nil {
			break
		}
		rec.RecordPreStep()
		ev.Apply(managers.ModeInterval, envs.All(), env.Dt, -1)
		env.Scene.Step(env.Dt)
		env.StepEpisodeCounters()

		om.Compute()
		reward := rm.Compute(env.Dt)
		terminated, timeOuts := tm.Compute()
		rec.RecordPostStep()

		resetIDs := make([]int, 0)
		for i, done := range managers.Dones(terminated, timeOuts) {
			if done {
				resetIDs = append(resetIDs, i)
			}
		}
		metrics := map[string]float64{"Step_Reward/mean": reward.Mean()}
		if len(resetIDs) > 0 {
			ids := envs.Subset(resetIDs)
			cm.Compute(ids)
			for k, v := range rm.Reset(ids) {
				metrics[k] = v
			}
			for k, v := range tm.Reset(ids) {
				metrics[k] = v
			}
			for k, v := range cm.Reset(ids) {
				metrics[k] = v
			}
			om.Reset(ids)
			ev.Apply(managers.ModeReset, ids, -1, step)
			env.ResetEpisodeCounters(ids)
			rec.RecordPostReset(ids)
		}
		for k, v := range metrics {
			collector.Observe(k, v)
		}
		if mon != nil {
			mon.Observe(step, metrics)
		}
	}

	curves := collector.Curves()
	analysis.Summarize(curves)
	if err := analysis.PlotCurves(curves, "Run metrics", path.Join(saveDir, "metrics.png")); err != nil {
		return nil, err
	}
	fmt.Printf("Run %s finished, data saved to %s\n", rec.RunID(), saveDir)
	return curves, nil
}

func DemoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "demo",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := Demo(numEnvs, steps, seed, saveDir)
			return err
		},
	}
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Additionally record to the sqlite database at this path")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Additionally record to the redis server at this address")
	cmd.Flags().IntVar(&monitorPort, "monitor", 0, "Serve live diagnostics on this port")
	return cmd
}
