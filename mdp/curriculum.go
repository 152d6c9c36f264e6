package mdp

import (
	"github.com/zeu5/managed-rl-env/envs"
	"github.com/zeu5/managed-rl-env/managers"
)

func init() {
	managers.MustRegisterCurriculum("terrain_levels", TerrainLevels,
		managers.OptionalParam("max_level"),
	)
}

// TerrainLevels promotes the resetting instances one terrain difficulty
// level, capped at "max_level", and returns the batch mean level
func TerrainLevels(env *envs.Env, ids envs.Subset, p managers.Params) float64 {
	maxLevel := p.IntOr("max_level", 9)
	for _, i := range ids.Indices(env.NumEnvs) {
		if env.Scene.TerrainLevel[i] < maxLevel {
			env.Scene.TerrainLevel[i]++
		}
	}
	sum := 0
	for _, l := range env.Scene.TerrainLevel {
		sum += l
	}
	return float64(sum) / float64(env.NumEnvs)
}
