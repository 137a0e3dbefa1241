package sampling

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openagora/agora-backend/internal/logger"
	"github.com/openagora/agora-backend/internal/platform/envutil"
)

const (
	// BaseUncertainty is the SEM assigned to a proposal nobody has evaluated:
	// scores live in [-1,1], so half the range is the widest useful band.
	BaseUncertainty = 0.5
	// MinSEM floors the standard error so repeated identical votes can't
	// collapse uncertainty to zero and blow up the ratio-based scorers.
	MinSEM = 0.05
)

// legacyKappaScale translates the retired explorationWeight tunable into
// explorationKappa. Empirically tuned mapping, kept for old configs.
const legacyKappaScale = 5.0

// Config governs every formula in the sampler. Immutable once handed to a
// Sampler; updates go through Apply, which copies.
type Config struct {
	// TargetEvaluations is the minimum vote count before a proposal can be
	// considered stable.
	TargetEvaluations int `json:"targetEvaluations" yaml:"targetEvaluations"`
	// TargetSEM is the standard-error ceiling below which a proposal's
	// ranking is considered settled.
	TargetSEM float64 `json:"targetSEM" yaml:"targetSEM"`
	// ExplorationKappa scales the UCB confidence bonus.
	ExplorationKappa float64 `json:"explorationKappa" yaml:"explorationKappa"`
	// RecencyBoostHours is how long a new proposal keeps an inflated
	// uncertainty band.
	RecencyBoostHours float64 `json:"recencyBoostHours" yaml:"recencyBoostHours"`
	// PriorStrength is the pseudo-count blended into every mean estimate.
	PriorStrength float64 `json:"priorStrength" yaml:"priorStrength"`
	// PriorMean is the prior belief about an unseen proposal's quality.
	PriorMean float64 `json:"priorMean" yaml:"priorMean"`
	// ExplorationFloor is the minimum priority of any unstable proposal.
	ExplorationFloor float64 `json:"explorationFloor" yaml:"explorationFloor"`
	// LegacyPriority switches batch scoring to the old percentile-based
	// weighted-sum formula.
	LegacyPriority bool `json:"legacyPriority" yaml:"legacyPriority"`
}

func DefaultConfig() Config {
	return Config{
		TargetEvaluations: 30,
		TargetSEM:         0.15,
		ExplorationKappa:  1.5,
		RecencyBoostHours: 24,
		PriorStrength:     2,
		PriorMean:         0,
		ExplorationFloor:  0.1,
	}
}

func (c Config) Validate() error {
	if c.TargetEvaluations < 0 {
		return fmt.Errorf("targetEvaluations must be >= 0, got %d", c.TargetEvaluations)
	}
	if c.TargetSEM <= 0 {
		return fmt.Errorf("targetSEM must be > 0, got %g", c.TargetSEM)
	}
	if c.ExplorationKappa < 0 {
		return fmt.Errorf("explorationKappa must be >= 0, got %g", c.ExplorationKappa)
	}
	if c.RecencyBoostHours <= 0 {
		return fmt.Errorf("recencyBoostHours must be > 0, got %g", c.RecencyBoostHours)
	}
	if c.PriorStrength < 0 {
		return fmt.Errorf("priorStrength must be >= 0, got %g", c.PriorStrength)
	}
	if c.PriorMean < -1 || c.PriorMean > 1 {
		return fmt.Errorf("priorMean must be in [-1,1], got %g", c.PriorMean)
	}
	if c.ExplorationFloor < 0 || c.ExplorationFloor > 1 {
		return fmt.Errorf("explorationFloor must be in [0,1], got %g", c.ExplorationFloor)
	}
	return nil
}

// ConfigPatch is a partial config update. Nil fields keep their current value.
// ExplorationWeight is the retired name for the exploration tunable; it is
// honored only when ExplorationKappa is absent.
type ConfigPatch struct {
	TargetEvaluations *int     `json:"targetEvaluations" yaml:"targetEvaluations"`
	TargetSEM         *float64 `json:"targetSEM" yaml:"targetSEM"`
	ExplorationKappa  *float64 `json:"explorationKappa" yaml:"explorationKappa"`
	ExplorationWeight *float64 `json:"explorationWeight" yaml:"explorationWeight"`
	RecencyBoostHours *float64 `json:"recencyBoostHours" yaml:"recencyBoostHours"`
	PriorStrength     *float64 `json:"priorStrength" yaml:"priorStrength"`
	PriorMean         *float64 `json:"priorMean" yaml:"priorMean"`
	ExplorationFloor  *float64 `json:"explorationFloor" yaml:"explorationFloor"`
	LegacyPriority    *bool    `json:"legacyPriority" yaml:"legacyPriority"`
}

// Apply returns a copy of c with the patch folded in. The copy is validated;
// an invalid patch leaves c untouched.
func (c Config) Apply(p ConfigPatch) (Config, error) {
	next := c
	if p.TargetEvaluations != nil {
		next.TargetEvaluations = *p.TargetEvaluations
	}
	if p.TargetSEM != nil {
		next.TargetSEM = *p.TargetSEM
	}
	switch {
	case p.ExplorationKappa != nil:
		next.ExplorationKappa = *p.ExplorationKappa
	case p.ExplorationWeight != nil:
		next.ExplorationKappa = *p.ExplorationWeight * legacyKappaScale
	}
	if p.RecencyBoostHours != nil {
		next.RecencyBoostHours = *p.RecencyBoostHours
	}
	if p.PriorStrength != nil {
		next.PriorStrength = *p.PriorStrength
	}
	if p.PriorMean != nil {
		next.PriorMean = *p.PriorMean
	}
	if p.ExplorationFloor != nil {
		next.ExplorationFloor = *p.ExplorationFloor
	}
	if p.LegacyPriority != nil {
		next.LegacyPriority = *p.LegacyPriority
	}
	if err := next.Validate(); err != nil {
		return c, err
	}
	return next, nil
}

// LoadConfig builds the runtime config: defaults, then the optional YAML
// overrides file named by SAMPLING_CONFIG_PATH, then environment variables.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := DefaultConfig()

	if path := envutil.String("SAMPLING_CONFIG_PATH", ""); path != "" {
		patch, err := readConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg, err = cfg.Apply(patch)
		if err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
		if log != nil {
			log.Info("Loaded sampling config overrides", "path", path)
		}
	}

	cfg.TargetEvaluations = envutil.Int("SAMPLING_TARGET_EVALUATIONS", cfg.TargetEvaluations)
	cfg.TargetSEM = envutil.FloatClamped("SAMPLING_TARGET_SEM", cfg.TargetSEM, 0.01, 1)
	cfg.RecencyBoostHours = envutil.FloatClamped("SAMPLING_RECENCY_BOOST_HOURS", cfg.RecencyBoostHours, 1, 720)
	cfg.PriorStrength = envutil.FloatClamped("SAMPLING_PRIOR_STRENGTH", cfg.PriorStrength, 0, 50)
	cfg.PriorMean = envutil.FloatClamped("SAMPLING_PRIOR_MEAN", cfg.PriorMean, -1, 1)
	cfg.ExplorationFloor = envutil.FloatClamped("SAMPLING_EXPLORATION_FLOOR", cfg.ExplorationFloor, 0, 1)
	cfg.LegacyPriority = envutil.Bool("SAMPLING_LEGACY_PRIORITY", cfg.LegacyPriority)

	if envutil.String("SAMPLING_EXPLORATION_KAPPA", "") != "" {
		cfg.ExplorationKappa = envutil.FloatClamped("SAMPLING_EXPLORATION_KAPPA", cfg.ExplorationKappa, 0, 10)
	} else if w := envutil.String("SAMPLING_EXPLORATION_WEIGHT", ""); w != "" {
		cfg.ExplorationKappa = envutil.FloatClamped("SAMPLING_EXPLORATION_WEIGHT", 0, 0, 2) * legacyKappaScale
		if log != nil {
			log.Warn("SAMPLING_EXPLORATION_WEIGHT is deprecated, use SAMPLING_EXPLORATION_KAPPA", "kappa", cfg.ExplorationKappa)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readConfigFile(path string) (ConfigPatch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ConfigPatch{}, fmt.Errorf("read sampling config: %w", err)
	}
	var patch ConfigPatch
	if err := yaml.Unmarshal(raw, &patch); err != nil {
		return ConfigPatch{}, fmt.Errorf("parse sampling config: %w", err)
	}
	return patch, nil
}
