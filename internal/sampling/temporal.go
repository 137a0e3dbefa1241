package sampling

import "time"

// temporalMultiplier widens the effective uncertainty band of recently
// created proposals. Brand new proposals get 2.0x, decaying linearly to 1.0x
// at RecencyBoostHours. It scales SEM in the downstream scorers, never the
// mean, so recency buys exploration rather than score inflation.
func temporalMultiplier(createdAt, now time.Time, cfg Config) float64 {
	hoursOld := now.Sub(createdAt).Hours()
	if hoursOld < 0 {
		hoursOld = 0
	}
	if hoursOld >= cfg.RecencyBoostHours {
		return 1.0
	}
	return 1.0 + (1.0 - hoursOld/cfg.RecencyBoostHours)
}
