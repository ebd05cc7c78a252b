// Package laa provides learning-augmented online decision engines.
//
// Each engine takes an untrusted prediction and, for most engines, a trust
// weight in [0,1] that blends the classical worst-case-safe policy with the
// prediction-guided one.
//
// # Engines
//
//   - SkiRental, RandomizedSkiRental, AdaptiveSkiRental: rent-or-buy
//   - Caching: eviction by largest predicted next-access time
//   - OneWayTrading: trade-now-or-wait against a blended price threshold
//   - Scheduling: greedy least-loaded makespan assignment ordered by predicted length
//   - Search: prediction-seeded circular scan for the maximum
//
// # Concurrency
//
// Engines that hold only construction-time configuration are safe to share
// across goroutines. AdaptiveSkiRental owns mutable trust and must be driven
// by a single sequential stream of Decide/Feedback calls. RandomizedSkiRental
// is only as safe as its Sampler; *rand.Rand is not.
//
// Sub-packages:
//   - laa/trace: decision trace records
//   - laa/metrics: Prometheus decision counters
//   - laa/evaluate: competitive-ratio simulation and brittleness analysis
//   - laa/predict: conformal prediction intervals mapped to trust
package laa
