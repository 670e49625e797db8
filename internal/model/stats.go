package model

// ScoreStats holds descriptive statistics over a set of consistency scores.
// StdDev and Variance use the sample (n-1) convention; both are 0 for a
// single-element set.
type ScoreStats struct {
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Variance float64 `json:"variance"`
	Min      int     `json:"min"`
	Max      int     `json:"max"`
	Count    int     `json:"count"`
}

// HistogramBucket is one band of the fixed 4-bucket score histogram.
// Buckets are inclusive-low/exclusive-high except the top bucket, which
// includes 100.
type HistogramBucket struct {
	Low   int `json:"low"`
	High  int `json:"high"`
	Count int `json:"count"`
}

// Histogram is the fixed 4-bucket distribution over [0,100] with
// boundaries {0,25,50,75,100}
type Histogram [4]HistogramBucket

// StrategyStats are per-strategy score statistics from the prompt
// robustness experiment
type StrategyStats struct {
	Strategy PromptStrategy `json:"strategy"`
	Stats    ScoreStats     `json:"stats"`
}

// PromptRobustnessResult compares judge stability across prompt strategies.
// Ranking is ascending by standard deviation (lower = more stable), ties
// broken by mean closeness to the cross-strategy mean.
type PromptRobustnessResult struct {
	PerStrategy      map[PromptStrategy]ScoreStats `json:"per_strategy"`
	StabilityRanking []PromptStrategy              `json:"stability_ranking"`
	OverallMean      float64                       `json:"overall_mean"`
}

// PairConsistency holds repeated-run score spread for one pair
type PairConsistency struct {
	PairID string  `json:"pair_id"`
	Scores []int   `json:"scores"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Range  int     `json:"range"`
}

// Reliability classifies judge self-consistency against fixed bands on the
// aggregate mean standard deviation: <3 HIGH, 3-8 MEDIUM, >8 LOW.
type Reliability string

const (
	ReliabilityHigh   Reliability = "HIGH"
	ReliabilityMedium Reliability = "MEDIUM"
	ReliabilityLow    Reliability = "LOW"
)

// SelfConsistencyResult summarizes repeated-run variance of the judge under
// fixed inputs
type SelfConsistencyResult struct {
	PerPair             map[string]PairConsistency `json:"per_pair"`
	AggregateMeanStdDev float64                    `json:"aggregate_mean_std_dev"`
	AggregateMeanRange  float64                    `json:"aggregate_mean_range"`
	RunsPerPair         int                        `json:"runs_per_pair"`
	Reliability         Reliability                `json:"reliability"`
}

// HumanAlignmentResult compares LLM judge scores against human labels
type HumanAlignmentResult struct {
	CohensKappa            float64 `json:"cohens_kappa"`
	MeanAbsoluteDifference float64 `json:"mean_absolute_difference"`
	PearsonCorrelation     float64 `json:"pearson_correlation"`
	SampleSize             int     `json:"sample_size"`
}
