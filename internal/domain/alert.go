package domain

// AlertMetric selects which pool metric an alert rule watches.
type AlertMetric string

const (
	MetricAPR    AlertMetric = "apr"
	MetricTVL    AlertMetric = "tvl"
	MetricVolume AlertMetric = "volume"
	MetricScore  AlertMetric = "score"
	MetricFees   AlertMetric = "fees"
)

// AlertCondition selects the comparison direction of an alert rule.
type AlertCondition string

const (
	ConditionAbove AlertCondition = "above"
	ConditionBelow AlertCondition = "below"
)

// Alert is a persistent user-owned threshold rule. Toggling Enabled
// does not delete it; removal is explicit.
type Alert struct {
	ID        string
	PoolID    string
	PoolName  string
	Metric    AlertMetric
	Condition AlertCondition
	Value     float64
	Enabled   bool
	CreatedAt int64 // Unix timestamp in milliseconds
}

// TriggeredAlert is an alert snapshot taken at the moment its condition
// held outside the cool-down window. Append-only.
type TriggeredAlert struct {
	Alert        Alert
	TriggeredAt  int64 // Unix timestamp in milliseconds
	CurrentValue float64
	Read         bool
}
