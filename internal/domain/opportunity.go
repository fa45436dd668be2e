package domain

// OpportunityType orders opportunities for presentation.
// Hot sorts before active, active before standard.
type OpportunityType string

const (
	OpportunityHot      OpportunityType = "hot"
	OpportunityActive   OpportunityType = "active"
	OpportunityStandard OpportunityType = "standard"
)

// Priority returns the sort rank of the type: hot < active < standard.
func (t OpportunityType) Priority() int {
	switch t {
	case OpportunityHot:
		return 0
	case OpportunityActive:
		return 1
	default:
		return 2
	}
}

// Opportunity is a pool surfaced as worth acting on, with a generated
// rationale. The list is rebuilt wholesale from the latest pool set on
// every refresh cycle and never mutated incrementally.
type Opportunity struct {
	Pool   Pool
	Reason string
	Type   OpportunityType
}
