package augment

import "fmt"

// PartialProductionWarning records a class that received fewer synthetic
// samples than requested. It is reported, never returned as an error.
type PartialProductionWarning struct {
	Class     string `json:"class"`
	Requested int    `json:"requested"`
	Produced  int    `json:"produced"`
	Reason    string `json:"reason"`
}

func (w PartialProductionWarning) String() string {
	return fmt.Sprintf("class %s: produced %d of %d synthetic samples (%s)", w.Class, w.Produced, w.Requested, w.Reason)
}

// ClassReport is the outcome for one class.
type ClassReport struct {
	Class     string                    `json:"class"`
	Requested int                       `json:"requested"`
	Produced  int                       `json:"produced"`
	Warning   *PartialProductionWarning `json:"warning,omitempty"`
}

// Report summarises an orchestrator run.
type Report struct {
	SourceRows    int           `json:"source_rows"`
	SyntheticRows int           `json:"synthetic_rows"`
	TotalRows     int           `json:"total_rows"`
	Classes       []ClassReport `json:"classes"`
}

// Warnings returns the partial-production warnings in target order.
func (r Report) Warnings() []PartialProductionWarning {
	var out []PartialProductionWarning
	for _, c := range r.Classes {
		if c.Warning != nil {
			out = append(out, *c.Warning)
		}
	}
	return out
}

// Requested returns the total number of requested synthetic samples.
func (r Report) Requested() int {
	total := 0
	for _, c := range r.Classes {
		total += c.Requested
	}
	return total
}
