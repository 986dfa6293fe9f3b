package domain

// DeliveryOutcome is the result of sending one payload to one endpoint
type DeliveryOutcome struct {
	Endpoint string `json:"endpoint"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	// Gone marks an endpoint that reported it no longer exists and was pruned
	Gone bool `json:"gone,omitempty"`
}

// DeliveryStats aggregates the outcomes of one delivery
type DeliveryStats struct {
	Total     int `json:"total"`
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

// DeliveryResult is returned by the delivery engine
type DeliveryResult struct {
	Stats    DeliveryStats     `json:"stats"`
	Outcomes []DeliveryOutcome `json:"-"`
}

// Pruned returns the endpoints that were removed during the delivery
func (r *DeliveryResult) Pruned() []string {
	var pruned []string
	for _, o := range r.Outcomes {
		if o.Gone {
			pruned = append(pruned, o.Endpoint)
		}
	}
	return pruned
}
