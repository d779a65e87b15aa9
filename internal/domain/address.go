package domain

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

// IsComplete reports whether every postal field was recovered.
func (a Address) IsComplete() bool {
	return a.Street != "" && a.City != "" && a.State != "" && a.Pincode != ""
}
