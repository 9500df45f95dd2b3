package gce

type Config struct {
	Project string `json:"project"`

	// Label limits discovery to instances carrying this label, written key or key=value
	Label string `json:"label,omitempty"`
}
