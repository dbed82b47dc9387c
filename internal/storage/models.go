package storage

// Defaults applied when a customer registers without a plan history.
const (
	DefaultPlan     = "SmartPlan 299"
	DefaultBalance  = 150.0
	DefaultPhone    = "9999999999"
	DefaultDataLeft = "1.5 GB"
)

// Customer is a subscriber record as stored in SQLite.
type Customer struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Plan      string  `json:"plan"`
	Balance   float64 `json:"balance"`
	Phone     string  `json:"phone"`
	DataLeft  string  `json:"data_left"`
	CreatedAt int64   `json:"-"`
}
