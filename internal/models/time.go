package models

// TimeResponse is the body for GET /hora.
type TimeResponse struct {
	Hora      string `json:"hora"`
	Timestamp int64  `json:"timestamp"`
}
