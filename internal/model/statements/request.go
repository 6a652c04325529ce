package statements

import (
	"encoding/json"
	"time"
)

// Request asks the statement worker to build one user's monthly statement.
// It travels over Kafka as JSON.
type Request struct {
	UserID      string    `json:"user_id"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewRequest(userID string, month, year int) *Request {
	return &Request{
		UserID:      userID,
		Month:       month,
		Year:        year,
		RequestedAt: time.Now(),
	}
}

func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

func RequestFromJSON(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
