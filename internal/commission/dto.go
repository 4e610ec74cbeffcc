// AngelaMos | 2026
// dto.go

package commission

import (
	"time"
)

type RecordResponse struct {
	ID          string    `json:"id"`
	Level       int       `json:"level"`
	EventType   EventType `json:"event_type"`
	FromUserID  string    `json:"from_user_id"`
	Amount      float64   `json:"amount"`
	RateApplied float64   `json:"rate_applied,omitempty"`
	Currency    Currency  `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToRecordResponse(rec *Record) RecordResponse {
	return RecordResponse{
		ID:          rec.ID,
		Level:       rec.Level,
		EventType:   rec.EventType,
		FromUserID:  rec.FromUserID,
		Amount:      rec.Amount,
		RateApplied: rec.RateApplied,
		Currency:    rec.Currency,
		CreatedAt:   rec.CreatedAt,
	}
}

func ToRecordResponses(recs []Record) []RecordResponse {
	out := make([]RecordResponse, len(recs))
	for i := range recs {
		out[i] = ToRecordResponse(&recs[i])
	}
	return out
}
