package domain

import "time"

// EmailDeadLetter records an outbound email that could not be delivered after retries.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type EmailDeadLetter struct {
	DeadLetterID string    `json:"id" dynamodbav:"dead_letter_id"`
	To           string    `json:"to" dynamodbav:"to"`
	Subject      string    `json:"subject" dynamodbav:"subject"`
	Kind         string    `json:"kind" dynamodbav:"kind"`
	Error        string    `json:"error" dynamodbav:"error"`
	Attempts     int       `json:"attempts" dynamodbav:"attempts"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	ExpiresAt    int64     `json:"expires_at" dynamodbav:"expires_at"`
}
