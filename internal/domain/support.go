package domain

import "time"

const (
	TicketPending = "Pending"
	TicketReplied = "Replied"
)

// SupportTicket is a message sent through the public contact form.
type SupportTicket struct {
	TicketID  string     `json:"id" dynamodbav:"ticket_id"`
	Name      string     `json:"name" dynamodbav:"name"`
	Email     string     `json:"email" dynamodbav:"email"`
	Phone     *string    `json:"phone" dynamodbav:"phone"`
	Subject   string     `json:"subject" dynamodbav:"subject"`
	Message   string     `json:"message" dynamodbav:"message"`
	Status    string     `json:"status" dynamodbav:"status"`
	CreatedAt time.Time  `json:"created_at" dynamodbav:"created_at"`
	RepliedAt *time.Time `json:"replied_at,omitempty" dynamodbav:"replied_at"`
}

type SubmitTicketRequest struct {
	Name    string  `json:"name" validate:"required"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone"`
	Subject string  `json:"subject" validate:"required"`
	Message string  `json:"message" validate:"required"`
}

type ReplyTicketRequest struct {
	TicketID     string `json:"ticketId" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Subject      string `json:"subject" validate:"required"`
	Reply        string `json:"reply" validate:"required"`
	CustomerName string `json:"customerName"`
}

type TicketStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
