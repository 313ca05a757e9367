// Package support handles the public contact form and the admin inbox that
// answers it by email.
package support

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kusina-api/internal/application/notification"
	"github.com/kusina-api/internal/domain"
	"github.com/kusina-api/internal/infrastructure/smtp"
	"github.com/kusina-api/internal/pkg/id"
)

type Service interface {
	Submit(ctx context.Context, req domain.SubmitTicketRequest) (*domain.SupportTicket, error)
	List(ctx context.Context) ([]domain.SupportTicket, error)
	Reply(ctx context.Context, req domain.ReplyTicketRequest) error
	SetStatus(ctx context.Context, ticketID, status string) error
}

type Repository interface {
	Create(ctx context.Context, t *domain.SupportTicket) error
	Get(ctx context.Context, ticketID string) (*domain.SupportTicket, error)
	List(ctx context.Context) ([]domain.SupportTicket, error)
	SetStatus(ctx context.Context, ticketID, status string, repliedAt *time.Time) error
}

// Mail is satisfied by *notification.Dispatcher. Confirmations go out in the
// background; replies are sent before the ticket is marked Replied.
type Mail interface {
	Dispatch(e notification.Email, onFailure func(error))
	Send(ctx context.Context, e notification.Email) error
}

var errReplyUndelivered = fmt.Errorf("failed to send reply email: %w", domain.ErrUnavailable)

type service struct {
	repo Repository
	mail Mail
	now  func() time.Time
}

func NewService(repo Repository, mail Mail) Service {
	return &service{repo: repo, mail: mail, now: time.Now}
}

func (s *service) Submit(ctx context.Context, req domain.SubmitTicketRequest) (*domain.SupportTicket, error) {
	t := &domain.SupportTicket{
		TicketID:  id.New(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Subject:   req.Subject,
		Message:   req.Message,
		Status:    domain.TicketPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	slog.Info("support ticket created", "ticket_id", t.TicketID, "email", t.Email)

	subject, html, err := smtp.RenderSupportConfirmation(t.Name, t.Subject, t.Message)
	if err != nil {
		slog.Error("support confirmation not sent", "ticket_id", t.TicketID, "err", err)
		return t, nil
	}
	s.mail.Dispatch(notification.Email{To: t.Email, Subject: subject, HTML: html, Kind: string(smtp.KindSupportConfirmation)}, nil)
	return t, nil
}

func (s *service) List(ctx context.Context) ([]domain.SupportTicket, error) {
	return s.repo.List(ctx)
}

// Reply emails the answer and only then marks the ticket Replied, so a failed
// delivery leaves it Pending.
func (s *service) Reply(ctx context.Context, req domain.ReplyTicketRequest) error {
	if _, err := s.repo.Get(ctx, req.TicketID); err != nil {
		return err
	}
	subject, html, err := smtp.RenderSupportReply(req.CustomerName, req.Subject, req.Reply)
	if err != nil {
		return err
	}
	e := notification.Email{To: req.Email, Subject: subject, HTML: html, Kind: string(smtp.KindSupportReply)}
	if err := s.mail.Send(ctx, e); err != nil {
		slog.Error("support reply not delivered", "ticket_id", req.TicketID, "err", err)
		return errReplyUndelivered
	}
	now := s.now().UTC()
	return s.repo.SetStatus(ctx, req.TicketID, domain.TicketReplied, &now)
}

func (s *service) SetStatus(ctx context.Context, ticketID, status string) error {
	switch status {
	case domain.TicketPending, domain.TicketReplied:
	default:
		return fmt.Errorf("invalid status: %w", domain.ErrBadRequest)
	}
	return s.repo.SetStatus(ctx, ticketID, status, nil)
}
