package support

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kusina-api/internal/application/notification"
	"github.com/kusina-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Create(ctx context.Context, t *domain.SupportTicket) error {
	return m.Called(ctx, t).Error(0)
}
func (m *mockRepo) Get(ctx context.Context, ticketID string) (*domain.SupportTicket, error) {
	args := m.Called(ctx, ticketID)
	if t, _ := args.Get(0).(*domain.SupportTicket); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockRepo) List(ctx context.Context) ([]domain.SupportTicket, error) {
	args := m.Called(ctx)
	ts, _ := args.Get(0).([]domain.SupportTicket)
	return ts, args.Error(1)
}
func (m *mockRepo) SetStatus(ctx context.Context, ticketID, status string, repliedAt *time.Time) error {
	return m.Called(ctx, ticketID, status, repliedAt).Error(0)
}

// fakeMail records what was dispatched in the background and what was sent
// synchronously. sendErr fails every synchronous send.
type fakeMail struct {
	mu         sync.Mutex
	dispatched []notification.Email
	sent       []notification.Email
	sendErr    error
}

func (f *fakeMail) Dispatch(e notification.Email, _ func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, e)
}

func (f *fakeMail) Send(_ context.Context, e notification.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, e)
	return f.sendErr
}

var ctx = context.Background()

func newService(repo Repository, mail Mail) *service {
	s := NewService(repo, mail).(*service)
	s.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	return s
}

// --- Submit ---

func TestSubmit_StoresPendingTicketAndConfirms(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Create", mock.Anything, mock.MatchedBy(func(t *domain.SupportTicket) bool {
		return t.TicketID != "" && t.Status == domain.TicketPending && t.Email == "ana@example.com"
	})).Return(nil)
	mail := &fakeMail{}

	ticket, err := newService(repo, mail).Submit(ctx, domain.SubmitTicketRequest{
		Name: "Ana", Email: "ana@example.com", Subject: "Late order", Message: "Where is it?",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPending, ticket.Status)
	require.Len(t, mail.dispatched, 1)
	assert.Equal(t, "ana@example.com", mail.dispatched[0].To)
	assert.Equal(t, "support-confirmation", mail.dispatched[0].Kind)
	assert.Empty(t, mail.sent)
}

func TestSubmit_StoreFailureSendsNothing(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))
	mail := &fakeMail{}

	_, err := newService(repo, mail).Submit(ctx, domain.SubmitTicketRequest{Name: "Ana", Email: "ana@example.com", Subject: "s", Message: "m"})
	assert.Error(t, err)
	assert.Empty(t, mail.dispatched)
}

// --- Reply ---

func TestReply_SendsThenMarksReplied(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Get", mock.Anything, "t1").Return(&domain.SupportTicket{TicketID: "t1"}, nil)
	repo.On("SetStatus", mock.Anything, "t1", domain.TicketReplied, mock.MatchedBy(func(at *time.Time) bool {
		return at != nil && at.Equal(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	})).Return(nil)
	mail := &fakeMail{}

	err := newService(repo, mail).Reply(ctx, domain.ReplyTicketRequest{
		TicketID: "t1", Email: "ana@example.com", Subject: "Late order", Reply: "On its way.",
	})
	require.NoError(t, err)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "Re: Late order", mail.sent[0].Subject)
	assert.Contains(t, mail.sent[0].HTML, "Valued Customer")
	repo.AssertExpectations(t)
}

func TestReply_DeliveryFailureKeepsPending(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Get", mock.Anything, "t1").Return(&domain.SupportTicket{TicketID: "t1"}, nil)
	mail := &fakeMail{sendErr: errors.New("smtp: 421")}

	err := newService(repo, mail).Reply(ctx, domain.ReplyTicketRequest{TicketID: "t1", Email: "ana@example.com", Subject: "s", Reply: "r"})
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Equal(t, "failed to send reply email", domain.Message(err))
	repo.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReply_UnknownTicket(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Get", mock.Anything, "t9").Return(nil, domain.ErrNotFound)
	mail := &fakeMail{}

	err := newService(repo, mail).Reply(ctx, domain.ReplyTicketRequest{TicketID: "t9", Email: "ana@example.com", Subject: "s", Reply: "r"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, mail.sent)
}

// --- SetStatus ---

func TestSetStatus_Invalid(t *testing.T) {
	repo := &mockRepo{}
	err := newService(repo, &fakeMail{}).SetStatus(ctx, "t1", "Closed")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	repo.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSetStatus_BackToPending(t *testing.T) {
	repo := &mockRepo{}
	repo.On("SetStatus", mock.Anything, "t1", domain.TicketPending, (*time.Time)(nil)).Return(nil)

	require.NoError(t, newService(repo, &fakeMail{}).SetStatus(ctx, "t1", domain.TicketPending))
	repo.AssertExpectations(t)
}
