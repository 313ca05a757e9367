package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/kusina-api/internal/application/realtime"
	"github.com/kusina-api/internal/domain"
	jwtinfra "github.com/kusina-api/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOrders struct{ mock.Mock }

func (m *mockOrders) UpdateDeliveryStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, status)
	if o, _ := args.Get(0).(*domain.Order); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestConn(t *testing.T, hub *realtime.Hub, identity *jwtinfra.Claims) *conn {
	t.Helper()
	c := newConn(nil, identity, Options{}.withDefaults())
	hub.Connect(c)
	return c
}

func adminClaims() *jwtinfra.Claims {
	return &jwtinfra.Claims{UserID: "a1", Email: "admin@kusina.local", Role: domain.RoleAdmin}
}

func customerClaims(userID string) *jwtinfra.Claims {
	return &jwtinfra.Claims{UserID: userID, Email: userID + "@example.com", Role: domain.RoleCustomer}
}

func drain(c *conn) []realtime.Message {
	var out []realtime.Message
	for {
		select {
		case m := <-c.send:
			out = append(out, m)
		default:
			return out
		}
	}
}

func event(name string, data any) envelope {
	raw, _ := json.Marshal(data)
	return envelope{Event: name, Data: raw}
}

func TestJoinUser_AcceptsBothSpellings(t *testing.T) {
	hub := realtime.NewHub()
	e := NewEvents(hub, &mockOrders{})
	a := newTestConn(t, hub, customerClaims("u1"))
	b := newTestConn(t, hub, adminClaims())

	e.Handle(context.Background(), a, event(EventJoinUser, map[string]string{"userId": "u1"}))
	e.Handle(context.Background(), b, event(EventJoinUser, map[string]string{"user_id": "u1"}))

	assert.ElementsMatch(t, []string{a.id, b.id}, hub.Members("user-u1"))
	msgs := drain(a)
	require.Len(t, msgs, 1)
	assert.Equal(t, realtime.EventJoinedUserRoom, msgs[0].Event)
	assert.Equal(t, realtime.JoinedUserRoom{UserID: "u1", Room: "user-u1"}, msgs[0].Data)
}

func TestJoinUser_MissingID(t *testing.T) {
	hub := realtime.NewHub()
	e := NewEvents(hub, &mockOrders{})
	c := newTestConn(t, hub, customerClaims("u1"))

	e.Handle(context.Background(), c, envelope{Event: EventJoinUser})

	msgs := drain(c)
	require.Len(t, msgs, 1)
	assert.Equal(t, realtime.EventError, msgs[0].Event)
	assert.Equal(t, "userId is required", msgs[0].Data.(realtime.ErrorPayload).Message)
	assert.Empty(t, hub.Rooms(c.id))
}

func TestJoinUser_AuthenticatedCustomerOnlyOwnRoom(t *testing.T) {
	hub := realtime.NewHub()
	e := NewEvents(hub, &mockOrders{})
	c := newTestConn(t, hub, customerClaims("u1"))

	e.Handle(context.Background(), c, event(EventJoinUser, map[string]string{"userId": "u2"}))
	assert.Empty(t, hub.Members("user-u2"))

	e.Handle(context.Background(), c, event(EventJoinUser, map[string]string{"userId": "u1"}))
	assert.Equal(t, []string{c.id}, hub.Members("user-u1"))
}

func TestJoinUser_AnonymousRejected(t *testing.T) {
	hub := realtime.NewHub()
	e := NewEvents(hub, &mockOrders{})
	c := newTestConn(t, hub, nil)

	e.Handle(context.Background(), c, event(EventJoinUser, map[string]string{"userId": "u1"}))

	assert.Empty(t, hub.Members("user-u1"))
	msgs := drain(c)
	require.Len(t, msgs, 1)
	assert.Equal(t, "authentication required", msgs[0].Data.(realtime.ErrorPayload).Message)
}

func TestAdminConnect(t *testing.T) {
	hub := realtime.NewHub()
	e := NewEvents(hub, &mockOrders{})
	anon := newTestConn(t, hub, nil)
	admin := newTestConn(t, hub, adminClaims())
	customer := newTestConn(t, hub, customerClaims("u1"))

	for _, c := range []*conn{anon, admin, customer} {
		e.Handle(context.Background(), c, envelope{Event: EventAdminConnect})
	}

	assert.Equal(t, []string{admin.id}, hub.Members(realtime.AdminRoom))
	assert.Empty(t, drain(admin))
	assert.Equal(t, "authentication required", drain(anon)[0].Data.(realtime.ErrorPayload).Message)
	assert.Equal(t, "admin role required", drain(customer)[0].Data.(realtime.ErrorPayload).Message)
}

func TestTrackAndStopTracking(t *testing.T) {
	hub := realtime.NewHub()
	e := NewEvents(hub, &mockOrders{})
	c := newTestConn(t, hub, nil)

	e.Handle(context.Background(), c, event(EventTrackOrder, map[string]string{"order_id": "KK1"}))
	assert.Equal(t, []string{c.id}, hub.Trackers("KK1"))
	assert.Equal(t, []string{c.id}, hub.Members("order-KK1"))
	msgs := drain(c)
	require.Len(t, msgs, 1)
	assert.Equal(t, realtime.EventTrackingStarted, msgs[0].Event)

	e.Handle(context.Background(), c, event(EventStopTracking, map[string]string{"orderId": "KK1"}))
	assert.False(t, hub.IsTracked("KK1"))
	assert.Empty(t, hub.Members("order-KK1"))
}

func TestUpdateLocation_RelaysToOrderRoom(t *testing.T) {
	hub := realtime.NewHub()
	e := NewEvents(hub, &mockOrders{})
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return at }
	courier := newTestConn(t, hub, adminClaims())
	watcher := newTestConn(t, hub, nil)
	hub.TrackOrder(watcher.id, "KK1")

	e.Handle(context.Background(), courier, event(EventUpdateLocation, map[string]any{
		"orderId": "KK1", "latitude": 14.5995, "longitude": 120.9842,
	}))

	assert.Empty(t, drain(courier))
	msgs := drain(watcher)
	require.Len(t, msgs, 1)
	assert.Equal(t, realtime.EventLocationUpdate, msgs[0].Event)
	assert.Equal(t, realtime.LocationUpdate{OrderID: "KK1", Latitude: 14.5995, Longitude: 120.9842, Timestamp: at}, msgs[0].Data)
}

func TestUpdateLocation_RequiresAdmin(t *testing.T) {
	hub := realtime.NewHub()
	e := NewEvents(hub, &mockOrders{})
	watcher := newTestConn(t, hub, nil)
	hub.TrackOrder(watcher.id, "KK1")
	payload := map[string]any{"orderId": "KK1", "latitude": 14.5995, "longitude": 120.9842}

	for _, c := range []*conn{newTestConn(t, hub, nil), newTestConn(t, hub, customerClaims("u1"))} {
		e.Handle(context.Background(), c, event(EventUpdateLocation, payload))
		msgs := drain(c)
		require.Len(t, msgs, 1)
		assert.Equal(t, realtime.EventError, msgs[0].Event)
	}
	assert.Empty(t, drain(watcher))
}

func TestUpdateLocation_Validation(t *testing.T) {
	cases := map[string]map[string]any{
		"missing order":     {"latitude": 1.0, "longitude": 1.0},
		"missing latitude":  {"orderId": "KK1", "longitude": 1.0},
		"latitude range":    {"orderId": "KK1", "latitude": 91.0, "longitude": 1.0},
		"longitude range":   {"orderId": "KK1", "latitude": 1.0, "longitude": -181.0},
		"non-numeric value": {"orderId": "KK1", "latitude": "north", "longitude": 1.0},
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			hub := realtime.NewHub()
			e := NewEvents(hub, &mockOrders{})
			courier := newTestConn(t, hub, adminClaims())
			watcher := newTestConn(t, hub, nil)
			hub.TrackOrder(watcher.id, "KK1")

			e.Handle(context.Background(), courier, event(EventUpdateLocation, payload))

			assert.Empty(t, drain(watcher))
			msgs := drain(courier)
			require.Len(t, msgs, 1)
			assert.Equal(t, realtime.EventError, msgs[0].Event)
		})
	}
}

func TestUpdateLocation_RateLimited(t *testing.T) {
	hub := realtime.NewHub()
	e := NewEvents(hub, &mockOrders{})
	courier := newTestConn(t, hub, adminClaims())
	watcher := newTestConn(t, hub, nil)
	hub.TrackOrder(watcher.id, "KK1")

	for i := 0; i < defaultLocationBurst+1; i++ {
		e.Handle(context.Background(), courier, event(EventUpdateLocation, map[string]any{
			"orderId": "KK1", "latitude": 14.0, "longitude": 121.0,
		}))
	}

	assert.Len(t, drain(watcher), defaultLocationBurst)
	msgs := drain(courier)
	require.Len(t, msgs, 1)
	assert.Equal(t, "location updates are sent too often", msgs[0].Data.(realtime.ErrorPayload).Message)
}

func TestOrderDelivered(t *testing.T) {
	hub := realtime.NewHub()
	orders := &mockOrders{}
	orders.On("UpdateDeliveryStatus", mock.Anything, "KK1", domain.DeliveryDelivered).Return(&domain.Order{OrderID: "KK1"}, nil)
	e := NewEvents(hub, orders)
	c := newTestConn(t, hub, adminClaims())

	e.Handle(context.Background(), c, event(EventOrderDelivered, map[string]string{"orderId": "KK1"}))

	orders.AssertExpectations(t)
	assert.Empty(t, drain(c))
}

func TestOrderDelivered_AnonymousRejected(t *testing.T) {
	hub := realtime.NewHub()
	orders := &mockOrders{}
	e := NewEvents(hub, orders)
	c := newTestConn(t, hub, nil)

	e.Handle(context.Background(), c, event(EventOrderDelivered, map[string]string{"orderId": "KK1"}))

	orders.AssertNotCalled(t, "UpdateDeliveryStatus", mock.Anything, mock.Anything, mock.Anything)
	msgs := drain(c)
	require.Len(t, msgs, 1)
	assert.Equal(t, "authentication required", msgs[0].Data.(realtime.ErrorPayload).Message)
}

func TestAdminUpdateStatus(t *testing.T) {
	hub := realtime.NewHub()
	orders := &mockOrders{}
	orders.On("UpdateDeliveryStatus", mock.Anything, "KK1", domain.DeliveryPreparing).Return(&domain.Order{OrderID: "KK1"}, nil)
	orders.On("UpdateDeliveryStatus", mock.Anything, "KK2", "teleported").
		Return(nil, fmt.Errorf("invalid delivery status: %w", domain.ErrBadRequest))
	orders.On("UpdateDeliveryStatus", mock.Anything, "KK3", domain.DeliveryPreparing).
		Return(nil, fmt.Errorf("dynamo: connection reset"))
	e := NewEvents(hub, orders)
	c := newTestConn(t, hub, adminClaims())

	e.Handle(context.Background(), c, event(EventAdminUpdateStatus, map[string]string{"orderId": "KK1", "deliveryStatus": "preparing"}))
	e.Handle(context.Background(), c, event(EventAdminUpdateStatus, map[string]string{"order_id": "KK2", "delivery_status": "teleported"}))
	e.Handle(context.Background(), c, event(EventAdminUpdateStatus, map[string]string{"orderId": "KK3", "deliveryStatus": "preparing"}))
	e.Handle(context.Background(), c, event(EventAdminUpdateStatus, map[string]string{"orderId": "KK4"}))

	msgs := drain(c)
	require.Len(t, msgs, 4)
	assert.Equal(t, realtime.EventStatusUpdateSuccess, msgs[0].Event)
	assert.Equal(t, realtime.StatusUpdateResult{OrderID: "KK1", DeliveryStatus: "preparing"}, msgs[0].Data)
	assert.Equal(t, realtime.EventStatusUpdateError, msgs[1].Event)
	assert.Equal(t, realtime.StatusUpdateResult{OrderID: "KK2", Error: "invalid delivery status"}, msgs[1].Data)
	assert.Equal(t, realtime.StatusUpdateResult{OrderID: "KK3", Error: "internal error"}, msgs[2].Data)
	assert.Equal(t, realtime.EventStatusUpdateError, msgs[3].Event)
}

func TestAdminUpdateStatus_CustomerRejected(t *testing.T) {
	hub := realtime.NewHub()
	orders := &mockOrders{}
	e := NewEvents(hub, orders)
	c := newTestConn(t, hub, customerClaims("u1"))

	e.Handle(context.Background(), c, event(EventAdminUpdateStatus, map[string]string{"orderId": "KK1", "deliveryStatus": "preparing"}))

	orders.AssertNotCalled(t, "UpdateDeliveryStatus", mock.Anything, mock.Anything, mock.Anything)
	msgs := drain(c)
	require.Len(t, msgs, 1)
	assert.Equal(t, realtime.EventError, msgs[0].Event)
	assert.Equal(t, "admin role required", msgs[0].Data.(realtime.ErrorPayload).Message)
}

func TestUnknownEvent(t *testing.T) {
	hub := realtime.NewHub()
	e := NewEvents(hub, &mockOrders{})
	c := newTestConn(t, hub, nil)

	e.Handle(context.Background(), c, envelope{Event: "dance"})

	msgs := drain(c)
	require.Len(t, msgs, 1)
	assert.Equal(t, realtime.ErrorPayload{Event: "dance", Message: `unknown event "dance"`}, msgs[0].Data)
}

func TestConnSend_DropsWhenFullOrClosed(t *testing.T) {
	c := newConn(nil, nil, Options{SendBuffer: 1}.withDefaults())
	assert.True(t, c.Send(realtime.Message{Event: "a"}))
	assert.False(t, c.Send(realtime.Message{Event: "b"}))

	drain(c)
	c.close()
	assert.False(t, c.Send(realtime.Message{Event: "c"}))
}
