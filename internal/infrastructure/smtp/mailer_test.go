package smtp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureTransport struct {
	sent []*gomail.Message
	from string
	to   []string
	err  error
}

func (c *captureTransport) Send(_ context.Context, from string, to []string, msg io.WriterTo) error {
	c.from, c.to = from, to
	c.sent = append(c.sent, msg.(*gomail.Message))
	return c.err
}

func TestSendEmail_SetsHeaders(t *testing.T) {
	cs := &captureTransport{}
	m := &mailer{transport: cs, from: "noreply@kusina.local", fromName: "Kusina"}

	msgID, err := m.SendEmail(context.Background(), "ana@example.com", "Hello", "<p>hi</p>")
	require.NoError(t, err)
	require.Len(t, cs.sent, 1)
	assert.Equal(t, "noreply@kusina.local", cs.from)
	assert.Equal(t, []string{"ana@example.com"}, cs.to)

	msg := cs.sent[0]
	assert.Equal(t, []string{"ana@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Hello"}, msg.GetHeader("Subject"))
	assert.Equal(t, []string{msgID}, msg.GetHeader("Message-ID"))
	assert.True(t, strings.HasSuffix(msgID, "@kusina.local>"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<p>hi</p>")
}

func TestSendEmail_DialError(t *testing.T) {
	m := &mailer{transport: &captureTransport{err: errors.New("connection refused")}, from: "a@b.c"}

	_, err := m.SendEmail(context.Background(), "x@y.z", "s", "b")
	assert.ErrorContains(t, err, "connection refused")
}

func TestSendEmail_CancelledContext(t *testing.T) {
	cs := &captureTransport{}
	m := &mailer{transport: cs, from: "a@b.c"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.SendEmail(ctx, "x@y.z", "s", "b")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, cs.sent)
}

// listen starts a TCP listener on loopback and hands every accepted
// connection to serve.
func listen(t *testing.T, serve func(net.Conn)) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var wg sync.WaitGroup
	t.Cleanup(func() {
		_ = ln.Close()
		wg.Wait()
	})
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer conn.Close()
				serve(conn)
			}()
		}
	}()
	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func TestRelay_StalledServerHonoursDeadline(t *testing.T) {
	release := make(chan struct{})
	host, port := listen(t, func(net.Conn) { <-release })
	t.Cleanup(func() { close(release) })
	m := &mailer{transport: &relay{host: host, port: port}, from: "noreply@kusina.local"}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := m.SendEmail(ctx, "ana@example.com", "Hello", "<p>hi</p>")

	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRelay_CancelAbortsExchange(t *testing.T) {
	release := make(chan struct{})
	host, port := listen(t, func(net.Conn) { <-release })
	t.Cleanup(func() { close(release) })
	m := &mailer{transport: &relay{host: host, port: port}, from: "noreply@kusina.local"}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)
	_, err := m.SendEmail(ctx, "ana@example.com", "Hello", "<p>hi</p>")

	assert.ErrorIs(t, err, context.Canceled)
}

// scriptedSMTP answers the commands net/smtp issues for a plain delivery and
// records the DATA section.
func scriptedSMTP(data *bytes.Buffer, mu *sync.Mutex) func(net.Conn) {
	return func(conn net.Conn) {
		r := bufio.NewReader(conn)
		reply := func(s string) { _, _ = io.WriteString(conn, s+"\r\n") }
		reply("220 localhost ESMTP")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				reply("250 localhost")
			case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
				reply("250 OK")
			case cmd == "DATA":
				reply("354 go ahead")
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					mu.Lock()
					data.WriteString(l)
					mu.Unlock()
				}
				reply("250 queued")
			case cmd == "QUIT":
				reply("221 bye")
				return
			default:
				reply("502 not implemented")
			}
		}
	}
}

func TestRelay_DeliversMessage(t *testing.T) {
	var data bytes.Buffer
	var mu sync.Mutex
	host, port := listen(t, scriptedSMTP(&data, &mu))
	m := &mailer{transport: &relay{host: host, port: port}, from: "noreply@kusina.local", fromName: "Kusina"}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	msgID, err := m.SendEmail(ctx, "ana@example.com", "Your code", "<p>123456</p>")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, data.String(), "Subject: Your code")
	assert.Contains(t, data.String(), "Message-ID: "+msgID)
	assert.Contains(t, data.String(), "<p>123456</p>")
}

func TestNewMessageID_FallbackDomain(t *testing.T) {
	assert.True(t, strings.HasSuffix(newMessageID("no-at-sign"), "@localhost>"))
}

func TestRenderCode(t *testing.T) {
	for _, kind := range []Kind{KindSignup, KindLogin, KindPasswordReset, KindPasswordChange} {
		subject, body, err := RenderCode(kind, "Ana", "123456", 10)
		require.NoError(t, err, kind)
		assert.NotEmpty(t, subject)
		assert.Contains(t, body, "123456")
		assert.Contains(t, body, "Hi Ana,")
		assert.Contains(t, body, "10 minutes")
	}
}

func TestRenderCode_EscapesName(t *testing.T) {
	_, body, err := RenderCode(KindLogin, "<script>", "111111", 10)
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestRenderCode_UnknownKind(t *testing.T) {
	_, _, err := RenderCode(Kind("welcome"), "Ana", "1", 10)
	assert.Error(t, err)
}

func TestRenderSupportConfirmation(t *testing.T) {
	subject, body, err := RenderSupportConfirmation("Ana", "Late order", "Where is <b>it</b>?")
	require.NoError(t, err)
	assert.Equal(t, "We received your message - Kusina", subject)
	assert.Contains(t, body, "Hello Ana!")
	assert.Contains(t, body, "Late order")
	assert.NotContains(t, body, "<b>it</b>")
}

func TestRenderSupportReply_DefaultsName(t *testing.T) {
	subject, body, err := RenderSupportReply("", "Late order", "On its way.")
	require.NoError(t, err)
	assert.Equal(t, "Re: Late order", subject)
	assert.Contains(t, body, "Hello Valued Customer!")
	assert.Contains(t, body, "On its way.")
}
