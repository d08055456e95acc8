package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

func TestPoller_Listen(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botT/deleteWebhook":
			_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
		case "/botT/getUpdates":
			switch polls.Add(1) {
			case 1:
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(`bad gateway`))
			case 2:
				_, _ = w.Write([]byte(`{"ok":true,"result":[{"update_id":1,"message":{"message_id":1,"chat":{"id":1},"text":"a"}}]}`))
			default:
				_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
			}
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewPoller(NewClient("T", WithBaseURL(srv.URL)), time.Second, nil)
	p.backoff = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	ch := p.Listen(ctx)

	select {
	case u := <-ch:
		assert.Equal(t, "a", u.Message.Text)
	case <-time.After(5 * time.Second):
		t.Fatal("no update received")
	}

	cancel()
	for range ch {
	}
	require.GreaterOrEqual(t, polls.Load(), int32(2))
}
