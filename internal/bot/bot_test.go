package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/riverfjs/tghtml"
	"github.com/riverfjs/tghtml/internal/telegram"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type sent struct {
	chatID int64
	text   string
	opts   telegram.SendOptions
}

type fakeSender struct {
	mu      sync.Mutex
	msgs    []sent
	actions int
	// failHTML makes the n-th HTML send (1-based) fail with a parse error.
	failHTML int
	htmlSeen int
	failAll  bool
}

func (f *fakeSender) SendMessage(_ context.Context, chatID int64, text string, opts telegram.SendOptions) (*telegram.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errors.New("network down")
	}
	if opts.ParseMode == telegram.ParseModeHTML {
		f.htmlSeen++
		if f.htmlSeen == f.failHTML {
			return nil, &telegram.APIError{
				Method:      "sendMessage",
				StatusCode:  400,
				ErrorCode:   400,
				Description: "Bad Request: can't parse entities: Unexpected end tag",
			}
		}
	}
	f.msgs = append(f.msgs, sent{chatID: chatID, text: text, opts: opts})
	return &telegram.Message{MessageID: int64(len(f.msgs))}, nil
}

func (f *fakeSender) SendChatAction(_ context.Context, _ int64, action string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if action == telegram.ChatActionTyping {
		f.actions++
	}
	return nil
}

func (f *fakeSender) sent() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.msgs...)
}

func (f *fakeSender) typing() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.actions
}

type fakeAnswerer struct {
	answer string
	err    error
	wait   func()

	mu        sync.Mutex
	questions []string
}

func (f *fakeAnswerer) Answer(_ context.Context, q string) (string, error) {
	f.mu.Lock()
	f.questions = append(f.questions, q)
	f.mu.Unlock()
	if f.wait != nil {
		f.wait()
	}
	return f.answer, f.err
}

func update(chatID int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			MessageID: 1,
			Chat:      &telegram.Chat{ID: chatID, Type: "private"},
			From:      &telegram.User{ID: 7, Username: "alice"},
			Text:      text,
		},
	}
}

func TestBot_Ask(t *testing.T) {
	s := &fakeSender{}
	a := &fakeAnswerer{answer: "**Yes**, see [news](https://example.com/a?x=1&y=2)."}
	b := New(s, a, nil)

	b.HandleUpdate(context.Background(), update(42, "/ask   is it   true? "))

	assert.Equal(t, []string{"is it true?"}, a.questions)
	assert.GreaterOrEqual(t, s.typing(), 1)

	msgs := s.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(42), msgs[0].chatID)
	assert.Equal(t, `<b>Yes</b>, see <a href="https://example.com/a?x=1&amp;y=2">news</a>.`, msgs[0].text)
	assert.Equal(t, telegram.ParseModeHTML, msgs[0].opts.ParseMode)
	assert.False(t, msgs[0].opts.DisablePreview)
}

func TestBot_Usage(t *testing.T) {
	for _, text := range []string{"/ask", "/ask   ", "/start", "/help", "/HELP"} {
		s := &fakeSender{}
		a := &fakeAnswerer{}
		New(s, a, nil).HandleUpdate(context.Background(), update(1, text))

		msgs := s.sent()
		require.Len(t, msgs, 1, text)
		assert.Equal(t, Usage, msgs[0].text)
		assert.Empty(t, msgs[0].opts.ParseMode, "usage must be plain text")
		assert.Empty(t, a.questions)
	}
}

func TestBot_IgnoresNonCommands(t *testing.T) {
	s := &fakeSender{}
	b := New(s, &fakeAnswerer{}, nil, WithUsername("news_bot"))

	for _, u := range []telegram.Update{
		update(1, "hello"),
		update(1, "/unknown thing"),
		update(1, "/ask@other_bot question"),
		{UpdateID: 2},
		{UpdateID: 3, Message: &telegram.Message{Text: "/ask no chat"}},
	} {
		b.HandleUpdate(context.Background(), u)
	}
	assert.Empty(t, s.sent())
}

func TestBot_AskAddressed(t *testing.T) {
	s := &fakeSender{}
	a := &fakeAnswerer{answer: "ok"}
	New(s, a, nil, WithUsername("@News_Bot")).HandleUpdate(context.Background(), update(1, "/ask@news_bot hi"))
	assert.Equal(t, []string{"hi"}, a.questions)
	require.Len(t, s.sent(), 1)
}

func TestBot_AnswerError(t *testing.T) {
	s := &fakeSender{}
	a := &fakeAnswerer{err: errors.New("rag: search: connection refused")}
	New(s, a, nil).HandleUpdate(context.Background(), update(5, "/ask q"))

	msgs := s.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Failed to get an answer: rag: search: connection refused", msgs[0].text)
	assert.Empty(t, msgs[0].opts.ParseMode)
}

func TestBot_LongAnswerInOrder(t *testing.T) {
	var parts []string
	for i := 0; i < 12; i++ {
		parts = append(parts, strings.Repeat(string(rune('a'+i)), 30))
	}
	answer := strings.Join(parts, "\n\n")

	s := &fakeSender{}
	New(s, &fakeAnswerer{answer: answer}, nil, WithLimit(70)).HandleUpdate(context.Background(), update(1, "/ask q"))

	msgs := s.sent()
	require.Len(t, msgs, 6)
	var got []string
	for _, m := range msgs {
		assert.LessOrEqual(t, tghtml.UTF16Len(m.text), 70)
		got = append(got, m.text)
	}
	assert.Equal(t, answer, strings.Join(got, "\n\n"))
}

func TestBot_PlainFallback(t *testing.T) {
	s := &fakeSender{failHTML: 1}
	b := New(s, &fakeAnswerer{answer: "**bold** & `code`"}, nil, WithPlainFallback(true))
	b.HandleUpdate(context.Background(), update(1, "/ask q"))

	msgs := s.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, "bold & code", msgs[0].text)
	assert.Empty(t, msgs[0].opts.ParseMode)
}

func TestBot_NoFallbackByDefault(t *testing.T) {
	s := &fakeSender{failHTML: 1}
	New(s, &fakeAnswerer{answer: "one\n\ntwo"}, nil, WithLimit(4)).HandleUpdate(context.Background(), update(1, "/ask q"))

	// The first fragment fails; the second must not be sent ahead of it.
	assert.Empty(t, s.sent())
}

func TestBot_SendFailureIsLogged(t *testing.T) {
	s := &fakeSender{failAll: true}
	New(s, &fakeAnswerer{answer: "x"}, nil).HandleUpdate(context.Background(), update(1, "/ask q"))
	assert.Empty(t, s.sent())
}

func TestBot_EmptyAnswer(t *testing.T) {
	s := &fakeSender{}
	New(s, &fakeAnswerer{answer: "  \n\n "}, nil).HandleUpdate(context.Background(), update(1, "/ask q"))
	assert.Empty(t, s.sent())
}

func TestBot_AllowList(t *testing.T) {
	s := &fakeSender{}
	a := &fakeAnswerer{answer: "ok"}
	b := New(s, a, nil, WithAllowedChats([]int64{10}))

	b.HandleUpdate(context.Background(), update(11, "/ask q"))
	assert.Empty(t, s.sent())

	b.HandleUpdate(context.Background(), update(10, "/ask q"))
	assert.Len(t, s.sent(), 1)
}

func TestBot_TypingRefreshed(t *testing.T) {
	s := &fakeSender{}
	a := &fakeAnswerer{
		answer: "done",
		wait: func() {
			deadline := time.Now().Add(5 * time.Second)
			for s.typing() < 3 && time.Now().Before(deadline) {
				time.Sleep(time.Millisecond)
			}
		},
	}
	New(s, a, nil, WithTypingInterval(5*time.Millisecond)).HandleUpdate(context.Background(), update(1, "/ask q"))

	assert.GreaterOrEqual(t, s.typing(), 3)
	require.Len(t, s.sent(), 1)

	// The refresher has stopped once the answer is delivered.
	n := s.typing()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, s.typing())
}

type chanSource struct {
	updates []telegram.Update
}

func (c chanSource) Listen(ctx context.Context) <-chan telegram.Update {
	ch := make(chan telegram.Update)
	go func() {
		defer close(ch)
		for _, u := range c.updates {
			select {
			case ch <- u:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func TestBot_RunConcurrent(t *testing.T) {
	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(3)

	s := &fakeSender{}
	a := &fakeAnswerer{
		answer: "ok",
		wait: func() {
			started.Done()
			<-release
		},
	}
	b := New(s, a, nil, WithMaxConcurrent(3))

	done := make(chan error, 1)
	go func() {
		done <- b.Run(context.Background(), chanSource{updates: []telegram.Update{
			update(1, "/ask a"), update(2, "/ask b"), update(3, "/ask c"),
		}})
	}()

	// All three answers are in flight at once.
	started.Wait()
	close(release)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.Len(t, s.sent(), 3)
}
