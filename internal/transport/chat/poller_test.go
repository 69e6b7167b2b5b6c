package chat

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/repository"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/usecase"
)

var errConnectionLost = errors.New("connection lost")

type mockSource struct {
	mock.Mock
}

func (that *mockSource) Fetch(ctx context.Context) ([]Update, error) {
	args := that.Called(ctx)
	updates, _ := args.Get(0).([]Update)
	return updates, args.Error(1)
}

type mockSink struct {
	mock.Mock
}

func (that *mockSink) Send(ctx context.Context, reply Outgoing) error {
	return that.Called(ctx, reply).Error(0)
}

type panicHandler struct{}

func (panicHandler) Handle(context.Context, usecase.Request) usecase.Reply {
	panic("boom")
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestRouter() *usecase.CommandRouter {
	return usecase.NewCommandRouter(newTestLogger(), repository.NewMatchRegistry(), usecase.DefaultSettings)
}

func TestPoller_ProcessUpdate(t *testing.T) {
	t.Run("Sends the rendered reply to the originating chat", func(t *testing.T) {
		// Given: a poller wired to a real router
		sink := &mockSink{}
		sink.On("Send", mock.Anything, mock.MatchedBy(func(reply Outgoing) bool {
			return reply.Chat == "group-1" && reply.ReplyTo == 0 && reply.Text != ""
		})).Return(nil).Once()
		poller := NewPoller(newTestLogger(), &mockSource{}, sink, newTestRouter())

		// When: a new game command arrives
		poller.ProcessUpdate(context.Background(), Update{ID: 1, Sender: "alice", Chat: "group-1", Text: "/newgame @bob"})

		// Then: exactly one reply is sent
		sink.AssertExpectations(t)
	})

	t.Run("Rejected commands quote the original message", func(t *testing.T) {
		sink := &mockSink{}
		sink.On("Send", mock.Anything, Outgoing{Chat: "group-1", Text: "You're not in a game!", ReplyTo: 5}).Return(nil).Once()
		poller := NewPoller(newTestLogger(), &mockSource{}, sink, newTestRouter())

		poller.ProcessUpdate(context.Background(), Update{ID: 5, Sender: "alice", Chat: "group-1", Text: "end"})

		sink.AssertExpectations(t)
	})

	t.Run("Empty messages and replayed updates are ignored", func(t *testing.T) {
		sink := &mockSink{}
		sink.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
		poller := NewPoller(newTestLogger(), &mockSource{}, sink, newTestRouter())

		poller.ProcessUpdate(context.Background(), Update{ID: 1, Sender: "alice", Chat: "c", Text: ""})
		poller.ProcessUpdate(context.Background(), Update{ID: 2, Sender: "alice", Chat: "c", Text: "help"})
		poller.ProcessUpdate(context.Background(), Update{ID: 2, Sender: "alice", Chat: "c", Text: "help"})

		sink.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("Panicking handler does not stop processing", func(t *testing.T) {
		sink := &mockSink{}
		poller := NewPoller(newTestLogger(), &mockSource{}, sink, panicHandler{})

		assert.NotPanics(t, func() {
			poller.ProcessUpdate(context.Background(), Update{ID: 1, Sender: "alice", Chat: "c", Text: "help"})
		})
		sink.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Send failure is logged, not propagated", func(t *testing.T) {
		sink := &mockSink{}
		sink.On("Send", mock.Anything, mock.Anything).Return(errConnectionLost).Once()
		poller := NewPoller(newTestLogger(), &mockSource{}, sink, newTestRouter())

		assert.NotPanics(t, func() {
			poller.ProcessUpdate(context.Background(), Update{ID: 1, Sender: "alice", Chat: "c", Text: "help"})
		})
		sink.AssertExpectations(t)
	})
}

func TestPoller_Run(t *testing.T) {
	t.Run("Processes a batch in order and stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Given: one batch creating a match and making a move, then no more updates
		source := &mockSource{}
		source.On("Fetch", mock.Anything).Return([]Update{
			{ID: 1, Sender: "alice", Chat: "c", Text: "new bob"},
			{ID: 2, Sender: "alice", Chat: "c", Text: "move 1 1"},
		}, nil).Once()
		source.On("Fetch", mock.Anything).Run(func(mock.Arguments) {
			cancel()
		}).Return(nil, context.Canceled)

		var texts []string
		sink := &mockSink{}
		sink.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			texts = append(texts, args.Get(1).(Outgoing).Text)
		}).Return(nil)

		poller := NewPoller(newTestLogger(), source, sink, newTestRouter())

		// When: the poller runs
		err := poller.Run(ctx)

		// Then: both replies were sent in order and the loop exited cleanly
		require.NoError(t, err)
		require.Len(t, texts, 2)
		assert.Contains(t, texts[0], "Turn: 🔴 alice")
		assert.Contains(t, texts[1], "Turn: 🔵 bob")
	})

	t.Run("Retries after a fetch error", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		source := &mockSource{}
		source.On("Fetch", mock.Anything).Return(nil, errConnectionLost).Once()
		source.On("Fetch", mock.Anything).Run(func(mock.Arguments) {
			cancel()
		}).Return(nil, nil)

		poller := NewPoller(newTestLogger(), source, &mockSink{}, newTestRouter())

		require.NoError(t, poller.Run(ctx))
		source.AssertNumberOfCalls(t, "Fetch", 2)
	})
}
