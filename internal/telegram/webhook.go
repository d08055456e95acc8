package telegram

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SecretHeader carries the secret given to setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookServer receives updates pushed by Telegram.
//
// Routes:
//
//	POST /telegram/{secret}  update delivery
//	GET  /healthz            liveness
type WebhookServer struct {
	addr   string
	secret string
	logger *zap.Logger
}

// NewWebhookServer creates a server listening on addr. Deliveries must carry
// secret both in the path and in SecretHeader.
func NewWebhookServer(addr, secret string, logger *zap.Logger) *WebhookServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookServer{addr: addr, secret: secret, logger: logger}
}

// Listen serves HTTP until ctx is done. The channel is closed after the
// server has shut down and no handler can send any more.
func (s *WebhookServer) Listen(ctx context.Context) <-chan Update {
	ch := make(chan Update)
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(ctx, ch),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		defer close(ch)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("webhook server stopped", zap.Error(err))
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Warn("webhook shutdown", zap.Error(err))
			}
			<-errCh
		}
	}()

	s.logger.Info("webhook listening", zap.String("addr", s.addr))
	return ch
}

// Router builds the HTTP handler. Decoded updates are sent to out until ctx
// is done.
func (s *WebhookServer) Router(ctx context.Context, out chan<- Update) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/telegram/{secret}", func(w http.ResponseWriter, req *http.Request) {
		if !s.authorized(chi.URLParam(req, "secret"), req.Header.Get(SecretHeader)) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var u Update
		if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, 1<<20)).Decode(&u); err != nil {
			s.logger.Debug("bad update body", zap.Error(err))
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		select {
		case out <- u:
			w.WriteHeader(http.StatusOK)
		case <-ctx.Done():
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
		case <-req.Context().Done():
		}
	})

	return r
}

func (s *WebhookServer) authorized(pathSecret, headerSecret string) bool {
	if s.secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(pathSecret), []byte(s.secret)) == 1 &&
		subtle.ConstantTimeCompare([]byte(headerSecret), []byte(s.secret)) == 1
}
