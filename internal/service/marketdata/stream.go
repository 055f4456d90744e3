package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"StockCast/internal/domain/models"
	"StockCast/pkg/logger"
)

// Stream keeps a live last-quote map fed by the Finnhub trade websocket.
// It reconnects with a fixed delay until its context is cancelled. Only
// the most recent quote per symbol is retained.
type Stream struct {
	apiKey         string
	wsURL          string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	mu     sync.RWMutex
	latest map[string]models.Quote

	cancel context.CancelFunc
	done   chan struct{}
}

// NewStream builds a quote stream for the given symbols.
func NewStream(apiKey, wsURL string, symbols []string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) *Stream {
	return &Stream{
		apiKey:         apiKey,
		wsURL:          wsURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
		latest:         make(map[string]models.Quote),
	}
}

type wsTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string    `json:"type"`
	Data []wsTrade `json:"data"`
}

// Start launches the connect/read/reconnect loop in the background and
// returns once the loop is running. Stream errors are logged and trigger
// reconnects; they never propagate to callers of Latest.
func (s *Stream) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		for {
			if err := s.runOnce(ctx); err != nil {
				s.log.Warn("quote stream disconnected", logger.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.reconnectDelay):
			}
		}
	}()
	return nil
}

// Latest returns the most recent quote seen for a symbol.
func (s *Stream) Latest(symbol string) (models.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.latest[symbol]
	return q, ok
}

// Close stops the stream and waits for the loop to exit.
func (s *Stream) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.done != nil {
		<-s.done
	}
	return nil
}

// runOnce runs a single connect-subscribe-read cycle and returns when the
// connection drops or the context is cancelled.
func (s *Stream) runOnce(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", s.wsURL, s.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("quote stream connect: %w", err)
	}
	defer conn.Close()

	for _, sym := range s.symbols {
		if err := conn.WriteJSON(map[string]string{"type": "subscribe", "symbol": sym}); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}
	s.log.Info("quote stream connected", logger.Int("symbols", len(s.symbols)))

	pingCtx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pingCtx.Done():
				return
			case <-ticker.C:
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		_, b, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("quote stream read: %w", err)
		}
		var m wsMessage
		if err := json.Unmarshal(b, &m); err != nil || m.Type != "trade" {
			continue
		}
		s.record(m.Data)
	}
}

func (s *Stream) record(trades []wsTrade) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range trades {
		s.latest[t.S] = models.Quote{
			Symbol:    t.S,
			Price:     t.P,
			Volume:    t.V,
			Timestamp: time.UnixMilli(t.T).UTC(),
		}
	}
}
