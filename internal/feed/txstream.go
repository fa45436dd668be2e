package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/observability"
)

// TxStreamConfig configures the transaction stream client.
type TxStreamConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the backoff between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultTxStreamConfig returns the default stream configuration.
func DefaultTxStreamConfig() TxStreamConfig {
	return TxStreamConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// TxHandler receives one decoded pool transaction.
type TxHandler func(tx domain.PoolTransaction)

// TxStream subscribes to per-pool transaction feeds over WebSocket.
// It reconnects with exponential backoff and resubscribes to every
// pool that was subscribed before the connection dropped.
type TxStream struct {
	endpoint string
	config   TxStreamConfig
	handler  TxHandler
	metrics  *observability.Metrics
	log      zerolog.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// pools holds the currently subscribed pool ids, kept for
	// resubscription after reconnect.
	pools   map[string]struct{}
	poolsMu sync.Mutex

	done         chan struct{}
	wg           sync.WaitGroup
	reconnecting atomic.Bool
}

// NewTxStream creates a transaction stream client and connects.
func NewTxStream(ctx context.Context, endpoint string, handler TxHandler, metrics *observability.Metrics, logger zerolog.Logger, config *TxStreamConfig) (*TxStream, error) {
	cfg := DefaultTxStreamConfig()
	if config != nil {
		cfg = *config
	}

	s := &TxStream{
		endpoint: endpoint,
		config:   cfg,
		handler:  handler,
		metrics:  metrics,
		log:      logger,
		pools:    make(map[string]struct{}),
		done:     make(chan struct{}),
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	s.wg.Add(2)
	go s.readLoop()
	go s.pingLoop()

	return s, nil
}

func (s *TxStream) connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	s.conn = conn
	return nil
}

// Subscribe starts streaming transactions for a pool. Subscribing to
// an already-subscribed pool is a no-op.
func (s *TxStream) Subscribe(poolID string) error {
	if s.closed.Load() {
		return fmt.Errorf("stream closed")
	}

	s.poolsMu.Lock()
	if _, ok := s.pools[poolID]; ok {
		s.poolsMu.Unlock()
		return nil
	}
	s.pools[poolID] = struct{}{}
	s.poolsMu.Unlock()

	return s.send(txStreamRequest{Op: "subscribe", Pool: poolID})
}

// Unsubscribe stops streaming transactions for a pool.
func (s *TxStream) Unsubscribe(poolID string) error {
	if s.closed.Load() {
		return fmt.Errorf("stream closed")
	}

	s.poolsMu.Lock()
	if _, ok := s.pools[poolID]; !ok {
		s.poolsMu.Unlock()
		return nil
	}
	delete(s.pools, poolID)
	s.poolsMu.Unlock()

	return s.send(txStreamRequest{Op: "unsubscribe", Pool: poolID})
}

func (s *TxStream) send(req txStreamRequest) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("not connected")
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write %s: %w", req.Op, err)
	}
	return nil
}

// Close closes the stream and waits for the background loops.
func (s *TxStream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	return nil
}

func (s *TxStream) readLoop() {
	defer s.wg.Done()

	reconnectDelay := s.config.ReconnectDelay

	for !s.closed.Load() {
		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}

			if s.metrics != nil {
				s.metrics.FeedErrors.WithLabelValues("tx_stream").Inc()
			}
			if !s.reconnecting.Swap(true) {
				go s.reconnect(reconnectDelay)
			}

			reconnectDelay *= 2
			if reconnectDelay > s.config.MaxReconnectDelay {
				reconnectDelay = s.config.MaxReconnectDelay
			}

			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = s.config.ReconnectDelay
		s.handleMessage(message)
	}
}

func (s *TxStream) reconnect(delay time.Duration) {
	defer s.reconnecting.Store(false)

	if s.closed.Load() {
		return
	}

	select {
	case <-s.done:
		return
	case <-time.After(delay):
	}

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.connect(ctx); err != nil {
		s.log.Warn().Err(err).Msg("tx stream reconnect failed, will retry")
		return
	}

	s.resubscribeAll()
	s.log.Info().Msg("tx stream reconnected")
}

func (s *TxStream) resubscribeAll() {
	s.poolsMu.Lock()
	ids := make([]string, 0, len(s.pools))
	for id := range s.pools {
		ids = append(ids, id)
	}
	s.poolsMu.Unlock()

	for _, id := range ids {
		if err := s.send(txStreamRequest{Op: "subscribe", Pool: id}); err != nil {
			s.log.Warn().Err(err).Str("pool_id", id).Msg("resubscribe failed")
		}
	}
}

func (s *TxStream) handleMessage(message []byte) {
	var msg txStreamMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		s.log.Warn().Err(err).Msg("unparseable tx stream message")
		return
	}
	if msg.Type != "transaction" || msg.Tx == nil {
		return
	}

	tx := domain.PoolTransaction{
		Signature: msg.Tx.Signature,
		PoolID:    msg.Tx.PoolID,
		Kind:      domain.TransactionKind(msg.Tx.Kind),
		AmountUSD: msg.Tx.AmountUSD,
		Wallet:    msg.Tx.Wallet,
		BlockTime: msg.Tx.BlockTime,
	}
	if tx.Signature == "" || tx.PoolID == "" {
		return
	}

	if s.metrics != nil {
		s.metrics.TransactionsIngested.Inc()
	}
	s.handler(tx)
}

func (s *TxStream) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
				// An error here means the connection is likely dead;
				// the reader handles the reconnect.
				s.conn.WriteMessage(websocket.PingMessage, nil)
			}
			s.connMu.Unlock()
		}
	}
}

// Wire types.

type txStreamRequest struct {
	Op   string `json:"op"`
	Pool string `json:"pool"`
}

type txStreamMessage struct {
	Type string      `json:"type"`
	Tx   *txWirePool `json:"tx"`
}

type txWirePool struct {
	Signature string  `json:"signature"`
	PoolID    string  `json:"pool_id"`
	Kind      string  `json:"kind"`
	AmountUSD float64 `json:"amount_usd"`
	Wallet    string  `json:"wallet"`
	BlockTime int64   `json:"block_time"`
}
