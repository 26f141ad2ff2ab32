// Package main provides the bridge port service:
// - HTTP entry points for governance, mint tickets and redemptions
// - Callback loop (continuous): host ledger callbacks resuming sagas
// - Query endpoints for state, tokens, fees and outbound records
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"bridge-port/internal/domain"
	"bridge-port/internal/engine"
	"bridge-port/internal/fee"
	"bridge-port/internal/ledger"
	"bridge-port/internal/observability"
	"bridge-port/internal/sigverify"
	"bridge-port/internal/storage"
	chstore "bridge-port/internal/storage/clickhouse"
	"bridge-port/internal/storage/memory"
	pgstore "bridge-port/internal/storage/postgres"
)

// Server holds all components of the bridge port service.
type Server struct {
	engine  *engine.Engine
	tickets storage.TicketRequestStore
	events  storage.EventStore
	logger  *log.Logger

	// State
	mu                 sync.Mutex
	started            time.Time
	lastCallback       time.Time
	callbacksProcessed int
	callbackErrors     int
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("LEDGER_RPC_ENDPOINT"), "Host ledger RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("LEDGER_WS_ENDPOINT"), "Host ledger WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	selfAddr := flag.String("self-addr", os.Getenv("BRIDGE_SELF_ADDR"), "Host ledger account the service operates as")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *wsEndpoint == "" {
		logger.Fatal("--ws-endpoint is required")
	}
	if *selfAddr == "" {
		logger.Fatal("--self-addr is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	states, tickets, events, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Host ledger clients
	rpcClient := ledger.NewHTTPClient(*rpcEndpoint)
	wsClient, err := ledger.NewWSClient(ctx, *wsEndpoint, nil)
	if err != nil {
		logger.Fatalf("Failed to connect to callback feed: %v", err)
	}
	defer wsClient.Close()

	eng := engine.New(engine.Options{
		StateStore:         states,
		TicketRequestStore: tickets,
		Dispatcher:         rpcClient,
		SelfAddr:           *selfAddr,
		Height:             rpcClient.BlockHeight,
		Logger:             log.New(os.Stdout, "[engine] ", log.LstdFlags),
	})

	server := &Server{
		engine:  eng,
		tickets: tickets,
		events:  events,
		logger:  logger,
		started: time.Now(),
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server
	go server.startHTTPServer(*listenAddr)

	// Run the callback loop
	err = server.runCallbackLoop(ctx, wsClient)
	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (storage.StateStore, storage.TicketRequestStore, storage.EventStore, func(), error) {
	if useMemory {
		return memory.NewStateStore(), memory.NewTicketRequestStore(), memory.NewEventStore(), func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// ClickHouse
	chConn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return pgstore.NewStateStore(pool), pgstore.NewTicketRequestStore(pool), chstore.NewEventStore(chConn), cleanup, nil
}

// runCallbackLoop feeds host ledger callbacks into the continuation engine.
func (s *Server) runCallbackLoop(ctx context.Context, ws *ledger.WSClient) error {
	s.logger.Println("Starting callback loop...")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cb, ok := <-ws.Callbacks():
			if !ok {
				return fmt.Errorf("callback feed closed")
			}
			resp, err := s.engine.OnReply(ctx, cb)
			s.mu.Lock()
			s.lastCallback = time.Now()
			s.callbacksProcessed++
			if err != nil {
				s.callbackErrors++
			}
			s.mu.Unlock()
			observability.DefaultMetrics.LastCallbackTimestamp.Set(float64(time.Now().Unix()))

			if err != nil {
				s.logger.Printf("Callback %s failed: %v", cb.DispatchID, err)
				observability.RecordInvocationError("callback")
				continue
			}
			s.recordEvents(ctx, resp)
		}
	}
}

// recordEvents appends a response's events to the event log. Persistence is
// best-effort: the invocation already committed.
func (s *Server) recordEvents(ctx context.Context, resp *engine.Response) {
	if resp == nil || len(resp.Events) == 0 {
		return
	}

	now := time.Now().UnixMilli()
	records := make([]*domain.EventRecord, 0, len(resp.Events))
	for _, e := range resp.Events {
		rec := &domain.EventRecord{
			Timestamp:  now,
			Type:       e.Type,
			Attributes: e.Attributes,
		}
		if v := e.Attr("seq"); v != "" {
			if seq, err := strconv.ParseUint(v, 10, 64); err == nil {
				rec.Seq = &seq
			}
		}
		records = append(records, rec)
	}

	if err := s.events.Append(ctx, records); err != nil {
		s.logger.Printf("Failed to append %d event records: %v", len(records), err)
	}
}

// startHTTPServer starts the HTTP server for entry points, queries and metrics.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Entry points
	mux.HandleFunc("/v1/init", s.handleInit)
	mux.HandleFunc("/v1/directive", s.handleDirective)
	mux.HandleFunc("/v1/mint", s.handleMint)
	mux.HandleFunc("/v1/redeem", s.handleRedeem)
	mux.HandleFunc("/v1/redeem-pooled", s.handleRedeemPooled)
	mux.HandleFunc("/v1/generate-ticket", s.handleGenerateTicket)
	mux.HandleFunc("/v1/min-redeem-amount", s.handleMinRedeemAmount)
	mux.HandleFunc("/v1/route", s.handleUpdateRoute)
	mux.HandleFunc("/v1/token-metadata", s.handleTokenMetadata)
	mux.HandleFunc("/v1/refund", s.handleRefund)
	mux.HandleFunc("/v1/migrate", s.handleMigrate)

	// Queries
	mux.HandleFunc("/v1/state", s.handleState)
	mux.HandleFunc("/v1/tokens", s.handleTokens)
	mux.HandleFunc("/v1/fees", s.handleFees)
	mux.HandleFunc("/v1/fee", s.handleTargetChainFee)
	mux.HandleFunc("/v1/tickets", s.handleTickets)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

type initRequest struct {
	Route    string `json:"route"`
	Admin    string `json:"admin"`
	ChainID  string `json:"chain_id"`
	ChainKey string `json:"chain_key,omitempty"` // base58 ed25519 public key
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	var key []byte
	if req.ChainKey != "" {
		var err error
		key, err = sigverify.ParseChainKey(req.ChainKey)
		if err != nil {
			writeError(w, "init", err)
			return
		}
	}

	resp, err := s.engine.Init(r.Context(), req.Route, req.Admin, domain.ChainID(req.ChainID), key)
	s.finish(w, r, "init", resp, err)
}

type directiveRequest struct {
	Sender    string           `json:"sender"`
	Seq       uint64           `json:"seq"`
	Directive domain.Directive `json:"directive"`
	Signature string           `json:"signature,omitempty"` // base64
}

func (s *Server) handleDirective(w http.ResponseWriter, r *http.Request) {
	var req directiveRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	var sig []byte
	if req.Signature != "" {
		var err error
		sig, err = base64.StdEncoding.DecodeString(req.Signature)
		if err != nil {
			writeError(w, "directive", fmt.Errorf("decode signature: %w", err))
			return
		}
	}

	resp, err := s.engine.ExecDirective(r.Context(), req.Sender, req.Seq, req.Directive, sig)
	s.finish(w, r, "directive", resp, err)
}

type mintRequest struct {
	Sender          string `json:"sender"`
	TicketID        string `json:"ticket_id"`
	TokenID         string `json:"token_id"`
	Receiver        string `json:"receiver"`
	Amount          string `json:"amount"`
	TransmuteTarget string `json:"transmute_target,omitempty"`
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, "mint", err)
		return
	}

	resp, err := s.engine.PrivilegeMintToken(r.Context(), req.Sender, req.TicketID,
		domain.TokenID(req.TokenID), req.Receiver, amount, req.TransmuteTarget)
	s.finish(w, r, "mint", resp, err)
}

type coinPayload struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

func parseFunds(in []coinPayload) ([]domain.Coin, error) {
	out := make([]domain.Coin, 0, len(in))
	for _, c := range in {
		amount, err := domain.ParseAmount(c.Amount)
		if err != nil {
			return nil, fmt.Errorf("fund %s: %w", c.Denom, err)
		}
		out = append(out, domain.Coin{Denom: c.Denom, Amount: amount})
	}
	return out, nil
}

type redeemRequest struct {
	Sender        string        `json:"sender"`
	Funds         []coinPayload `json:"funds"`
	TokenID       string        `json:"token_id"`
	Receiver      string        `json:"receiver"`
	TargetChainID string        `json:"target_chain_id"`
	Amount        string        `json:"amount"`
	Action        string        `json:"action,omitempty"`
	Memo          string        `json:"memo,omitempty"`
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	s.handleOutbound(w, r, "redeem")
}

func (s *Server) handleGenerateTicket(w http.ResponseWriter, r *http.Request) {
	s.handleOutbound(w, r, "generate-ticket")
}

func (s *Server) handleOutbound(w http.ResponseWriter, r *http.Request, entryPoint string) {
	var req redeemRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, entryPoint, err)
		return
	}
	funds, err := parseFunds(req.Funds)
	if err != nil {
		writeError(w, entryPoint, err)
		return
	}

	var resp *engine.Response
	if entryPoint == "redeem" {
		resp, err = s.engine.RedeemToken(r.Context(), req.Sender, funds,
			domain.TokenID(req.TokenID), req.Receiver, domain.ChainID(req.TargetChainID), amount)
	} else {
		action := domain.TxAction(req.Action)
		if action == "" {
			action = domain.ActionTransfer
		}
		resp, err = s.engine.GenerateTicket(r.Context(), req.Sender, funds,
			domain.TokenID(req.TokenID), req.Receiver, domain.ChainID(req.TargetChainID), amount, action, req.Memo)
	}
	s.finish(w, r, entryPoint, resp, err)
}

func (s *Server) handleRedeemPooled(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, "redeem-pooled", err)
		return
	}
	funds, err := parseFunds(req.Funds)
	if err != nil {
		writeError(w, "redeem-pooled", err)
		return
	}

	resp, err := s.engine.RedeemPooledToken(r.Context(), req.Sender, funds,
		req.Receiver, domain.ChainID(req.TargetChainID), amount)
	s.finish(w, r, "redeem-pooled", resp, err)
}

type minRedeemAmountRequest struct {
	Sender        string `json:"sender"`
	TokenID       string `json:"token_id"`
	TargetChainID string `json:"target_chain_id"`
	MinAmount     string `json:"min_amount"`
}

func (s *Server) handleMinRedeemAmount(w http.ResponseWriter, r *http.Request) {
	var req minRedeemAmountRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	min, err := domain.ParseAmount(req.MinAmount)
	if err != nil {
		writeError(w, "min-redeem-amount", err)
		return
	}

	resp, err := s.engine.SetRedeemMinAmount(r.Context(), req.Sender,
		domain.TokenID(req.TokenID), domain.ChainID(req.TargetChainID), min)
	s.finish(w, r, "min-redeem-amount", resp, err)
}

type updateRouteRequest struct {
	Sender string `json:"sender"`
	Route  string `json:"route"`
}

func (s *Server) handleUpdateRoute(w http.ResponseWriter, r *http.Request) {
	var req updateRouteRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	resp, err := s.engine.UpdateRoute(r.Context(), req.Sender, req.Route)
	s.finish(w, r, "route", resp, err)
}

type tokenMetadataRequest struct {
	Sender string       `json:"sender"`
	Token  domain.Token `json:"token"`
}

func (s *Server) handleTokenMetadata(w http.ResponseWriter, r *http.Request) {
	var req tokenMetadataRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	resp, err := s.engine.UpdateTokenMetadata(r.Context(), req.Sender, req.Token)
	s.finish(w, r, "token-metadata", resp, err)
}

type refundRequest struct {
	Sender   string      `json:"sender"`
	Receiver string      `json:"receiver"`
	Coin     coinPayload `json:"coin"`
}

func (s *Server) handleRefund(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	amount, err := domain.ParseAmount(req.Coin.Amount)
	if err != nil {
		writeError(w, "refund", err)
		return
	}

	resp, err := s.engine.Refund(r.Context(), req.Sender, req.Receiver,
		domain.Coin{Denom: req.Coin.Denom, Amount: amount})
	s.finish(w, r, "refund", resp, err)
}

type migrateRequest struct {
	Sender string `json:"sender"`
}

func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	var req migrateRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	resp, err := s.engine.Migrate(r.Context(), req.Sender)
	s.finish(w, r, "migrate", resp, err)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, err := s.engine.GetState(r.Context())
	if err != nil {
		writeError(w, "state", err)
		return
	}
	writeJSON(w, st)
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.engine.GetTokenList(r.Context())
	if err != nil {
		writeError(w, "tokens", err)
		return
	}
	writeJSON(w, tokens)
}

func (s *Server) handleFees(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.GetFeeInfo(r.Context())
	if err != nil {
		writeError(w, "fees", err)
		return
	}
	writeJSON(w, info)
}

func (s *Server) handleTargetChainFee(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target_chain_id")
	if target == "" {
		http.Error(w, "target_chain_id is required", http.StatusBadRequest)
		return
	}
	chainFee, err := s.engine.GetTargetChainFee(r.Context(), domain.ChainID(target))
	if err != nil {
		writeError(w, "fee", err)
		return
	}
	writeJSON(w, chainFee)
}

// handleTickets serves outbound records by seq, seq range or target chain.
func (s *Server) handleTickets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if v := q.Get("seq"); v != "" {
		seq, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid seq", http.StatusBadRequest)
			return
		}
		req, err := s.tickets.GetBySeq(r.Context(), seq)
		if err != nil {
			writeError(w, "tickets", err)
			return
		}
		writeJSON(w, req)
		return
	}

	if v := q.Get("target_chain_id"); v != "" {
		reqs, err := s.tickets.GetByTargetChain(r.Context(), domain.ChainID(v))
		if err != nil {
			writeError(w, "tickets", err)
			return
		}
		writeJSON(w, reqs)
		return
	}

	start, err := strconv.ParseUint(orDefault(q.Get("start"), "0"), 10, 64)
	if err != nil {
		http.Error(w, "invalid start", http.StatusBadRequest)
		return
	}
	end, err := strconv.ParseUint(orDefault(q.Get("end"), strconv.FormatUint(^uint64(0), 10)), 10, 64)
	if err != nil {
		http.Error(w, "invalid end", http.StatusBadRequest)
		return
	}
	reqs, err := s.tickets.GetBySeqRange(r.Context(), start, end)
	if err != nil {
		writeError(w, "tickets", err)
		return
	}
	writeJSON(w, reqs)
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status             string    `json:"status"`
	Uptime             string    `json:"uptime"`
	Started            time.Time `json:"started"`
	LastCallback       time.Time `json:"last_callback,omitempty"`
	CallbacksProcessed int       `json:"callbacks_processed"`
	CallbackErrors     int       `json:"callback_errors"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, StatusResponse{
		Status:             "running",
		Uptime:             time.Since(s.started).String(),
		Started:            s.started,
		LastCallback:       s.lastCallback,
		CallbacksProcessed: s.callbacksProcessed,
		CallbackErrors:     s.callbackErrors,
	})
}

// finish records the invocation outcome and writes the HTTP response.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, entryPoint string, resp *engine.Response, err error) {
	if err != nil {
		observability.RecordInvocationError(entryPoint)
		writeError(w, entryPoint, err)
		return
	}
	s.recordEvents(r.Context(), resp)
	writeJSON(w, resp)
}

func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError maps engine and storage errors to HTTP status codes.
func writeError(w http.ResponseWriter, entryPoint string, err error) {
	status := http.StatusInternalServerError

	var feeErr *fee.IncorrectFeeError
	var minErr *engine.RedeemBelowMinimumError
	switch {
	case errors.Is(err, engine.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, engine.ErrNotInitialized),
		errors.Is(err, engine.ErrTokenNotFound),
		errors.Is(err, engine.ErrChainNotFound),
		errors.Is(err, engine.ErrTargetChainNotFound),
		errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrAlreadyInitialized),
		errors.Is(err, engine.ErrTokenAlreadyExists),
		errors.Is(err, engine.ErrDirectiveAlreadyHandled),
		errors.Is(err, engine.ErrTicketAlreadyHandled):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrChainInactive),
		errors.Is(err, engine.ErrTargetChainInactive),
		errors.Is(err, engine.ErrUnsupportedTransmute),
		errors.Is(err, engine.ErrVersionGuard),
		errors.Is(err, engine.ErrInvalidAction),
		errors.Is(err, fee.ErrFeeNotSet),
		errors.Is(err, domain.ErrMalformedDirective),
		errors.Is(err, sigverify.ErrBadSignature),
		errors.Is(err, sigverify.ErrInvalidChainKey),
		errors.As(err, &feeErr),
		errors.As(err, &minErr):
		status = http.StatusUnprocessableEntity
	}

	http.Error(w, fmt.Sprintf("%s: %v", entryPoint, err), status)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
