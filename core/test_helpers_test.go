package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
)

var (
	testAccountA = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	testAccountB = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

type recordedRequest struct {
	method string
	params any
}

type fakeProvider struct {
	mu        sync.Mutex
	requests  []recordedRequest
	responses map[string]json.RawMessage
	errs      map[string]error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		responses: map[string]json.RawMessage{},
		errs:      map[string]error{},
	}
}

func (p *fakeProvider) Request(_ context.Context, method string, params any) (json.RawMessage, error) {
	p.mu.Lock()
	p.requests = append(p.requests, recordedRequest{method: method, params: params})
	response, hasResponse := p.responses[method]
	err := p.errs[method]
	p.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if hasResponse {
		return response, nil
	}
	return json.RawMessage(`{}`), nil
}

func (p *fakeProvider) respond(method string, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses[method] = json.RawMessage(body)
}

func (p *fakeProvider) fail(method string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[method] = err
}

func (p *fakeProvider) methods() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.requests))
	for _, request := range p.requests {
		out = append(out, request.method)
	}
	return out
}

func (p *fakeProvider) lastRequest(method string) (recordedRequest, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.requests) - 1; i >= 0; i-- {
		if p.requests[i].method == method {
			return p.requests[i], true
		}
	}
	return recordedRequest{}, false
}

func (p *fakeProvider) calls(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	count := 0
	for _, request := range p.requests {
		if request.method == method {
			count++
		}
	}
	return count
}

type fakeConnector struct {
	uid      string
	id       string
	emitter  *Emitter
	provider *fakeProvider

	noProvider  bool
	providerErr error
	session     Session
	connectErr  error

	mu           sync.Mutex
	connectCalls []ConnectorConnectOptions
	disconnects  int
}

func newFakeConnector(bus evbus.Bus, id string, chain ChainID, accounts ...Address) *fakeConnector {
	uid := uuid.NewString()
	return &fakeConnector{
		uid:      uid,
		id:       id,
		emitter:  NewEmitter(uid, bus),
		provider: newFakeProvider(),
		session:  Session{Accounts: accounts, ChainID: chain},
	}
}

func (c *fakeConnector) UID() string { return c.uid }

func (c *fakeConnector) ID() string { return c.id }

func (c *fakeConnector) GetProvider(context.Context) (Provider, error) {
	if c.providerErr != nil {
		return nil, c.providerErr
	}
	if c.noProvider {
		return nil, nil
	}
	return c.provider, nil
}

func (c *fakeConnector) Connect(_ context.Context, opts ConnectorConnectOptions) (Session, error) {
	c.mu.Lock()
	c.connectCalls = append(c.connectCalls, opts)
	c.mu.Unlock()
	if c.connectErr != nil {
		return Session{}, c.connectErr
	}
	return c.session, nil
}

func (c *fakeConnector) Disconnect(context.Context) error {
	c.mu.Lock()
	c.disconnects++
	c.mu.Unlock()
	return nil
}

func (c *fakeConnector) Emitter() *Emitter { return c.emitter }

func (c *fakeConnector) connectCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.connectCalls)
}

func (c *fakeConnector) disconnectCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnects
}

// fakeSigningAccount sleeps proportionally to the first payload byte
// so earlier payloads can finish later than later ones.
type fakeSigningAccount struct {
	address Address
	err     error
}

func (a *fakeSigningAccount) Address() Address { return a.address }

func (a *fakeSigningAccount) SignPayload(_ context.Context, payload hexutil.Bytes) (hexutil.Bytes, error) {
	if len(payload) > 0 {
		time.Sleep(time.Duration(payload[0]) * 2 * time.Millisecond)
	}
	if a.err != nil {
		return nil, a.err
	}
	signature := append(hexutil.Bytes{0xff}, payload...)
	return signature, nil
}

type fakeClient struct {
	provider *fakeProvider
	account  Address
}

func (c fakeClient) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return c.provider.Request(ctx, method, params)
}

func (c fakeClient) Account() Address { return c.account }

type fakeClientResolver struct {
	client fakeClient
	err    error
}

func (r fakeClientResolver) GetConnectorClient(context.Context, ClientRequest) (Client, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.client, nil
}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

type failingRecentStore struct {
	items map[string]string
}

func (s *failingRecentStore) SetItem(context.Context, string, string) error {
	return fmt.Errorf("recent store unavailable")
}

func (s *failingRecentStore) GetItem(_ context.Context, key string) (string, bool, error) {
	value, ok := s.items[key]
	return value, ok, nil
}

func (s *failingRecentStore) RemoveItem(context.Context, string) error {
	return fmt.Errorf("recent store unavailable")
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, evbus.Bus) {
	t.Helper()
	bus := evbus.New()
	base := []Option{
		WithLogger(stubLogger{}),
		WithEventBus(bus),
	}
	manager, err := NewManager(Config{}, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}
	return manager, bus
}

func chainPtr(id ChainID) *ChainID {
	return &id
}
