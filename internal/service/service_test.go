package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/payhive/internal/auth"
	"github.com/mmynk/payhive/internal/ledger"
	"github.com/mmynk/payhive/internal/middleware"
	"github.com/mmynk/payhive/internal/models"
	"github.com/mmynk/payhive/internal/payment"
	"github.com/mmynk/payhive/internal/storage/memory"
	"github.com/mmynk/payhive/pkg/api"
)

// stubGateway is a PayPal-shaped rail that accepts every transfer.
type stubGateway struct {
	mu        sync.Mutex
	transfers []payment.TransferRequest
	fail      *payment.GatewayError
}

func (g *stubGateway) Rail() models.Rail { return models.RailPayPal }

func (g *stubGateway) Supports(from, to payment.Identity) bool {
	return from.Email != "" && to.Email != ""
}

func (g *stubGateway) Healthy(ctx context.Context) error { return nil }

func (g *stubGateway) Transfer(ctx context.Context, req payment.TransferRequest) (payment.RailResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transfers = append(g.transfers, req)
	if g.fail != nil {
		return nil, g.fail
	}
	return payment.PayPalResult{OrderID: "ORDER-1", OrderStatus: "COMPLETED"}, nil
}

func (g *stubGateway) Status(ctx context.Context, transactionID string) (models.PaymentStatus, error) {
	return models.PaymentStatusCompleted, nil
}

func (g *stubGateway) EstimateFee(amount decimal.Decimal) decimal.Decimal {
	return payment.PayPalFee(amount)
}

func (g *stubGateway) failWith(err *payment.GatewayError) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail = err
}

func (g *stubGateway) calls() []payment.TransferRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]payment.TransferRequest(nil), g.transfers...)
}

type testEnv struct {
	auth        *api.AuthServiceClient
	groups      *api.GroupServiceClient
	expenses    *api.ExpenseServiceClient
	settlements *api.SettlementServiceClient
	gateway     *stubGateway
}

// setupTestServer serves every service over httptest with the production
// interceptor chain and an in-memory store.
func setupTestServer(t *testing.T, opts ...ExpenseOption) *testEnv {
	t.Helper()

	store := memory.New()
	l := ledger.New(store)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	gateway := &stubGateway{}
	orchestrator := payment.NewOrchestrator([]payment.Gateway{gateway},
		payment.WithRecorder(store),
		payment.WithSleep(func(context.Context, time.Duration) error { return nil }),
	)

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(
		NewAuthService(authenticator, jwtManager, nil),
		connect.WithInterceptors(middleware.LoggingInterceptor()),
	))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(l, store), interceptors))
	mux.Handle(api.NewExpenseServiceHandler(NewExpenseService(l, opts...), interceptors))
	mux.Handle(api.NewSettlementServiceHandler(NewSettlementService(l, orchestrator, store), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		auth:        api.NewAuthServiceClient(http.DefaultClient, server.URL),
		groups:      api.NewGroupServiceClient(http.DefaultClient, server.URL),
		expenses:    api.NewExpenseServiceClient(http.DefaultClient, server.URL),
		settlements: api.NewSettlementServiceClient(http.DefaultClient, server.URL),
		gateway:     gateway,
	}
}

type testUser struct {
	ID    string
	Email string
	Token string
}

func (e *testEnv) register(t *testing.T, email, name string) testUser {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		DisplayName: name,
		Password:    "password123",
	}))
	require.NoError(t, err)
	return testUser{ID: resp.Msg.User.ID, Email: resp.Msg.User.Email, Token: resp.Msg.Token}
}

// createGroup registers the owner's group with the other users as members.
func (e *testEnv) createGroup(t *testing.T, owner testUser, others ...testUser) *api.Group {
	t.Helper()
	emails := make([]string, len(others))
	for i, u := range others {
		emails[i] = u.Email
	}
	resp, err := e.groups.CreateGroup(context.Background(), authed(owner, &api.CreateGroupRequest{
		Name:         "Ski Trip",
		MemberEmails: emails,
	}))
	require.NoError(t, err)
	return resp.Msg.Group
}

func authed[T any](u testUser, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+u.Token)
	return req
}

func requireCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, connect.CodeOf(err), "unexpected error: %v", err)
}
