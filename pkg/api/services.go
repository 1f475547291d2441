package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// AuthServiceName is the fully-qualified name of the AuthService service.
const AuthServiceName = "payhive.v1.AuthService"

const (
	AuthServiceRegisterProcedure = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure    = "/" + AuthServiceName + "/Login"
)

// GroupServiceName is the fully-qualified name of the GroupService service.
const GroupServiceName = "payhive.v1.GroupService"

const (
	GroupServiceCreateGroupProcedure = "/" + GroupServiceName + "/CreateGroup"
	GroupServiceGetGroupProcedure    = "/" + GroupServiceName + "/GetGroup"
	GroupServiceListGroupsProcedure  = "/" + GroupServiceName + "/ListGroups"
	GroupServiceAddMemberProcedure   = "/" + GroupServiceName + "/AddMember"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService service.
const ExpenseServiceName = "payhive.v1.ExpenseService"

const (
	ExpenseServiceAddExpenseProcedure             = "/" + ExpenseServiceName + "/AddExpense"
	ExpenseServiceApproveExpenseProcedure         = "/" + ExpenseServiceName + "/ApproveExpense"
	ExpenseServiceRecomputeAuthorizationProcedure = "/" + ExpenseServiceName + "/RecomputeAuthorization"
	ExpenseServiceListExpensesProcedure           = "/" + ExpenseServiceName + "/ListExpenses"
)

// SettlementServiceName is the fully-qualified name of the SettlementService service.
const SettlementServiceName = "payhive.v1.SettlementService"

const (
	SettlementServiceGetBalancesProcedure     = "/" + SettlementServiceName + "/GetBalances"
	SettlementServicePlanSettlementsProcedure = "/" + SettlementServiceName + "/PlanSettlements"
	SettlementServiceListRailsProcedure       = "/" + SettlementServiceName + "/ListRails"
	SettlementServiceEstimateFeeProcedure     = "/" + SettlementServiceName + "/EstimateFee"
	SettlementServiceSettleUpProcedure        = "/" + SettlementServiceName + "/SettleUp"
	SettlementServiceListPaymentsProcedure    = "/" + SettlementServiceName + "/ListPayments"
)

// AuthServiceHandler is the server side of AuthService.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	registerHandler := connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...)
	loginHandler := connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...)
	return "/" + AuthServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AuthServiceRegisterProcedure:
			registerHandler.ServeHTTP(w, r)
		case AuthServiceLoginProcedure:
			loginHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// AuthServiceClient is a client for AuthService.
type AuthServiceClient struct {
	register *connect.Client[RegisterRequest, RegisterResponse]
	login    *connect.Client[LoginRequest, LoginResponse]
}

// NewAuthServiceClient constructs a client for AuthService. baseURL is the server root, e.g. http://localhost:8080.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	opts = clientOptions(opts)
	return &AuthServiceClient{
		register: connect.NewClient[RegisterRequest, RegisterResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		login:    connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
	}
}

// Register calls payhive.v1.AuthService.Register.
func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

// Login calls payhive.v1.AuthService.Login.
func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

// GroupServiceHandler is the server side of GroupService.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	AddMember(context.Context, *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createGroupHandler := connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...)
	getGroupHandler := connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...)
	listGroupsHandler := connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...)
	addMemberHandler := connect.NewUnaryHandler(GroupServiceAddMemberProcedure, svc.AddMember, opts...)
	return "/" + GroupServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case GroupServiceCreateGroupProcedure:
			createGroupHandler.ServeHTTP(w, r)
		case GroupServiceGetGroupProcedure:
			getGroupHandler.ServeHTTP(w, r)
		case GroupServiceListGroupsProcedure:
			listGroupsHandler.ServeHTTP(w, r)
		case GroupServiceAddMemberProcedure:
			addMemberHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// GroupServiceClient is a client for GroupService.
type GroupServiceClient struct {
	createGroup *connect.Client[CreateGroupRequest, CreateGroupResponse]
	getGroup    *connect.Client[GetGroupRequest, GetGroupResponse]
	listGroups  *connect.Client[ListGroupsRequest, ListGroupsResponse]
	addMember   *connect.Client[AddMemberRequest, AddMemberResponse]
}

// NewGroupServiceClient constructs a client for GroupService. baseURL is the server root, e.g. http://localhost:8080.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	opts = clientOptions(opts)
	return &GroupServiceClient{
		createGroup: connect.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:    connect.NewClient[GetGroupRequest, GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:  connect.NewClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		addMember:   connect.NewClient[AddMemberRequest, AddMemberResponse](httpClient, baseURL+GroupServiceAddMemberProcedure, opts...),
	}
}

// CreateGroup calls payhive.v1.GroupService.CreateGroup.
func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

// GetGroup calls payhive.v1.GroupService.GetGroup.
func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

// ListGroups calls payhive.v1.GroupService.ListGroups.
func (c *GroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

// AddMember calls payhive.v1.GroupService.AddMember.
func (c *GroupServiceClient) AddMember(ctx context.Context, req *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

// ExpenseServiceHandler is the server side of ExpenseService.
type ExpenseServiceHandler interface {
	AddExpense(context.Context, *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error)
	ApproveExpense(context.Context, *connect.Request[ApproveExpenseRequest]) (*connect.Response[ApproveExpenseResponse], error)
	RecomputeAuthorization(context.Context, *connect.Request[RecomputeAuthorizationRequest]) (*connect.Response[RecomputeAuthorizationResponse], error)
	ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	addExpenseHandler := connect.NewUnaryHandler(ExpenseServiceAddExpenseProcedure, svc.AddExpense, opts...)
	approveExpenseHandler := connect.NewUnaryHandler(ExpenseServiceApproveExpenseProcedure, svc.ApproveExpense, opts...)
	recomputeAuthorizationHandler := connect.NewUnaryHandler(ExpenseServiceRecomputeAuthorizationProcedure, svc.RecomputeAuthorization, opts...)
	listExpensesHandler := connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...)
	return "/" + ExpenseServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ExpenseServiceAddExpenseProcedure:
			addExpenseHandler.ServeHTTP(w, r)
		case ExpenseServiceApproveExpenseProcedure:
			approveExpenseHandler.ServeHTTP(w, r)
		case ExpenseServiceRecomputeAuthorizationProcedure:
			recomputeAuthorizationHandler.ServeHTTP(w, r)
		case ExpenseServiceListExpensesProcedure:
			listExpensesHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// ExpenseServiceClient is a client for ExpenseService.
type ExpenseServiceClient struct {
	addExpense             *connect.Client[AddExpenseRequest, AddExpenseResponse]
	approveExpense         *connect.Client[ApproveExpenseRequest, ApproveExpenseResponse]
	recomputeAuthorization *connect.Client[RecomputeAuthorizationRequest, RecomputeAuthorizationResponse]
	listExpenses           *connect.Client[ListExpensesRequest, ListExpensesResponse]
}

// NewExpenseServiceClient constructs a client for ExpenseService. baseURL is the server root, e.g. http://localhost:8080.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	opts = clientOptions(opts)
	return &ExpenseServiceClient{
		addExpense:             connect.NewClient[AddExpenseRequest, AddExpenseResponse](httpClient, baseURL+ExpenseServiceAddExpenseProcedure, opts...),
		approveExpense:         connect.NewClient[ApproveExpenseRequest, ApproveExpenseResponse](httpClient, baseURL+ExpenseServiceApproveExpenseProcedure, opts...),
		recomputeAuthorization: connect.NewClient[RecomputeAuthorizationRequest, RecomputeAuthorizationResponse](httpClient, baseURL+ExpenseServiceRecomputeAuthorizationProcedure, opts...),
		listExpenses:           connect.NewClient[ListExpensesRequest, ListExpensesResponse](httpClient, baseURL+ExpenseServiceListExpensesProcedure, opts...),
	}
}

// AddExpense calls payhive.v1.ExpenseService.AddExpense.
func (c *ExpenseServiceClient) AddExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

// ApproveExpense calls payhive.v1.ExpenseService.ApproveExpense.
func (c *ExpenseServiceClient) ApproveExpense(ctx context.Context, req *connect.Request[ApproveExpenseRequest]) (*connect.Response[ApproveExpenseResponse], error) {
	return c.approveExpense.CallUnary(ctx, req)
}

// RecomputeAuthorization calls payhive.v1.ExpenseService.RecomputeAuthorization.
func (c *ExpenseServiceClient) RecomputeAuthorization(ctx context.Context, req *connect.Request[RecomputeAuthorizationRequest]) (*connect.Response[RecomputeAuthorizationResponse], error) {
	return c.recomputeAuthorization.CallUnary(ctx, req)
}

// ListExpenses calls payhive.v1.ExpenseService.ListExpenses.
func (c *ExpenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

// SettlementServiceHandler is the server side of SettlementService.
type SettlementServiceHandler interface {
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	PlanSettlements(context.Context, *connect.Request[PlanSettlementsRequest]) (*connect.Response[PlanSettlementsResponse], error)
	ListRails(context.Context, *connect.Request[ListRailsRequest]) (*connect.Response[ListRailsResponse], error)
	EstimateFee(context.Context, *connect.Request[EstimateFeeRequest]) (*connect.Response[EstimateFeeResponse], error)
	SettleUp(context.Context, *connect.Request[SettleUpRequest]) (*connect.Response[SettleUpResponse], error)
	ListPayments(context.Context, *connect.Request[ListPaymentsRequest]) (*connect.Response[ListPaymentsResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	getBalancesHandler := connect.NewUnaryHandler(SettlementServiceGetBalancesProcedure, svc.GetBalances, opts...)
	planSettlementsHandler := connect.NewUnaryHandler(SettlementServicePlanSettlementsProcedure, svc.PlanSettlements, opts...)
	listRailsHandler := connect.NewUnaryHandler(SettlementServiceListRailsProcedure, svc.ListRails, opts...)
	estimateFeeHandler := connect.NewUnaryHandler(SettlementServiceEstimateFeeProcedure, svc.EstimateFee, opts...)
	settleUpHandler := connect.NewUnaryHandler(SettlementServiceSettleUpProcedure, svc.SettleUp, opts...)
	listPaymentsHandler := connect.NewUnaryHandler(SettlementServiceListPaymentsProcedure, svc.ListPayments, opts...)
	return "/" + SettlementServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SettlementServiceGetBalancesProcedure:
			getBalancesHandler.ServeHTTP(w, r)
		case SettlementServicePlanSettlementsProcedure:
			planSettlementsHandler.ServeHTTP(w, r)
		case SettlementServiceListRailsProcedure:
			listRailsHandler.ServeHTTP(w, r)
		case SettlementServiceEstimateFeeProcedure:
			estimateFeeHandler.ServeHTTP(w, r)
		case SettlementServiceSettleUpProcedure:
			settleUpHandler.ServeHTTP(w, r)
		case SettlementServiceListPaymentsProcedure:
			listPaymentsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// SettlementServiceClient is a client for SettlementService.
type SettlementServiceClient struct {
	getBalances     *connect.Client[GetBalancesRequest, GetBalancesResponse]
	planSettlements *connect.Client[PlanSettlementsRequest, PlanSettlementsResponse]
	listRails       *connect.Client[ListRailsRequest, ListRailsResponse]
	estimateFee     *connect.Client[EstimateFeeRequest, EstimateFeeResponse]
	settleUp        *connect.Client[SettleUpRequest, SettleUpResponse]
	listPayments    *connect.Client[ListPaymentsRequest, ListPaymentsResponse]
}

// NewSettlementServiceClient constructs a client for SettlementService. baseURL is the server root, e.g. http://localhost:8080.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	opts = clientOptions(opts)
	return &SettlementServiceClient{
		getBalances:     connect.NewClient[GetBalancesRequest, GetBalancesResponse](httpClient, baseURL+SettlementServiceGetBalancesProcedure, opts...),
		planSettlements: connect.NewClient[PlanSettlementsRequest, PlanSettlementsResponse](httpClient, baseURL+SettlementServicePlanSettlementsProcedure, opts...),
		listRails:       connect.NewClient[ListRailsRequest, ListRailsResponse](httpClient, baseURL+SettlementServiceListRailsProcedure, opts...),
		estimateFee:     connect.NewClient[EstimateFeeRequest, EstimateFeeResponse](httpClient, baseURL+SettlementServiceEstimateFeeProcedure, opts...),
		settleUp:        connect.NewClient[SettleUpRequest, SettleUpResponse](httpClient, baseURL+SettlementServiceSettleUpProcedure, opts...),
		listPayments:    connect.NewClient[ListPaymentsRequest, ListPaymentsResponse](httpClient, baseURL+SettlementServiceListPaymentsProcedure, opts...),
	}
}

// GetBalances calls payhive.v1.SettlementService.GetBalances.
func (c *SettlementServiceClient) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

// PlanSettlements calls payhive.v1.SettlementService.PlanSettlements.
func (c *SettlementServiceClient) PlanSettlements(ctx context.Context, req *connect.Request[PlanSettlementsRequest]) (*connect.Response[PlanSettlementsResponse], error) {
	return c.planSettlements.CallUnary(ctx, req)
}

// ListRails calls payhive.v1.SettlementService.ListRails.
func (c *SettlementServiceClient) ListRails(ctx context.Context, req *connect.Request[ListRailsRequest]) (*connect.Response[ListRailsResponse], error) {
	return c.listRails.CallUnary(ctx, req)
}

// EstimateFee calls payhive.v1.SettlementService.EstimateFee.
func (c *SettlementServiceClient) EstimateFee(ctx context.Context, req *connect.Request[EstimateFeeRequest]) (*connect.Response[EstimateFeeResponse], error) {
	return c.estimateFee.CallUnary(ctx, req)
}

// SettleUp calls payhive.v1.SettlementService.SettleUp.
func (c *SettlementServiceClient) SettleUp(ctx context.Context, req *connect.Request[SettleUpRequest]) (*connect.Response[SettleUpResponse], error) {
	return c.settleUp.CallUnary(ctx, req)
}

// ListPayments calls payhive.v1.SettlementService.ListPayments.
func (c *SettlementServiceClient) ListPayments(ctx context.Context, req *connect.Request[ListPaymentsRequest]) (*connect.Response[ListPaymentsResponse], error) {
	return c.listPayments.CallUnary(ctx, req)
}
