package api

import "time"

// User is the public view of an account.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	WalletAddress string `json:"walletAddress,omitempty"`
}

// Session is returned by Register and Login.
type Session struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type RegisterRequest struct {
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	WalletAddress string `json:"walletAddress,omitempty"`
	Password      string `json:"password"`
}

type RegisterResponse struct {
	Session
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Session
}

// Member is one participant of a group.
type Member struct {
	UserID        string    `json:"userId"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	WalletAddress string    `json:"walletAddress,omitempty"`
	JoinedAt      time.Time `json:"joinedAt"`
}

// Group is a group with its members and expenses.
type Group struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	Members     []*Member  `json:"members"`
	Expenses    []*Expense `json:"expenses"`

	// RequiredApprovals is the quorum for the current member count.
	RequiredApprovals int `json:"requiredApprovals"`
}

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// MemberEmails are registered users added alongside the caller.
	MemberEmails []string `json:"memberEmails,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	// Groups the caller belongs to, oldest first.
	Groups []*Group `json:"groups"`
}

type AddMemberRequest struct {
	GroupID string `json:"groupId"`
	Email   string `json:"email"`
}

type AddMemberResponse struct {
	Group *Group `json:"group"`
}

// Expense is an expense with its approval state.
type Expense struct {
	ID           string    `json:"id"`
	GroupID      string    `json:"groupId"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	PaidBy       string    `json:"paidBy"`
	Participants []string  `json:"participants"`
	Approvals    []string  `json:"approvals"`
	IsAuthorized bool      `json:"isAuthorized"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

type AddExpenseRequest struct {
	GroupID     string  `json:"groupId"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`

	// PaidBy defaults to the caller.
	PaidBy string `json:"paidBy,omitempty"`

	// Participants default to every group member.
	Participants []string `json:"participants,omitempty"`
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ApproveExpenseRequest struct {
	GroupID   string `json:"groupId"`
	ExpenseID string `json:"expenseId"`
}

type ApproveExpenseResponse struct {
	Expense *Expense `json:"expense"`

	// AlreadyApproved is true when the caller had approved before this call.
	AlreadyApproved bool `json:"alreadyApproved"`
}

type RecomputeAuthorizationRequest struct {
	GroupID   string `json:"groupId"`
	ExpenseID string `json:"expenseId"`
}

type RecomputeAuthorizationResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"groupId"`

	// Status filters by "pending" or "authorized"; empty lists all.
	Status string `json:"status,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// Balance is one member's position across authorized expenses.
type Balance struct {
	UserID     string  `json:"userId"`
	Name       string  `json:"name"`
	NetBalance float64 `json:"netBalance"`
	TotalPaid  float64 `json:"totalPaid"`
	TotalOwed  float64 `json:"totalOwed"`
}

type GetBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetBalancesResponse struct {
	Balances []*Balance `json:"balances"`
}

// Settlement is one planned transfer.
type Settlement struct {
	FromUserID string  `json:"fromUserId"`
	ToUserID   string  `json:"toUserId"`
	Amount     float64 `json:"amount"`
}

type PlanSettlementsRequest struct {
	GroupID string `json:"groupId"`
}

type PlanSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

// Rail describes a configured payment rail.
type Rail struct {
	Rail         string `json:"rail"`
	Healthy      bool   `json:"healthy"`
	BreakerState string `json:"breakerState"`
	Error        string `json:"error,omitempty"`
}

type ListRailsRequest struct{}

type ListRailsResponse struct {
	Rails []*Rail `json:"rails"`
}

type EstimateFeeRequest struct {
	Rail   string  `json:"rail"`
	Amount float64 `json:"amount"`
}

type EstimateFeeResponse struct {
	Rail  string  `json:"rail"`
	Fee   float64 `json:"fee"`
	Total float64 `json:"total"`
}

// SettleUpRequest pays the caller's planned transfer to ToUserID.
type SettleUpRequest struct {
	GroupID       string `json:"groupId"`
	ToUserID      string `json:"toUserId"`
	PreferredRail string `json:"preferredRail,omitempty"`
	Description   string `json:"description,omitempty"`
}

// SettleUpResponse reports the outcome of one settlement attempt. A rail
// failure is an outcome, not an RPC error.
type SettleUpResponse struct {
	Success         bool    `json:"success"`
	PaymentID       string  `json:"paymentId,omitempty"`
	TransactionID   string  `json:"transactionId,omitempty"`
	Rail            string  `json:"rail,omitempty"`
	Status          string  `json:"status"`
	Amount          float64 `json:"amount"`
	Fees            float64 `json:"fees"`
	ApproveURL      string  `json:"approveUrl,omitempty"`
	Message         string  `json:"message"`
	SuggestedAction string  `json:"suggestedAction,omitempty"`
	ErrorKind       string  `json:"errorKind,omitempty"`
	Attempts        int     `json:"attempts"`
}

// Payment is a recorded settlement attempt.
type Payment struct {
	ID            string    `json:"id"`
	GroupID       string    `json:"groupId"`
	FromUserID    string    `json:"fromUserId"`
	ToUserID      string    `json:"toUserId"`
	Amount        float64   `json:"amount"`
	Rail          string    `json:"rail"`
	TransactionID string    `json:"transactionId,omitempty"`
	Status        string    `json:"status"`
	Fees          float64   `json:"fees,omitempty"`
	Description   string    `json:"description"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
}

type ListPaymentsRequest struct {
	GroupID string `json:"groupId"`
}

type ListPaymentsResponse struct {
	Payments []*Payment `json:"payments"`
}
