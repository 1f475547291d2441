package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/payhive/internal/ledger"
	"github.com/mmynk/payhive/internal/models"
)

// ErrRailNotConfigured is returned when a rail has no gateway.
var ErrRailNotConfigured = errors.New("payment rail not configured")

// PaymentRecorder persists payment history. storage.Store satisfies it.
type PaymentRecorder interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
}

// Observer receives payment events. internal/metrics provides the Prometheus implementation.
type Observer interface {
	PaymentAttempted(rail models.Rail, status models.PaymentStatus)
	GatewayCall(rail models.Rail, operation string, d time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) PaymentAttempted(models.Rail, models.PaymentStatus)    {}
func (nopObserver) GatewayCall(models.Rail, string, time.Duration, error) {}

// Orchestrator executes one planned settlement per call on a payment rail.
type Orchestrator struct {
	gateways  map[models.Rail]Gateway
	order     []models.Rail
	preferred models.Rail
	locker    Locker
	breakers  *breakers
	retry     retrier
	recorder  PaymentRecorder
	observer  Observer
	now       func() time.Time
	newID     func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLocker replaces the in-process settlement lock.
func WithLocker(l Locker) Option {
	return func(o *Orchestrator) { o.locker = l }
}

// WithRecorder persists every attempt as a models.Payment.
func WithRecorder(r PaymentRecorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithObserver reports payment events to obs.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithPreferredRail sets the rail tried first when the caller has no preference.
func WithPreferredRail(rail models.Rail) Option {
	return func(o *Orchestrator) { o.preferred = rail }
}

// WithBreakerConfig overrides the circuit breaker settings.
func WithBreakerConfig(cfg BreakerConfig) Option {
	return func(o *Orchestrator) { o.breakers = newBreakers(cfg) }
}

// WithSleep replaces the wait between retries.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) { o.retry.sleep = sleep }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator creates an orchestrator over gateways. Rails are tried in
// the order given after the preferred rail.
func NewOrchestrator(gateways []Gateway, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateways: make(map[models.Rail]Gateway, len(gateways)),
		locker:   NewLocalLocker(),
		breakers: newBreakers(DefaultBreakerConfig()),
		retry:    retrier{sleep: SleepWithContext},
		observer: nopObserver{},
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, gw := range gateways {
		if _, dup := o.gateways[gw.Rail()]; dup {
			continue
		}
		o.gateways[gw.Rail()] = gw
		o.order = append(o.order, gw.Rail())
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SettleOptions tune a single Settle call.
type SettleOptions struct {
	// PreferredRail overrides the orchestrator's preferred rail.
	PreferredRail models.Rail
	Description   string
	// InitiatedBy is recorded on the payment.
	InitiatedBy string
}

// Outcome is the result of one settlement attempt.
type Outcome struct {
	Result PaymentResult `json:"result"`
	// Error is nil when the rail accepted the transfer.
	Error           *GatewayError `json:"-"`
	Message         string        `json:"message"`
	SuggestedAction string        `json:"suggestedAction,omitempty"`
	Attempts        int           `json:"attempts"`
	// PaymentID is the recorded payment, when a recorder is configured.
	PaymentID string `json:"paymentId,omitempty"`
}

// Succeeded reports whether the rail accepted the transfer.
func (o *Outcome) Succeeded() bool {
	return o.Error == nil && o.Result.Success
}

// Settle executes settlement s of group on one rail.
//
// A Go error is returned only for caller mistakes (unknown members, a
// non-positive amount) and for a settlement that is already in flight.
// Everything the rail does, including failing, is reported in the Outcome.
// The gateway is invoked once, plus the retries its failure kind allows,
// and the rail is never switched after a failure.
func (o *Orchestrator) Settle(ctx context.Context, group *models.Group, s models.Settlement, opts SettleOptions) (*Outcome, error) {
	amount := decimal.NewFromFloat(s.Amount).Round(2)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: settlement amount must be positive, got %v", ledger.ErrValidation, s.Amount)
	}
	if s.FromUserID == s.ToUserID {
		return nil, fmt.Errorf("%w: cannot settle with yourself", ledger.ErrValidation)
	}

	from, err := resolve(group, s.FromUserID)
	if err != nil {
		return nil, err
	}
	to, err := resolve(group, s.ToUserID)
	if err != nil {
		return nil, err
	}

	key := SettlementKey(group.ID, s.FromUserID, s.ToUserID)
	unlock, ok, err := o.locker.TryLock(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to lock settlement %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSettlementInFlight, key)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			slog.Error("Failed to release settlement lock", "key", key, "error", err)
		}
	}()

	description := opts.Description
	if description == "" {
		description = fmt.Sprintf("PayHive settlement: %s", group.Name)
	}
	req := TransferRequest{
		From:        from,
		To:          to,
		Amount:      amount,
		Description: description,
		GroupID:     group.ID,
		RequestID:   o.newID(),
	}

	preferred := opts.PreferredRail
	if preferred == "" {
		preferred = o.preferred
	}

	outcome := o.execute(ctx, req, preferred)
	o.record(ctx, group.ID, opts, req, outcome)

	slog.Info("Settlement attempted",
		"group_id", group.ID,
		"from", s.FromUserID,
		"to", s.ToUserID,
		"amount", amount.StringFixed(2),
		"rail", outcome.Result.Rail,
		"status", outcome.Result.Status,
		"attempts", outcome.Attempts,
		"success", outcome.Succeeded(),
	)
	return outcome, nil
}

func resolve(group *models.Group, userID string) (Identity, error) {
	m, ok := group.Member(userID)
	if !ok {
		return Identity{}, fmt.Errorf("%w: %s is not a member of group %s", ledger.ErrInvalidMember, userID, group.ID)
	}
	return IdentityFromMember(*m), nil
}

func (o *Orchestrator) execute(ctx context.Context, req TransferRequest, preferred models.Rail) *Outcome {
	gw, selErr := o.selectRail(ctx, req.From, req.To, preferred)
	if selErr != nil {
		return failedOutcome(req, "", selErr, 0)
	}
	rail := gw.Rail()

	var result RailResult
	attempts, gwErr := o.retry.do(ctx, "transfer:"+string(rail), func(ctx context.Context) error {
		start := o.now()
		res, err := o.breakers.execute(rail, func() (any, error) {
			return gw.Transfer(ctx, req)
		})
		o.observer.GatewayCall(rail, "transfer", o.now().Sub(start), err)
		if err != nil {
			return err
		}
		rr, ok := res.(RailResult)
		if !ok || rr == nil {
			return NewGatewayError(KindUnknown, "gateway returned no result", nil)
		}
		result = rr
		return nil
	})
	if gwErr != nil {
		return failedOutcome(req, rail, gwErr, attempts)
	}

	unified := result.unify(req)
	if unified.Fees.IsZero() {
		unified.Fees = gw.EstimateFee(req.Amount)
	}
	return &Outcome{
		Result:   unified,
		Message:  successMessage(unified),
		Attempts: attempts,
	}
}

func successMessage(r PaymentResult) string {
	switch r.Status {
	case models.PaymentStatusCompleted:
		return fmt.Sprintf("Sent %s via %s", r.Amount.StringFixed(2), r.Rail)
	default:
		return fmt.Sprintf("Payment of %s via %s submitted", r.Amount.StringFixed(2), r.Rail)
	}
}

func failedOutcome(req TransferRequest, rail models.Rail, gwErr *GatewayError, attempts int) *Outcome {
	return &Outcome{
		Result: PaymentResult{
			Success: false,
			Rail:    rail,
			Amount:  req.Amount,
			From:    req.From,
			To:      req.To,
			Status:  models.PaymentStatusFailed,
			Error:   gwErr.Message,
		},
		Error:           gwErr,
		Message:         gwErr.Message,
		SuggestedAction: gwErr.SuggestedAction,
		Attempts:        attempts,
	}
}

// selectRail returns the preferred rail when usable, else the first usable
// rail in configured order. Usable means configured, supported by both
// identities, breaker not open and gateway healthy.
func (o *Orchestrator) selectRail(ctx context.Context, from, to Identity, preferred models.Rail) (Gateway, *GatewayError) {
	candidates := make([]models.Rail, 0, len(o.order)+1)
	if preferred != "" {
		candidates = append(candidates, preferred)
	}
	candidates = append(candidates, o.order...)

	var reasons []string
	seen := make(map[models.Rail]bool, len(candidates))
	for _, rail := range candidates {
		if seen[rail] {
			continue
		}
		seen[rail] = true

		gw, ok := o.gateways[rail]
		switch {
		case !ok:
			reasons = append(reasons, fmt.Sprintf("%s: not configured", rail))
		case !gw.Supports(from, to):
			reasons = append(reasons, fmt.Sprintf("%s: missing payment identity", rail))
		case o.breakers.open(rail):
			reasons = append(reasons, fmt.Sprintf("%s: circuit open", rail))
		default:
			if err := gw.Healthy(ctx); err != nil {
				reasons = append(reasons, fmt.Sprintf("%s: %v", rail, err))
				continue
			}
			return gw, nil
		}
	}

	details := "no payment rail is configured"
	if len(reasons) > 0 {
		details = fmt.Sprintf("no usable payment rail (%v)", reasons)
	}
	return nil, NewGatewayError(KindUnavailable, details, nil)
}

func (o *Orchestrator) record(ctx context.Context, groupID string, opts SettleOptions, req TransferRequest, outcome *Outcome) {
	o.observer.PaymentAttempted(outcome.Result.Rail, outcome.Result.Status)
	if o.recorder == nil || outcome.Result.Rail == "" {
		return
	}

	amount, _ := req.Amount.Float64()
	fees, _ := outcome.Result.Fees.Float64()
	payment := &models.Payment{
		ID:            req.RequestID,
		GroupID:       groupID,
		FromUserID:    req.From.UserID,
		ToUserID:      req.To.UserID,
		Amount:        amount,
		Rail:          outcome.Result.Rail,
		TransactionID: outcome.Result.TransactionID,
		Status:        outcome.Result.Status,
		Fees:          fees,
		Description:   req.Description,
		Error:         outcome.Result.Error,
		CreatedAt:     o.now(),
		CreatedBy:     opts.InitiatedBy,
	}

	// The transfer already happened; keep recording even if the caller went away.
	if err := o.recorder.CreatePayment(context.WithoutCancel(ctx), payment); err != nil {
		slog.Error("Failed to record payment", "group_id", groupID, "rail", payment.Rail, "error", err)
		return
	}
	outcome.PaymentID = payment.ID
}

// RailStatus describes one configured rail.
type RailStatus struct {
	Rail         models.Rail `json:"rail"`
	Healthy      bool        `json:"healthy"`
	BreakerState string      `json:"breakerState"`
	Error        string      `json:"error,omitempty"`
}

// AvailableRails lists configured rails in order with their health.
func (o *Orchestrator) AvailableRails(ctx context.Context) []RailStatus {
	statuses := make([]RailStatus, 0, len(o.order))
	for _, rail := range o.order {
		status := RailStatus{
			Rail:         rail,
			BreakerState: o.breakers.state(rail).String(),
		}
		if o.breakers.open(rail) {
			status.Error = "circuit open"
		} else if err := o.gateways[rail].Healthy(ctx); err != nil {
			status.Error = err.Error()
		} else {
			status.Healthy = true
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// EstimateFee returns the fee the rail is expected to charge for amount.
func (o *Orchestrator) EstimateFee(rail models.Rail, amount decimal.Decimal) (decimal.Decimal, error) {
	gw, ok := o.gateways[rail]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrRailNotConfigured, rail)
	}
	return gw.EstimateFee(amount), nil
}

// TransactionStatus asks the rail for the current status of a transaction it returned earlier.
func (o *Orchestrator) TransactionStatus(ctx context.Context, rail models.Rail, transactionID string) (models.PaymentStatus, error) {
	gw, ok := o.gateways[rail]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRailNotConfigured, rail)
	}

	start := o.now()
	res, err := o.breakers.execute(rail, func() (any, error) {
		return gw.Status(ctx, transactionID)
	})
	o.observer.GatewayCall(rail, "status", o.now().Sub(start), err)
	if err != nil {
		return "", Classify(err)
	}
	return res.(models.PaymentStatus), nil
}
