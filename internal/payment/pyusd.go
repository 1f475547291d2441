package payment

import (
	"context"
	"errors"
	"math/big"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/mmynk/payhive/internal/models"
)

// PYUSDDecimals is the number of decimals of the PYUSD token.
const PYUSDDecimals = 6

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidAddress reports whether addr looks like an EVM account address.
func ValidAddress(addr string) bool {
	return addressPattern.MatchString(addr)
}

// TokenClient is the host's connection to the PYUSD token contract.
// Key management and signing live behind it.
type TokenClient interface {
	// BalanceOf returns the token balance of address in base units.
	BalanceOf(ctx context.Context, address string) (*big.Int, error)
	// Transfer sends amount base units and returns the transaction hash.
	Transfer(ctx context.Context, from, to string, amount *big.Int) (string, error)
	// TransactionStatus reports whether a transaction is mined.
	TransactionStatus(ctx context.Context, txHash string) (models.PaymentStatus, error)
	Healthy(ctx context.Context) error
}

// PYUSDGateway settles by transferring PYUSD between member wallets.
type PYUSDGateway struct {
	client     TokenClient
	networkFee decimal.Decimal
}

var _ Gateway = (*PYUSDGateway)(nil)

// NewPYUSDGateway creates the token rail. networkFee is the flat fee estimate
// reported for every transfer.
func NewPYUSDGateway(client TokenClient, networkFee decimal.Decimal) *PYUSDGateway {
	return &PYUSDGateway{client: client, networkFee: networkFee}
}

func (g *PYUSDGateway) Rail() models.Rail { return models.RailPYUSD }

// Supports requires both parties to have a wallet address.
func (g *PYUSDGateway) Supports(from, to Identity) bool {
	return from.WalletAddress != "" && to.WalletAddress != ""
}

func (g *PYUSDGateway) Healthy(ctx context.Context) error {
	if g.client == nil {
		return errors.New("token client is not configured")
	}
	return g.client.Healthy(ctx)
}

func (g *PYUSDGateway) EstimateFee(amount decimal.Decimal) decimal.Decimal {
	return g.networkFee
}

// ToBaseUnits converts a dollar amount into token base units.
func ToBaseUnits(amount decimal.Decimal) *big.Int {
	return amount.Shift(PYUSDDecimals).Round(0).BigInt()
}

// FromBaseUnits converts token base units into a dollar amount.
func FromBaseUnits(units *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(units, -PYUSDDecimals)
}

// Transfer validates both wallets, checks the sender's balance and submits the transfer.
func (g *PYUSDGateway) Transfer(ctx context.Context, req TransferRequest) (RailResult, error) {
	if !ValidAddress(req.From.WalletAddress) {
		return nil, NewGatewayError(KindWallet, "sender wallet address is missing or malformed", nil)
	}
	if !ValidAddress(req.To.WalletAddress) {
		return nil, NewGatewayError(KindInvalidAddress, "the recipient wallet address is not valid", nil)
	}

	units := ToBaseUnits(req.Amount)

	balance, err := g.client.BalanceOf(ctx, req.From.WalletAddress)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(units) < 0 {
		return nil, NewGatewayError(KindInsufficientBalance,
			"balance "+FromBaseUnits(balance).StringFixed(2)+" PYUSD is below "+req.Amount.StringFixed(2), nil)
	}

	txHash, err := g.client.Transfer(ctx, req.From.WalletAddress, req.To.WalletAddress, units)
	if err != nil {
		return nil, err
	}

	return PYUSDResult{TxHash: txHash, GasFee: g.networkFee}, nil
}

func (g *PYUSDGateway) Status(ctx context.Context, transactionID string) (models.PaymentStatus, error) {
	return g.client.TransactionStatus(ctx, transactionID)
}
