package auth

import (
	"context"

	"github.com/mmynk/payhive/internal/models"
)

// Registration carries the details of a new account.
type Registration struct {
	Email       string
	DisplayName string
	// WalletAddress is optional; it is only needed to receive PYUSD settlements.
	WalletAddress string
	// Credential format depends on the Authenticator (a password for PasswordAuthenticator).
	Credential string
}

// Authenticator defines the interface for authentication implementations.
// The ledger never validates credentials itself; the RPC layer resolves the
// acting user through an Authenticator and a JWTManager.
type Authenticator interface {
	// Register creates a new user account.
	Register(ctx context.Context, reg Registration) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
