package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/payhive/internal/models"
)

// CreatePayment persists a payment attempt to the database.
func (s *SQLiteStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	// Generate ID if not set
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	var txID, errMsg interface{}
	if payment.TransactionID != "" {
		txID = payment.TransactionID
	}
	if payment.Error != "" {
		errMsg = payment.Error
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (id, group_id, from_user_id, to_user_id, amount, rail, transaction_id,
		 status, fees, description, error, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.GroupID, payment.FromUserID, payment.ToUserID, payment.Amount,
		string(payment.Rail), txID, string(payment.Status), payment.Fees, payment.Description,
		errMsg, payment.CreatedAt.UTC().Format(timeLayout), payment.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

// ListPaymentsByGroup retrieves all payments for a group, newest first.
func (s *SQLiteStore) ListPaymentsByGroup(ctx context.Context, groupID string) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, from_user_id, to_user_id, amount, rail, transaction_id,
		 status, fees, description, error, created_at, created_by
		 FROM payments WHERE group_id = ? ORDER BY created_at DESC, rowid DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments by group: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		var rail, status, createdAt string
		var txID, errMsg sql.NullString

		if err := rows.Scan(&payment.ID, &payment.GroupID, &payment.FromUserID, &payment.ToUserID,
			&payment.Amount, &rail, &txID, &status, &payment.Fees, &payment.Description,
			&errMsg, &createdAt, &payment.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}

		payment.Rail = models.Rail(rail)
		payment.Status = models.PaymentStatus(status)
		if txID.Valid {
			payment.TransactionID = txID.String
		}
		if errMsg.Valid {
			payment.Error = errMsg.String
		}
		if payment.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}

		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}
