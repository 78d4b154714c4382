package transcript

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"negobot/internal/model"
)

// MySQL writes turn records to the conversations table.
//
//	CREATE TABLE conversations (
//	    id             CHAR(26) PRIMARY KEY,
//	    created_at     DATETIME NOT NULL,
//	    user_id        VARCHAR(255) NOT NULL,
//	    product_id     BIGINT NULL,
//	    intent         VARCHAR(32) NOT NULL,
//	    user_offer     BIGINT NULL,
//	    outcome        VARCHAR(16) NULL,
//	    resolved_price BIGINT NULL,
//	    turn_count     INT NOT NULL,
//	    utterance      TEXT NOT NULL,
//	    reply          TEXT NOT NULL,
//	    INDEX idx_user (user_id, created_at)
//	);
//
// Money columns are paise.
type MySQL struct {
	db *sql.DB
}

// NewMySQL wraps an existing connection pool. The caller owns the pool.
func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{db: db}
}

func (s *MySQL) Record(ctx context.Context, rec *model.TurnRecord) error {
	var productID interface{}
	if rec.ProductID != 0 {
		productID = rec.ProductID
	}
	var outcome interface{}
	if rec.Outcome != "" {
		outcome = string(rec.Outcome)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations
			(id, created_at, user_id, product_id, intent, user_offer,
			 outcome, resolved_price, turn_count, utterance, reply)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp, rec.UserID, productID, rec.Intent, rec.UserOffer,
		outcome, rec.ResolvedPrice, rec.TurnCount, rec.Utterance, rec.Reply)
	if err != nil {
		return fmt.Errorf("insert turn record: %w", err)
	}
	return nil
}

func (s *MySQL) Recent(ctx context.Context, userID string, productID int64, limit int) ([]model.TurnRecord, error) {
	query := `
		SELECT id, created_at, user_id, product_id, intent, user_offer,
		       outcome, resolved_price, turn_count, utterance, reply
		FROM conversations WHERE user_id = ?`
	args := []interface{}{userID}
	if productID != 0 {
		query += ` AND product_id = ?`
		args = append(args, productID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	var out []model.TurnRecord
	for rows.Next() {
		var rec model.TurnRecord
		var pid sql.NullInt64
		var offer, resolved sql.NullInt64
		var outcome sql.NullString

		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.UserID, &pid, &rec.Intent,
			&offer, &outcome, &resolved, &rec.TurnCount, &rec.Utterance, &rec.Reply); err != nil {
			return nil, fmt.Errorf("scan turn record: %w", err)
		}
		if pid.Valid {
			rec.ProductID = pid.Int64
		}
		if offer.Valid {
			rec.UserOffer = &offer.Int64
		}
		if outcome.Valid {
			rec.Outcome = model.Outcome(outcome.String)
		}
		if resolved.Valid {
			rec.ResolvedPrice = &resolved.Int64
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	return out, nil
}
