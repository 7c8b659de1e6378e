package pg

import (
	"context"
	"errors"
	"fmt"

	"auto_trader/internal/models"
	"auto_trader/pkg/db"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
)

// Store implement db store поверх pgx.
type Store struct {
	db *db.PgTxManager
}

// New instance
func New(m *db.PgTxManager) *Store {
	return &Store{db: m}
}

func (s *Store) ListActiveStrategies(ctx context.Context) (out []models.Strategy, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.ListActiveStrategies: %w", err)
		}
	}()

	rows, err := s.db.Conn().Query(ctx, `
		SELECT id, owner_id, name, active, auto_execute, allocation_pct,
		       securities, pricing, entry_threshold, conditions
		FROM strategies
		WHERE active = true
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			st         models.Strategy
			securities []byte
			pricing    []byte
		)
		if err = rows.Scan(
			&st.ID, &st.OwnerID, &st.Name, &st.Active, &st.AutoExecute,
			&st.AllocationPct, &securities, &pricing, &st.EntryThreshold, &st.Conditions,
		); err != nil {
			return nil, err
		}
		if err = sonic.Unmarshal(securities, &st.Securities); err != nil {
			return nil, err
		}
		if err = sonic.Unmarshal(pricing, &st.Pricing); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) GetAccountBalance(ctx context.Context, accountID string) (bal models.AccountBalance, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.GetAccountBalance: %w", err)
		}
	}()

	err = s.db.Conn().QueryRow(ctx, `
		SELECT account_id, total_cash, available_cash, updated_at
		FROM account_balances
		WHERE account_id = $1`, accountID,
	).Scan(&bal.AccountID, &bal.TotalCash, &bal.AvailableCash, &bal.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return bal, models.ErrNotFound
	}
	return bal, err
}

func (s *Store) GetPositions(ctx context.Context, accountID string) (out []models.PortfolioPosition, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.GetPositions: %w", err)
		}
	}()

	rows, err := s.db.Conn().Query(ctx, `
		SELECT account_id, security_id, quantity, avg_cost
		FROM portfolio_positions
		WHERE account_id = $1`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.PortfolioPosition
		if err = rows.Scan(&p.AccountID, &p.SecurityID, &p.Quantity, &p.AvgCost); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) UpsertMonitoringRecord(ctx context.Context, rec models.MonitoringRecord) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.UpsertMonitoringRecord: %w", err)
		}
	}()

	// одна логическая строка на пару, историю не копим
	_, err = s.db.Conn().Exec(ctx, `
		INSERT INTO monitoring_records (strategy_id, security_id, score, near_entry, evaluated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (strategy_id, security_id) DO UPDATE
		SET score = EXCLUDED.score,
		    near_entry = EXCLUDED.near_entry,
		    evaluated_at = EXCLUDED.evaluated_at`,
		rec.StrategyID, rec.SecurityID, rec.Score, rec.NearEntry, rec.EvaluatedAt)
	return err
}

func (s *Store) SaveAccountState(ctx context.Context, bal models.AccountBalance, positions []models.PortfolioPosition) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.SaveAccountState: %w", err)
		}
	}()

	// баланс и позиции перезаписываем одним снапшотом в одной транзакции
	return s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO account_balances (account_id, total_cash, available_cash, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (account_id) DO UPDATE
			SET total_cash = EXCLUDED.total_cash,
			    available_cash = EXCLUDED.available_cash,
			    updated_at = EXCLUDED.updated_at`,
			bal.AccountID, bal.TotalCash, bal.AvailableCash, bal.UpdatedAt)
		if err != nil {
			return err
		}

		if _, err = tx.Exec(ctxTx,
			`DELETE FROM portfolio_positions WHERE account_id = $1`, bal.AccountID); err != nil {
			return err
		}
		for _, p := range positions {
			if _, err = tx.Exec(ctxTx, `
				INSERT INTO portfolio_positions (account_id, security_id, quantity, avg_cost)
				VALUES ($1, $2, $3, $4)`,
				p.AccountID, p.SecurityID, p.Quantity, p.AvgCost); err != nil {
				return err
			}
		}
		return nil
	})
}
