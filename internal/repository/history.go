package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/smeshko/text-extractor/internal/common"
	"github.com/smeshko/text-extractor/internal/entity"
)

const DefaultHistorySize = 1000

// KeywordHistoryRepository persists previously used keywords, most recent last.
// Keywords compare case-insensitively; re-adding one moves it to the end.
type KeywordHistoryRepository interface {
	Add(ctx context.Context, keyword string) error
	List(ctx context.Context) ([]string, error)
	Contains(ctx context.Context, keyword string) (bool, error)
	Remove(ctx context.Context, keyword string) error
	Clear(ctx context.Context) error
}

type keywordHistoryRepo struct {
	db      *DB
	maxSize int
	now     func() time.Time
	logger  *slog.Logger
}

func NewKeywordHistoryRepository(db *DB, maxSize int, logger *slog.Logger) KeywordHistoryRepository {
	if maxSize <= 0 {
		maxSize = DefaultHistorySize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &keywordHistoryRepo{db: db, maxSize: maxSize, now: time.Now, logger: logger}
}

func (r *keywordHistoryRepo) Add(ctx context.Context, keyword string) error {
	kw, err := entity.NewKeyword(keyword)
	if err != nil {
		return common.NewAppError(common.CodeValidation, err.Error(), common.ErrInvalidInput)
	}

	err = r.db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			r.db.rebind(`DELETE FROM keyword_history WHERE normalized = ?`), kw.Normalized); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			r.db.rebind(`INSERT INTO keyword_history (keyword, normalized, used_at) VALUES (?, ?, ?)`),
			kw.Text, kw.Normalized, r.now().UnixMilli()); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, r.db.rebind(`DELETE FROM keyword_history WHERE id NOT IN (
			SELECT id FROM keyword_history ORDER BY id DESC LIMIT ?)`), r.maxSize)
		return err
	})
	if err != nil {
		r.logger.Error("failed to add keyword to history", "keyword", kw.Text, "error", err)
		return common.NewAppError(common.CodeStorage, "cannot save keyword history", err)
	}
	return nil
}

func (r *keywordHistoryRepo) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT keyword FROM keyword_history ORDER BY id ASC`)
	if err != nil {
		r.logger.Error("failed to list keyword history", "error", err)
		return nil, common.NewAppError(common.CodeStorage, "cannot read keyword history", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, common.NewAppError(common.CodeStorage, "cannot read keyword history", err)
		}
		out = append(out, kw)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError(common.CodeStorage, "cannot read keyword history", err)
	}
	return out, nil
}

func (r *keywordHistoryRepo) Contains(ctx context.Context, keyword string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		r.db.rebind(`SELECT COUNT(*) FROM keyword_history WHERE normalized = ?`),
		entity.NormalizeKeyword(keyword)).Scan(&n)
	if err != nil {
		return false, common.NewAppError(common.CodeStorage, "cannot read keyword history", err)
	}
	return n > 0, nil
}

func (r *keywordHistoryRepo) Remove(ctx context.Context, keyword string) error {
	res, err := r.db.ExecContext(ctx,
		r.db.rebind(`DELETE FROM keyword_history WHERE normalized = ?`), entity.NormalizeKeyword(keyword))
	if err != nil {
		return common.NewAppError(common.CodeStorage, "cannot update keyword history", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.NewAppError(common.CodeInput, "keyword not in history: "+keyword, common.ErrNotFound)
	}
	return nil
}

func (r *keywordHistoryRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM keyword_history`); err != nil {
		return common.NewAppError(common.CodeStorage, "cannot clear keyword history", err)
	}
	return nil
}
