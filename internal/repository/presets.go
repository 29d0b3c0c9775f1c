package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/smeshko/text-extractor/internal/common"
	"github.com/smeshko/text-extractor/internal/entity"
)

const MaxPresetNameLength = 100

// Preset is a named, ordered list of keywords.
type Preset struct {
	Name      string
	Keywords  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PresetRepository interface {
	Save(ctx context.Context, name string, keywords []string) (*Preset, error)
	Get(ctx context.Context, name string) (*Preset, error)
	List(ctx context.Context) ([]*Preset, error)
	Delete(ctx context.Context, name string) error
}

type presetRepo struct {
	db     *DB
	now    func() time.Time
	logger *slog.Logger
}

func NewPresetRepository(db *DB, logger *slog.Logger) PresetRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &presetRepo{db: db, now: time.Now, logger: logger}
}

func validatePreset(name string, keywords []string) ([]string, error) {
	v := common.NewValidator().
		Field("name", name, common.Required, common.MaxLen(MaxPresetNameLength), common.NoControlChars)
	if len(keywords) == 0 {
		v.Field("keywords", nil, common.Required)
	}

	seen := make(map[string]bool, len(keywords))
	clean := make([]string, 0, len(keywords))
	for _, k := range keywords {
		kw, err := entity.NewKeyword(k)
		if err != nil {
			v.Field("keywords", k, func(field string, value interface{}) *common.ValidationError {
				return &common.ValidationError{Field: field, Value: value, Message: err.Error()}
			})
			continue
		}
		if seen[kw.Normalized] {
			continue
		}
		seen[kw.Normalized] = true
		clean = append(clean, kw.Text)
	}
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	return clean, nil
}

// Save creates or replaces a preset. Duplicate keywords are collapsed
// case-insensitively, keeping the first spelling.
func (r *presetRepo) Save(ctx context.Context, name string, keywords []string) (*Preset, error) {
	name = strings.TrimSpace(name)
	clean, err := validatePreset(name, keywords)
	if err != nil {
		return nil, err
	}

	now := r.now().UnixMilli()
	err = r.db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, r.db.rebind(`INSERT INTO keyword_presets (name, created_at, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT (name) DO UPDATE SET updated_at = excluded.updated_at`), name, now, now); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			r.db.rebind(`DELETE FROM keyword_preset_items WHERE preset_name = ?`), name); err != nil {
			return err
		}
		for i, kw := range clean {
			if _, err := tx.ExecContext(ctx,
				r.db.rebind(`INSERT INTO keyword_preset_items (preset_name, position, keyword) VALUES (?, ?, ?)`),
				name, i, kw); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to save preset", "name", name, "error", err)
		return nil, common.NewAppError(common.CodeStorage, "cannot save preset", err)
	}
	r.logger.Debug("preset saved", "name", name, "keywords", len(clean))
	return r.Get(ctx, name)
}

func (r *presetRepo) Get(ctx context.Context, name string) (*Preset, error) {
	p := &Preset{}
	var created, updated int64
	err := r.db.QueryRowContext(ctx,
		r.db.rebind(`SELECT name, created_at, updated_at FROM keyword_presets WHERE name = ?`),
		strings.TrimSpace(name)).Scan(&p.Name, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError(common.CodeInput, "preset not found: "+name, common.ErrNotFound)
	}
	if err != nil {
		return nil, common.NewAppError(common.CodeStorage, "cannot read preset", err)
	}
	p.CreatedAt = time.UnixMilli(created)
	p.UpdatedAt = time.UnixMilli(updated)

	if p.Keywords, err = r.items(ctx, p.Name); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *presetRepo) items(ctx context.Context, name string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		r.db.rebind(`SELECT keyword FROM keyword_preset_items WHERE preset_name = ? ORDER BY position ASC`), name)
	if err != nil {
		return nil, common.NewAppError(common.CodeStorage, "cannot read preset", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, common.NewAppError(common.CodeStorage, "cannot read preset", err)
		}
		out = append(out, kw)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError(common.CodeStorage, "cannot read preset", err)
	}
	return out, nil
}

// List returns all presets ordered by name.
func (r *presetRepo) List(ctx context.Context) ([]*Preset, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM keyword_presets ORDER BY name ASC`)
	if err != nil {
		return nil, common.NewAppError(common.CodeStorage, "cannot list presets", err)
	}
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return nil, common.NewAppError(common.CodeStorage, "cannot list presets", err)
		}
		names = append(names, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError(common.CodeStorage, "cannot list presets", err)
	}

	// Rows are closed first: SQLite runs on a single connection.
	out := make([]*Preset, 0, len(names))
	for _, n := range names {
		p, err := r.Get(ctx, n)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *presetRepo) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	var affected int64
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			r.db.rebind(`DELETE FROM keyword_preset_items WHERE preset_name = ?`), name); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, r.db.rebind(`DELETE FROM keyword_presets WHERE name = ?`), name)
		if err != nil {
			return err
		}
		affected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return common.NewAppError(common.CodeStorage, "cannot delete preset", err)
	}
	if affected == 0 {
		return common.NewAppError(common.CodeInput, "preset not found: "+name, common.ErrNotFound)
	}
	return nil
}
