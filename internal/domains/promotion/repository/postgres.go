package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"discount-campaigns-backend/internal/domains/promotion/model"
	"discount-campaigns-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository serves the catalog from PostgreSQL.
// Conditions and rules live in child tables ordered by position.
func NewPostgresRepository(pool *pgxpool.Pool) PromotionRepository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) ListActive(ctx context.Context, asOf time.Time) ([]*model.Promotion, error) {
	const query = `
		SELECT id, code, name, type_code, category, stack_mode, priority, start_at, end_at
		FROM promotions
		WHERE (start_at IS NULL OR start_at::date <= $1::date)
		  AND (end_at IS NULL OR end_at::date >= $1::date)
		ORDER BY priority, code
	`

	rows, err := r.pool.Query(ctx, query, asOf.UTC())
	if err != nil {
		logger.Error("ListActive: query failed", err)
		return nil, fmt.Errorf("failed to list active promotions: %w", err)
	}
	defer rows.Close()

	promos, err := scanPromotions(rows)
	if err != nil {
		return nil, err
	}

	if err := r.loadChildren(ctx, promos); err != nil {
		return nil, err
	}
	return promos, nil
}

func (r *postgresRepository) FindByCode(ctx context.Context, code string) (*model.Promotion, error) {
	const query = `
		SELECT id, code, name, type_code, category, stack_mode, priority, start_at, end_at
		FROM promotions
		WHERE upper(code) = upper($1)
	`

	rows, err := r.pool.Query(ctx, query, code)
	if err != nil {
		logger.Error("FindByCode: query failed", err)
		return nil, fmt.Errorf("failed to find promotion: %w", err)
	}
	defer rows.Close()

	promos, err := scanPromotions(rows)
	if err != nil {
		return nil, err
	}
	if len(promos) == 0 {
		return nil, model.ErrPromotionNotFound
	}

	if err := r.loadChildren(ctx, promos[:1]); err != nil {
		return nil, err
	}
	return promos[0], nil
}

func (r *postgresRepository) ListTemplates(ctx context.Context) ([]*model.PromotionTypeTemplate, error) {
	const query = `SELECT code, name, schema FROM promotion_templates ORDER BY code`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		logger.Error("ListTemplates: query failed", err)
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []*model.PromotionTypeTemplate
	for rows.Next() {
		t := &model.PromotionTypeTemplate{}
		if err := rows.Scan(&t.Code, &t.Name, &t.Schema); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *postgresRepository) ResolveCampaignName(ctx context.Context, name string) (string, bool, error) {
	const query = `SELECT promotion_code FROM campaign_names WHERE lower(name) = lower($1)`

	var code string
	err := r.pool.QueryRow(ctx, query, strings.TrimSpace(name)).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		logger.Error("ResolveCampaignName: query failed", err)
		return "", false, fmt.Errorf("failed to resolve campaign name: %w", err)
	}
	return code, true, nil
}

// loadChildren attaches conditions and rules to the given promotions.
func (r *postgresRepository) loadChildren(ctx context.Context, promos []*model.Promotion) error {
	if len(promos) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*model.Promotion, len(promos))
	ids := make([]uuid.UUID, 0, len(promos))
	for _, p := range promos {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	const condQuery = `
		SELECT promotion_id, type, payload
		FROM promotion_conditions
		WHERE promotion_id = ANY($1)
		ORDER BY promotion_id, position
	`
	condRows, err := r.pool.Query(ctx, condQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to load conditions: %w", err)
	}
	defer condRows.Close()

	for condRows.Next() {
		var promoID uuid.UUID
		var cond model.Condition
		if err := condRows.Scan(&promoID, &cond.Type, &cond.Payload); err != nil {
			return fmt.Errorf("failed to scan condition: %w", err)
		}
		if p := byID[promoID]; p != nil {
			p.Conditions = append(p.Conditions, cond)
		}
	}
	if err := condRows.Err(); err != nil {
		return err
	}

	const ruleQuery = `
		SELECT promotion_id, type, payload
		FROM promotion_rules
		WHERE promotion_id = ANY($1)
		ORDER BY promotion_id, position
	`
	ruleRows, err := r.pool.Query(ctx, ruleQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	defer ruleRows.Close()

	for ruleRows.Next() {
		var promoID uuid.UUID
		var rule model.Rule
		if err := ruleRows.Scan(&promoID, &rule.Type, &rule.Payload); err != nil {
			return fmt.Errorf("failed to scan rule: %w", err)
		}
		if p := byID[promoID]; p != nil {
			p.Rules = append(p.Rules, rule)
		}
	}
	return ruleRows.Err()
}

func scanPromotions(rows pgx.Rows) ([]*model.Promotion, error) {
	var promos []*model.Promotion
	for rows.Next() {
		p := &model.Promotion{}
		if err := rows.Scan(
			&p.ID,
			&p.Code,
			&p.Name,
			&p.TypeCode,
			&p.Category,
			&p.Stack,
			&p.Priority,
			&p.StartAt,
			&p.EndAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan promotion: %w", err)
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}
