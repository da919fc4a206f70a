package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, external_id, sku, title, description, price, compare_at_price, cost, quantity,
	barcode, images, category, tags, variants, status, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

type productJSON struct {
	images, variants []byte
}

func encodeProductJSON(p *entity.Product) (productJSON, error) {
	images, err := toJSON(p.Images)
	if err != nil {
		return productJSON{}, err
	}
	variants, err := toJSON(p.Variants)
	if err != nil {
		return productJSON{}, err
	}
	return productJSON{images: images, variants: variants}, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// Create persiste un nuevo producto. SKU y external_id vacíos se guardan como NULL para no chocar en el UNIQUE.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	js, err := encodeProductJSON(p)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err = r.q.Exec(ctx, query,
		p.ID, nullIfEmpty(p.ExternalID), nullIfEmpty(p.SKU), p.Title, p.Description, p.Price, p.CompareAtPrice, p.Cost,
		p.Quantity, p.Barcode, js.images, p.Category, tagsOrEmpty(p.Tags), js.variants, p.Status, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetByExternalID obtiene un producto por su id en el catálogo externo.
func (r *ProductRepo) GetByExternalID(ctx context.Context, externalID string) (*entity.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE external_id = $1`, externalID)
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
}

func (r *ProductRepo) findOne(ctx context.Context, query string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var (
		p                entity.Product
		externalID, sku  *string
		images, variants []byte
	)
	if err := row.Scan(
		&p.ID, &externalID, &sku, &p.Title, &p.Description, &p.Price, &p.CompareAtPrice, &p.Cost, &p.Quantity,
		&p.Barcode, &images, &p.Category, &p.Tags, &variants, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.ExternalID = derefString(externalID)
	p.SKU = derefString(sku)
	if err := fromJSON(images, &p.Images); err != nil {
		return nil, err
	}
	if err := fromJSON(variants, &p.Variants); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update reescribe todos los campos mutables del producto.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	js, err := encodeProductJSON(p)
	if err != nil {
		return err
	}
	query := `
		UPDATE products SET external_id = $2, sku = $3, title = $4, description = $5, price = $6,
			compare_at_price = $7, cost = $8, quantity = $9, barcode = $10, images = $11, category = $12,
			tags = $13, variants = $14, status = $15, updated_at = $16
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, nullIfEmpty(p.ExternalID), nullIfEmpty(p.SKU), p.Title, p.Description, p.Price,
		p.CompareAtPrice, p.Cost, p.Quantity, p.Barcode, js.images, p.Category,
		tagsOrEmpty(p.Tags), js.variants, p.Status, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List filtra y pagina productos; devuelve también el total sin paginar.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	where, args := productWhere(f)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

func productWhere(f repository.ProductFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if len(f.Tags) > 0 {
		add("tags && $%d", f.Tags)
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE $%d OR description ILIKE $%d OR array_to_string(tags, ' ') ILIKE $%d)", n, n, n))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Count total de productos (cualquier estado).
func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
