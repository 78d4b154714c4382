package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"negobot/internal/model"
)

// MySQL is the production catalog store. Prices are stored as DECIMAL in
// rupees (the schema predates this service) and converted to paise at the
// boundary; embeddings are JSON-encoded float arrays in a TEXT column.
type MySQL struct {
	db *sql.DB
}

// OpenMySQL connects to the catalog database and verifies the connection.
func OpenMySQL(ctx context.Context, dsn string) (*MySQL, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return &MySQL{db: db}, nil
}

// NewMySQL wraps an existing connection pool. The caller owns the pool.
func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{db: db}
}

// Close releases the connection pool.
func (s *MySQL) Close() error {
	return s.db.Close()
}

// DB exposes the underlying pool so other stores can share the connection.
func (s *MySQL) DB() *sql.DB {
	return s.db
}

func (s *MySQL) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, min_price, stock, image
		FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFoundError("product")
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (s *MySQL) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, price, min_price, stock, image
		FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func (s *MySQL) UpsertProduct(ctx context.Context, p *model.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}

	var minPrice interface{}
	if p.HasMinPrice() {
		minPrice = rupeesDecimal(p.MinPrice)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, min_price, stock, image)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name), description = VALUES(description),
			price = VALUES(price), min_price = VALUES(min_price),
			stock = VALUES(stock), image = VALUES(image)`,
		p.ID, p.Name, p.Description, rupeesDecimal(p.Price), minPrice, p.Stock, p.Image)
	if err != nil {
		return fmt.Errorf("upsert product %d: %w", p.ID, err)
	}
	return nil
}

func (s *MySQL) UpdateEmbedding(ctx context.Context, id int64, embedding []float32) error {
	data, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET embedding = ? WHERE id = ?`, data, id)
	if err != nil {
		return fmt.Errorf("update embedding %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Zero rows can also mean an identical embedding; verify existence.
		var exists int
		if err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM products WHERE id = ?`, id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.NewNotFoundError("product")
			}
			return fmt.Errorf("update embedding %d: %w", id, err)
		}
	}
	return nil
}

func (s *MySQL) GetEmbeddings(ctx context.Context) (map[int64][]float32, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, embedding FROM products WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("get embeddings: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]float32)
	for rows.Next() {
		var id int64
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		var vec []float32
		if err := json.Unmarshal(data, &vec); err != nil {
			// Skip corrupt rows rather than failing the whole index.
			continue
		}
		out[id] = vec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get embeddings: %w", err)
	}
	return out, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row scanner) (*model.Product, error) {
	var p model.Product
	var price string
	var minPrice sql.NullString
	var description, image sql.NullString

	if err := row.Scan(&p.ID, &p.Name, &description, &price, &minPrice, &p.Stock, &image); err != nil {
		return nil, err
	}
	p.Description = description.String
	p.Image = image.String
	p.Price = model.ParsePaise(price)
	if minPrice.Valid {
		p.MinPrice = model.ParsePaise(minPrice.String)
	}
	return &p, nil
}

// rupeesDecimal renders paise as a DECIMAL(12,2) literal in rupees.
func rupeesDecimal(paise int64) string {
	return fmt.Sprintf("%d.%02d", paise/100, paise%100)
}
