package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/storefront-api/internal/application/auth"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/infrastructure/storage"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

type seedUser struct {
	email, password, first, last, phone, role string
}

type seedProduct struct {
	sku, title, description, category string
	price, compareAt, cost            string
	quantity                          int
	tags                              []string
	variants                          []seedVariant
}

type seedVariant struct {
	title, optionKey, optionValue, price string
	quantity                             int
}

// result cuenta lo creado y lo que ya existía.
type result struct {
	UsersCreated, UsersSkipped       int
	ProductsCreated, ProductsSkipped int
}

func seedUsers(adminPassword, customerPassword string) []seedUser {
	return []seedUser{
		{"admin@shophub.com", adminPassword, "Admin", "User", "+1234567890", entity.RoleAdmin},
		{"customer@shophub.com", customerPassword, "John", "Doe", "+1234567891", entity.RoleCustomer},
	}
}

var seedProducts = []seedProduct{
	{
		sku: "WH-001", title: "Wireless Headphones", category: "Electronics",
		description: "Premium noise-cancelling wireless headphones with 30-hour battery life",
		price:       "199.99", compareAt: "249.99", cost: "80", quantity: 50,
		tags: []string{"audio", "wireless", "headphones", "premium"},
		variants: []seedVariant{
			{"Black", "color", "Black", "199.99", 30},
			{"Silver", "color", "Silver", "199.99", 20},
		},
	},
	{
		sku: "USB-001", title: "USB-C Cable", category: "Accessories",
		description: "Fast charging USB-C cable compatible with all devices",
		price:       "12.99", compareAt: "19.99", cost: "3", quantity: 200,
		tags: []string{"cable", "usb-c", "charging"},
		variants: []seedVariant{
			{"1m", "length", "1m", "12.99", 100},
			{"2m", "length", "2m", "14.99", 100},
		},
	},
	{
		sku: "CASE-001", title: "Phone Case", category: "Accessories",
		description: "Durable protective phone case with premium design",
		price:       "24.99", compareAt: "35.99", cost: "8", quantity: 150,
		tags: []string{"case", "protection", "phone"},
		variants: []seedVariant{
			{"iPhone 14", "model", "iPhone 14", "24.99", 75},
			{"Samsung S23", "model", "Samsung S23", "24.99", 75},
		},
	},
	{
		sku: "SSD-001", title: "Portable SSD 1TB", category: "Electronics",
		description: "1TB portable SSD with high-speed data transfer",
		price:       "99.99", compareAt: "129.99", cost: "40", quantity: 30,
		tags: []string{"storage", "ssd", "portable"},
		variants: []seedVariant{
			{"512GB", "capacity", "512GB", "49.99", 15},
			{"1TB", "capacity", "1TB", "99.99", 15},
		},
	},
}

// run crea cuentas y productos de ejemplo. Es idempotente: emails y SKUs existentes se saltan.
func run(ctx context.Context, store *storage.Store, users []seedUser, hashCost int, log *logger.Logger) (result, error) {
	var res result
	now := time.Now().UTC()

	for _, u := range users {
		email := auth.NormalizeEmail(u.email)
		existing, err := store.Users.GetByEmail(ctx, email)
		if err != nil {
			return res, fmt.Errorf("buscar usuario %s: %w", email, err)
		}
		if existing != nil {
			res.UsersSkipped++
			log.Info().Str("email", email).Msg("usuario ya existe, se omite")
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), hashCost)
		if err != nil {
			return res, fmt.Errorf("hash password: %w", err)
		}
		if err := store.Users.Create(ctx, &entity.User{
			ID:           uuid.New().String(),
			Email:        email,
			PasswordHash: string(hash),
			FirstName:    u.first,
			LastName:     u.last,
			Phone:        u.phone,
			Role:         u.role,
			Preferences:  entity.DefaultPreferences(),
			IsVerified:   true,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			return res, fmt.Errorf("crear usuario %s: %w", email, err)
		}
		res.UsersCreated++
		log.Info().Str("email", email).Str("role", u.role).Msg("usuario creado")
	}

	for _, p := range seedProducts {
		existing, err := store.Products.GetBySKU(ctx, p.sku)
		if err != nil {
			return res, fmt.Errorf("buscar producto %s: %w", p.sku, err)
		}
		if existing != nil {
			res.ProductsSkipped++
			continue
		}
		if err := store.Products.Create(ctx, p.toEntity(now)); err != nil {
			return res, fmt.Errorf("crear producto %s: %w", p.sku, err)
		}
		res.ProductsCreated++
		log.Info().Str("sku", p.sku).Msg("producto creado")
	}
	return res, nil
}

func (p seedProduct) toEntity(now time.Time) *entity.Product {
	compareAt := decimal.RequireFromString(p.compareAt)
	cost := decimal.RequireFromString(p.cost)
	out := &entity.Product{
		ID:             uuid.New().String(),
		SKU:            p.sku,
		Title:          p.title,
		Description:    p.description,
		Price:          decimal.RequireFromString(p.price),
		CompareAtPrice: &compareAt,
		Cost:           &cost,
		Quantity:       p.quantity,
		Images:         []entity.ProductImage{{URL: "https://via.placeholder.com/300x300?text=" + p.sku, Alt: p.title}},
		Category:       p.category,
		Tags:           p.tags,
		Status:         entity.ProductActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, v := range p.variants {
		out.Variants = append(out.Variants, entity.ProductVariant{
			Title:    v.title,
			Options:  map[string]string{v.optionKey: v.optionValue},
			Price:    decimal.RequireFromString(v.price),
			Quantity: v.quantity,
		})
	}
	return out
}
