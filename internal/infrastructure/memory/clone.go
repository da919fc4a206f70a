// Package memory implementa los puertos de persistencia en memoria.
// Se usa en tests y con DB_DRIVER=memory; respeta las mismas restricciones de unicidad que PostgreSQL.
package memory

import "github.com/jhoicas/storefront-api/internal/domain/entity"

func cloneUser(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Addresses = append([]entity.Address(nil), u.Addresses...)
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}

func cloneProduct(p *entity.Product) *entity.Product {
	if p == nil {
		return nil
	}
	c := *p
	c.Images = append([]entity.ProductImage(nil), p.Images...)
	c.Tags = append([]string(nil), p.Tags...)
	if p.Variants != nil {
		c.Variants = make([]entity.ProductVariant, len(p.Variants))
		for i, v := range p.Variants {
			vc := v
			if v.Options != nil {
				vc.Options = make(map[string]string, len(v.Options))
				for k, val := range v.Options {
					vc.Options[k] = val
				}
			}
			c.Variants[i] = vc
		}
	}
	if p.CompareAtPrice != nil {
		d := *p.CompareAtPrice
		c.CompareAtPrice = &d
	}
	if p.Cost != nil {
		d := *p.Cost
		c.Cost = &d
	}
	return &c
}

func cloneOrder(o *entity.Order) *entity.Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = append([]entity.OrderItem(nil), o.Items...)
	return &c
}
