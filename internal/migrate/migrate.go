// Package migrate creates and upgrades the storeadmin schema.
package migrate

import (
	"context"

	"storeadmin/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Options struct {
	CreateChecks           bool // CHECK constraints on money, quantities and enums
	CreateIndexes          bool // partial unique indexes and search indexes
	CreateFKsViaSQL        bool // foreign keys with explicit ON DELETE behaviour
	CreateUpdatedAtTrigger bool
}

func DefaultOptions() Options {
	return Options{
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
	}
}

// Tables lists every entity in dependency order.
func Tables() []any {
	return []any{
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.ProductAttribute{},
		&models.ProductVariant{},
		&models.Cart{},
		&models.CartItem{},
		&models.CustomerAddress{},
		&models.Order{},
		&models.OrderItem{},
		&models.Transaction{},
		&models.KYCApplication{},
		&models.ReturnOrder{},
		&models.Review{},
		&models.SupportTicket{},
		&models.Blog{},
	}
}

type step struct {
	name string
	sql  string
}

var updatedAtTables = []string{
	"users", "categories", "products", "product_variants", "carts", "cart_items",
	"customer_addresses", "orders", "transactions", "kyc_applications", "return_orders",
	"reviews", "support_tickets", "blogs",
}

var checks = []step{
	{"chk products", `
ALTER TABLE products
	DROP CONSTRAINT IF EXISTS chk_products_price,
	ADD CONSTRAINT chk_products_price
	CHECK (price >= 0 AND (sale_price IS NULL OR (sale_price >= 0 AND sale_price <= price))),
	DROP CONSTRAINT IF EXISTS chk_products_stock,
	ADD CONSTRAINT chk_products_stock CHECK (stock_quantity >= 0),
	DROP CONSTRAINT IF EXISTS chk_products_stock_status,
	ADD CONSTRAINT chk_products_stock_status
	CHECK (stock_status IN ('in_stock','out_of_stock','on_backorder')),
	DROP CONSTRAINT IF EXISTS chk_products_status,
	ADD CONSTRAINT chk_products_status CHECK (status IN ('active','inactive','draft'));
`},
	{"chk product_variants", `
ALTER TABLE product_variants
	DROP CONSTRAINT IF EXISTS chk_product_variants_stock,
	ADD CONSTRAINT chk_product_variants_stock CHECK (stock_quantity >= 0 AND price >= 0);
`},
	{"chk cart_items", `
ALTER TABLE cart_items
	DROP CONSTRAINT IF EXISTS chk_cart_items_quantity,
	ADD CONSTRAINT chk_cart_items_quantity CHECK (quantity > 0);
`},
	{"chk users", `
ALTER TABLE users
	DROP CONSTRAINT IF EXISTS chk_users_role,
	ADD CONSTRAINT chk_users_role CHECK (role IN ('admin','customer')),
	DROP CONSTRAINT IF EXISTS chk_users_status,
	ADD CONSTRAINT chk_users_status CHECK (status IN ('active','inactive','suspended'));
`},
	{"chk orders", `
ALTER TABLE orders
	DROP CONSTRAINT IF EXISTS chk_orders_status,
	ADD CONSTRAINT chk_orders_status
	CHECK (status IN ('pending','confirmed','processing','shipped','delivered','cancelled','refunded')),
	DROP CONSTRAINT IF EXISTS chk_orders_payment_status,
	ADD CONSTRAINT chk_orders_payment_status
	CHECK (payment_status IN ('pending','paid','failed','refunded')),
	DROP CONSTRAINT IF EXISTS chk_orders_amounts,
	ADD CONSTRAINT chk_orders_amounts
	CHECK (subtotal >= 0 AND tax_amount >= 0 AND shipping_amount >= 0 AND discount_amount >= 0 AND total_amount >= 0);
`},
	{"chk order_items", `
ALTER TABLE order_items
	DROP CONSTRAINT IF EXISTS chk_order_items_quantity,
	ADD CONSTRAINT chk_order_items_quantity CHECK (quantity > 0);
`},
	{"chk customer_addresses", `
ALTER TABLE customer_addresses
	DROP CONSTRAINT IF EXISTS chk_customer_addresses_type,
	ADD CONSTRAINT chk_customer_addresses_type CHECK (address_type IN ('billing','shipping'));
`},
	{"chk transactions", `
ALTER TABLE transactions
	DROP CONSTRAINT IF EXISTS chk_transactions_amount,
	ADD CONSTRAINT chk_transactions_amount
	CHECK (amount > 0 AND refunded_amount >= 0 AND refunded_amount <= amount),
	DROP CONSTRAINT IF EXISTS chk_transactions_type,
	ADD CONSTRAINT chk_transactions_type
	CHECK (transaction_type IN ('payment','refund','chargeback','adjustment','credit')),
	DROP CONSTRAINT IF EXISTS chk_transactions_status,
	ADD CONSTRAINT chk_transactions_status
	CHECK (status IN ('pending','completed','failed','cancelled','refunded'));
`},
	{"chk kyc_applications", `
ALTER TABLE kyc_applications
	DROP CONSTRAINT IF EXISTS chk_kyc_status,
	ADD CONSTRAINT chk_kyc_status CHECK (status IN ('pending','accepted','rejected')),
	DROP CONSTRAINT IF EXISTS chk_kyc_document_type,
	ADD CONSTRAINT chk_kyc_document_type
	CHECK (document_type IN ('aadhaar','pan','passport','driving_license')),
	DROP CONSTRAINT IF EXISTS chk_kyc_rejection_reason,
	ADD CONSTRAINT chk_kyc_rejection_reason
	CHECK (status <> 'rejected' OR coalesce(rejection_reason, '') <> '');
`},
	{"chk return_orders", `
ALTER TABLE return_orders
	DROP CONSTRAINT IF EXISTS chk_return_orders_quantity,
	ADD CONSTRAINT chk_return_orders_quantity CHECK (quantity > 0 AND refund_amount >= 0),
	DROP CONSTRAINT IF EXISTS chk_return_orders_status,
	ADD CONSTRAINT chk_return_orders_status
	CHECK (status IN ('Return Initiated','Return in Progress','QC in Progress','Returned','Scrapped','Cancelled'));
`},
	{"chk reviews", `
ALTER TABLE reviews
	DROP CONSTRAINT IF EXISTS chk_reviews_rating,
	ADD CONSTRAINT chk_reviews_rating CHECK (
		rating BETWEEN 1 AND 5
		AND (product_quality_rating IS NULL OR product_quality_rating BETWEEN 1 AND 5)
		AND (shipping_rating IS NULL OR shipping_rating BETWEEN 1 AND 5)
		AND (seller_rating IS NULL OR seller_rating BETWEEN 1 AND 5)),
	DROP CONSTRAINT IF EXISTS chk_reviews_status,
	ADD CONSTRAINT chk_reviews_status CHECK (status IN ('pending','approved','rejected'));
`},
	{"chk support_tickets", `
ALTER TABLE support_tickets
	DROP CONSTRAINT IF EXISTS chk_support_tickets_status,
	ADD CONSTRAINT chk_support_tickets_status
	CHECK (status IN ('open','in-progress','resolved','closed')),
	DROP CONSTRAINT IF EXISTS chk_support_tickets_priority,
	ADD CONSTRAINT chk_support_tickets_priority CHECK (priority IN ('low','medium','high','urgent')),
	DROP CONSTRAINT IF EXISTS chk_support_tickets_rating,
	ADD CONSTRAINT chk_support_tickets_rating
	CHECK (satisfaction_rating IS NULL OR satisfaction_rating BETWEEN 1 AND 5);
`},
	{"chk blogs", `
ALTER TABLE blogs
	DROP CONSTRAINT IF EXISTS chk_blogs_status,
	ADD CONSTRAINT chk_blogs_status CHECK (status IN ('draft','published','archived'));
`},
}

var indexes = []step{
	// at most one default address per customer and type
	{"ux customer_addresses default", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_customer_addresses_default
ON customer_addresses (customer_id, address_type) WHERE is_default;
`},
	// at most one live KYC application per user
	{"ux kyc_applications active", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_kyc_applications_active
ON kyc_applications (user_id) WHERE status IN ('pending','accepted');
`},
	{"ux product_images primary", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_product_images_primary
ON product_images (product_id) WHERE is_primary;
`},
	{"ix orders customer_created", `
CREATE INDEX IF NOT EXISTS ix_orders_customer_created
ON orders (customer_id, created_at DESC);
`},
	{"ix transactions customer_created", `
CREATE INDEX IF NOT EXISTS ix_transactions_customer_created
ON transactions (customer_id, created_at DESC);
`},
	{"ix products status_created", `
CREATE INDEX IF NOT EXISTS ix_products_status_created
ON products (status, created_at DESC);
`},
}

var foreignKeys = []step{
	{"fk products.category_id", `
ALTER TABLE products
	DROP CONSTRAINT IF EXISTS fk_products_category,
	ADD CONSTRAINT fk_products_category
	FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE SET NULL;
`},
	{"fk product children", `
ALTER TABLE product_images
	DROP CONSTRAINT IF EXISTS fk_product_images_product,
	ADD CONSTRAINT fk_product_images_product
	FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE;
ALTER TABLE product_attributes
	DROP CONSTRAINT IF EXISTS fk_product_attributes_product,
	ADD CONSTRAINT fk_product_attributes_product
	FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE;
ALTER TABLE product_variants
	DROP CONSTRAINT IF EXISTS fk_product_variants_product,
	ADD CONSTRAINT fk_product_variants_product
	FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE;
`},
	{"fk carts", `
ALTER TABLE carts
	DROP CONSTRAINT IF EXISTS fk_carts_user,
	ADD CONSTRAINT fk_carts_user
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE;
ALTER TABLE cart_items
	DROP CONSTRAINT IF EXISTS fk_cart_items_cart,
	ADD CONSTRAINT fk_cart_items_cart
	FOREIGN KEY (cart_id) REFERENCES carts(id) ON DELETE CASCADE,
	DROP CONSTRAINT IF EXISTS fk_cart_items_product,
	ADD CONSTRAINT fk_cart_items_product
	FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE;
`},
	{"fk customer_addresses", `
ALTER TABLE customer_addresses
	DROP CONSTRAINT IF EXISTS fk_customer_addresses_user,
	ADD CONSTRAINT fk_customer_addresses_user
	FOREIGN KEY (customer_id) REFERENCES users(id) ON DELETE CASCADE;
`},
	// order items keep their frozen copy when the product is deleted
	{"fk orders", `
ALTER TABLE orders
	DROP CONSTRAINT IF EXISTS fk_orders_customer,
	ADD CONSTRAINT fk_orders_customer
	FOREIGN KEY (customer_id) REFERENCES users(id) ON DELETE RESTRICT;
ALTER TABLE order_items
	DROP CONSTRAINT IF EXISTS fk_order_items_order,
	ADD CONSTRAINT fk_order_items_order
	FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
	DROP CONSTRAINT IF EXISTS fk_order_items_product,
	ADD CONSTRAINT fk_order_items_product
	FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE SET NULL;
`},
	{"fk transactions", `
ALTER TABLE transactions
	DROP CONSTRAINT IF EXISTS fk_transactions_customer,
	ADD CONSTRAINT fk_transactions_customer
	FOREIGN KEY (customer_id) REFERENCES users(id) ON DELETE RESTRICT,
	DROP CONSTRAINT IF EXISTS fk_transactions_order,
	ADD CONSTRAINT fk_transactions_order
	FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE SET NULL;
`},
	{"fk kyc_applications", `
ALTER TABLE kyc_applications
	DROP CONSTRAINT IF EXISTS fk_kyc_applications_user,
	ADD CONSTRAINT fk_kyc_applications_user
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE;
`},
	{"fk return_orders", `
ALTER TABLE return_orders
	DROP CONSTRAINT IF EXISTS fk_return_orders_order,
	ADD CONSTRAINT fk_return_orders_order
	FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
	DROP CONSTRAINT IF EXISTS fk_return_orders_customer,
	ADD CONSTRAINT fk_return_orders_customer
	FOREIGN KEY (customer_id) REFERENCES users(id) ON DELETE RESTRICT;
`},
	{"fk reviews", `
ALTER TABLE reviews
	DROP CONSTRAINT IF EXISTS fk_reviews_product,
	ADD CONSTRAINT fk_reviews_product
	FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE,
	DROP CONSTRAINT IF EXISTS fk_reviews_user,
	ADD CONSTRAINT fk_reviews_user
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE;
`},
	{"fk support_tickets", `
ALTER TABLE support_tickets
	DROP CONSTRAINT IF EXISTS fk_support_tickets_customer,
	ADD CONSTRAINT fk_support_tickets_customer
	FOREIGN KEY (customer_id) REFERENCES users(id) ON DELETE CASCADE,
	DROP CONSTRAINT IF EXISTS fk_support_tickets_assignee,
	ADD CONSTRAINT fk_support_tickets_assignee
	FOREIGN KEY (assigned_to) REFERENCES users(id) ON DELETE SET NULL;
`},
	{"fk blogs", `
ALTER TABLE blogs
	DROP CONSTRAINT IF EXISTS fk_blogs_author,
	ADD CONSTRAINT fk_blogs_author
	FOREIGN KEY (author_id) REFERENCES users(id) ON DELETE RESTRICT;
`},
}

// Run applies the schema. Every statement is idempotent so Run can be repeated
// on an existing database.
func Run(ctx context.Context, db *gorm.DB, log *zap.Logger, opt Options) error {
	db = db.WithContext(ctx)
	log.Info("starting storeadmin schema migration")

	if err := db.AutoMigrate(Tables()...); err != nil {
		log.Error("AutoMigrate error", zap.Error(err))
		return err
	}
	log.Info("tables migrated")

	if opt.CreateUpdatedAtTrigger {
		if err := db.Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;
`).Error; err != nil {
			log.Error("set_updated_at function error", zap.Error(err))
			return err
		}
		for _, table := range updatedAtTables {
			if err := db.Exec(`DROP TRIGGER IF EXISTS trg_` + table + `_updated ON ` + table + `;
CREATE TRIGGER trg_` + table + `_updated BEFORE UPDATE ON ` + table + `
FOR EACH ROW EXECUTE FUNCTION set_updated_at();`).Error; err != nil {
				log.Error("updated_at trigger error", zap.String("table", table), zap.Error(err))
				return err
			}
		}
		log.Info("updated_at triggers created")
	}

	if opt.CreateChecks {
		if err := apply(db, log, checks); err != nil {
			return err
		}
		log.Info("CHECK constraints created")
	}

	if opt.CreateIndexes {
		if err := apply(db, log, indexes); err != nil {
			return err
		}
		log.Info("indexes created")
	}

	if opt.CreateFKsViaSQL {
		if err := apply(db, log, foreignKeys); err != nil {
			return err
		}
		log.Info("foreign keys created")
	}

	log.Info("storeadmin schema migration finished")
	return nil
}

func apply(db *gorm.DB, log *zap.Logger, steps []step) error {
	for _, s := range steps {
		if err := db.Exec(s.sql).Error; err != nil {
			log.Error(s.name, zap.Error(err))
			return err
		}
	}
	return nil
}
