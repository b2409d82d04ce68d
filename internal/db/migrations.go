package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS suppliers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		code VARCHAR(64) NOT NULL,
		email VARCHAR(255) NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_suppliers_code ON suppliers (code);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		supplier_id UUID NOT NULL REFERENCES suppliers(id),
		contract_number VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		contract_type VARCHAR(32) NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'draft',
		currency CHAR(3) NOT NULL,
		valid_from DATE NOT NULL,
		valid_to DATE NOT NULL,
		commission_percent NUMERIC(5,2) NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_by UUID NOT NULL,
		updated_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (valid_from <= valid_to)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contracts_number ON contracts (contract_number) WHERE is_active;`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_supplier_id ON contracts (supplier_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts (status) WHERE is_active;`,
	`CREATE TABLE IF NOT EXISTS contract_deadlines (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		title VARCHAR(255) NOT NULL,
		deadline_type VARCHAR(32) NOT NULL,
		deadline_date TIMESTAMPTZ NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'pending',
		reminder_days_before INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		completed_at TIMESTAMPTZ,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_deadlines_contract_id ON contract_deadlines (contract_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_deadlines_pending ON contract_deadlines (deadline_date) WHERE status = 'pending' AND is_active;`,
	`CREATE TABLE IF NOT EXISTS allocation_pools (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		supplier_id UUID NOT NULL REFERENCES suppliers(id),
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		capacity INTEGER,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS contract_allocations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		pool_id UUID REFERENCES allocation_pools(id),
		product_name VARCHAR(255) NOT NULL,
		allocation_type VARCHAR(16) NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		quantity INTEGER,
		booked INTEGER NOT NULL DEFAULT 0,
		held INTEGER NOT NULL DEFAULT 0,
		release_days INTEGER NOT NULL DEFAULT 0,
		release_date DATE,
		is_blackout BOOLEAN NOT NULL DEFAULT FALSE,
		is_stop_sell BOOLEAN NOT NULL DEFAULT FALSE,
		released_at TIMESTAMPTZ,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (start_date <= end_date),
		CHECK (booked >= 0 AND held >= 0)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_allocations_contract_id ON contract_allocations (contract_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_allocations_pool_id ON contract_allocations (pool_id) WHERE pool_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_contract_allocations_dates ON contract_allocations (start_date, end_date) WHERE is_active;`,
	`CREATE TABLE IF NOT EXISTS selling_rates (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		product_name VARCHAR(255) NOT NULL,
		rate_plan_name VARCHAR(255) NOT NULL,
		variant_name VARCHAR(255) NOT NULL DEFAULT '',
		board_basis VARCHAR(32) NOT NULL DEFAULT '',
		rate_type VARCHAR(16) NOT NULL,
		currency CHAR(3) NOT NULL,
		cost_price NUMERIC(18,2) NOT NULL,
		sell_price NUMERIC(18,2) NOT NULL,
		min_stay INTEGER NOT NULL DEFAULT 0,
		valid_from DATE NOT NULL,
		valid_to DATE NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (valid_from <= valid_to)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_selling_rates_variant ON selling_rates (contract_id, product_name, rate_plan_name, variant_name) WHERE is_active;`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		entity_type VARCHAR(32) NOT NULL,
		entity_id UUID NOT NULL,
		contract_id UUID,
		action VARCHAR(32) NOT NULL,
		field_name VARCHAR(64),
		old_value TEXT,
		new_value TEXT,
		changed_by UUID NOT NULL,
		changed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs (entity_type, entity_id);`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_contract_id ON audit_logs (contract_id, changed_at DESC) WHERE contract_id IS NOT NULL;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
