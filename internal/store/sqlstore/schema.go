package sqlstore

// One schema set per store role. Unique constraints are named
// uniq_<table>_<column> so conflictField can recover the column from MySQL
// duplicate-entry errors. Cross-store references (billing/partners rows
// pointing at accounts users) carry no FK on purpose: the stores are
// independently owned. legacy_ref keeps the source identifier for
// re-investigation; it is deliberately NOT unique for referrals and partner
// transactions (see DESIGN.md on re-run dedupe).

var accountsSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          VARCHAR(36) PRIMARY KEY,
		legacy_ref  VARCHAR(64) NOT NULL,
		name        VARCHAR(191) NOT NULL,
		email       VARCHAR(191) NOT NULL,
		phone       VARCHAR(32),
		momo_number VARCHAR(32),
		country     VARCHAR(2) NOT NULL,
		created_at  DATETIME NOT NULL,
		CONSTRAINT uniq_users_email UNIQUE (email),
		CONSTRAINT uniq_users_phone UNIQUE (phone)
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id             VARCHAR(36) PRIMARY KEY,
		legacy_ref     VARCHAR(64) NOT NULL,
		user_id        VARCHAR(36) NOT NULL,
		title          VARCHAR(191) NOT NULL,
		description    TEXT,
		price          DOUBLE NOT NULL,
		currency       VARCHAR(8),
		status         VARCHAR(16) NOT NULL,
		images         TEXT,
		rating_count   INTEGER NOT NULL DEFAULT 0,
		rating_average DOUBLE NOT NULL DEFAULT 0,
		created_at     DATETIME NOT NULL,
		CONSTRAINT fk_products_user FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id         VARCHAR(36) PRIMARY KEY,
		legacy_ref VARCHAR(64) NOT NULL,
		product_id VARCHAR(36) NOT NULL,
		user_id    VARCHAR(36) NOT NULL,
		stars      INTEGER NOT NULL,
		comment    TEXT,
		created_at DATETIME NOT NULL,
		CONSTRAINT fk_ratings_product FOREIGN KEY (product_id) REFERENCES products(id),
		CONSTRAINT fk_ratings_user FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
}

var billingSchema = []string{
	`CREATE TABLE IF NOT EXISTS transactions (
		id         VARCHAR(36) PRIMARY KEY,
		legacy_ref VARCHAR(64) NOT NULL,
		user_id    VARCHAR(36) NOT NULL,
		type       VARCHAR(32) NOT NULL,
		amount     DOUBLE NOT NULL,
		status     VARCHAR(16) NOT NULL,
		reference  VARCHAR(191),
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id         VARCHAR(36) PRIMARY KEY,
		legacy_ref VARCHAR(64) NOT NULL,
		user_id    VARCHAR(36) NOT NULL,
		type       VARCHAR(16) NOT NULL,
		status     VARCHAR(16) NOT NULL,
		starts_at  DATETIME NOT NULL,
		expires_at DATETIME,
		created_at DATETIME NOT NULL
	)`,
}

var partnersSchema = []string{
	`CREATE TABLE IF NOT EXISTS partners (
		id           VARCHAR(36) PRIMARY KEY,
		legacy_ref   VARCHAR(64) NOT NULL,
		user_id      VARCHAR(36) NOT NULL,
		pack         VARCHAR(16) NOT NULL,
		balance      DOUBLE NOT NULL DEFAULT 0,
		active       BOOLEAN NOT NULL DEFAULT 0,
		activated_at DATETIME NOT NULL,
		created_at   DATETIME NOT NULL,
		CONSTRAINT uniq_partners_user_id UNIQUE (user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS partner_transactions (
		id                VARCHAR(36) PRIMARY KEY,
		legacy_ref        VARCHAR(64),
		partner_id        VARCHAR(36) NOT NULL,
		subscription_type VARCHAR(16) NOT NULL,
		amount            DOUBLE NOT NULL,
		label             VARCHAR(191),
		created_at        DATETIME NOT NULL,
		CONSTRAINT fk_ptx_partner FOREIGN KEY (partner_id) REFERENCES partners(id)
	)`,
	`CREATE TABLE IF NOT EXISTS referrals (
		id          VARCHAR(36) PRIMARY KEY,
		legacy_ref  VARCHAR(64) NOT NULL,
		referrer_id VARCHAR(36) NOT NULL,
		referred_id VARCHAR(36) NOT NULL,
		level       INTEGER NOT NULL,
		archived    BOOLEAN NOT NULL DEFAULT 0,
		created_at  DATETIME NOT NULL
	)`,
}
