package postgresadapter

import "time"

// syncColumns are the sync bookkeeping fields every syncable table carries
// alongside its business columns. JSON names match the wire protocol keys
// the engine probes.
type syncColumns struct {
	ID          string     `gorm:"column:id;primaryKey" json:"id"`
	TenantID    string     `gorm:"column:tenant_id;index" json:"tenant_id"`
	UpdatedAt   *time.Time `gorm:"column:updated_at" json:"updated_at"`
	IsSynced    bool       `gorm:"column:is_synced;index" json:"is_synced"`
	SyncVersion int64      `gorm:"column:sync_version" json:"sync_version"`
}

type patientRow struct {
	syncColumns `gorm:"embedded"`
	FirstName   string     `gorm:"column:first_name" json:"first_name"`
	LastName    string     `gorm:"column:last_name" json:"last_name"`
	Gender      string     `gorm:"column:gender" json:"gender"`
	DateOfBirth *time.Time `gorm:"column:date_of_birth" json:"date_of_birth"`
	PhoneNumber string     `gorm:"column:phone_number" json:"phone_number"`
	Email       string     `gorm:"column:email" json:"email"`
	Address     string     `gorm:"column:address" json:"address"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (patientRow) TableName() string {
	return "patients"
}

type invoiceRow struct {
	syncColumns   `gorm:"embedded"`
	PatientID     string     `gorm:"column:patient_id" json:"patient_id"`
	InvoiceNumber string     `gorm:"column:invoice_number" json:"invoice_number"`
	Status        string     `gorm:"column:status" json:"status"`
	TotalCents    int64      `gorm:"column:total_cents" json:"total_cents"`
	Currency      string     `gorm:"column:currency" json:"currency"`
	IssuedAt      *time.Time `gorm:"column:issued_at" json:"issued_at"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (invoiceRow) TableName() string {
	return "invoices"
}

type appUserRow struct {
	syncColumns `gorm:"embedded"`
	Email       string    `gorm:"column:email" json:"email"`
	DisplayName string    `gorm:"column:display_name" json:"display_name"`
	Role        string    `gorm:"column:role" json:"role"`
	IsDisabled  bool      `gorm:"column:is_disabled" json:"is_disabled"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (appUserRow) TableName() string {
	return "app_users"
}

type userProfileRow struct {
	syncColumns    `gorm:"embedded"`
	UserID         string    `gorm:"column:user_id" json:"user_id"`
	FirstName      string    `gorm:"column:first_name" json:"first_name"`
	LastName       string    `gorm:"column:last_name" json:"last_name"`
	PhoneNumber    string    `gorm:"column:phone_number" json:"phone_number"`
	Department     string    `gorm:"column:department" json:"department"`
	JobTitle       string    `gorm:"column:job_title" json:"job_title"`
	IsMedicalStaff bool      `gorm:"column:is_medical_staff" json:"is_medical_staff"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (userProfileRow) TableName() string {
	return "user_profiles"
}

type tenantSubscriptionRow struct {
	syncColumns           `gorm:"embedded"`
	Plan                  string     `gorm:"column:plan" json:"plan"`
	Status                string     `gorm:"column:status" json:"status"`
	StartAt               *time.Time `gorm:"column:start_at" json:"start_at"`
	EndAt                 *time.Time `gorm:"column:end_at" json:"end_at"`
	RenewalAt             *time.Time `gorm:"column:renewal_at" json:"renewal_at"`
	BillingCustomerID     string     `gorm:"column:billing_customer_id" json:"billing_customer_id"`
	BillingSubscriptionID string     `gorm:"column:billing_subscription_id" json:"billing_subscription_id"`
	CreatedAt             time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (tenantSubscriptionRow) TableName() string {
	return "tenant_subscriptions"
}
