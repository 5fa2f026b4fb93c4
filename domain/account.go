package domain

// Plan tiers from the billing system. The tier decides the active batch
// size and how long a recommendation context lives.
const (
	PlanFree    = "free"
	PlanStarter = "starter"
	PlanPro     = "pro"
	PlanAgency  = "agency"
)

// AccountProfile is the slice of the account/billing record the
// recommendation core needs: plan tier and industry tag.
type AccountProfile struct {
	AccountID uint   `gorm:"column:account_id;primaryKey" json:"account_id"`
	PlanTier  string `gorm:"column:plan_tier;not null;default:'free'" json:"plan_tier"`
	Industry  string `gorm:"column:industry" json:"industry"`
}

func (AccountProfile) TableName() string {
	return "account_profiles"
}
