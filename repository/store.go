package repository

import (
	"errors"
	"time"

	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/services"
	"github.com/harborline/CruiseLink/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the gorm-backed persistence boundary. Inside a transaction the
// single-row getters take SELECT ... FOR UPDATE locks so check-then-set
// sequences (ownership pointer, confirm idempotency, payslip status)
// cannot race.
type Store struct {
	db   *gorm.DB
	inTx bool
}

// NewStore wraps a gorm handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn against a store bound to one database transaction.
func (s *Store) Transaction(fn func(services.Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, inTx: true})
	})
}

func (s *Store) Profiles() services.ProfileStore { return (*profileStore)(s) }
func (s *Store) Leads() services.LeadStore       { return (*leadStore)(s) }
func (s *Store) Tiers() services.TierStore       { return (*tierStore)(s) }
func (s *Store) Sales() services.SaleStore       { return (*saleStore)(s) }
func (s *Store) Payslips() services.PayslipStore { return (*payslipStore)(s) }
func (s *Store) Audit() services.AuditStore      { return (*auditStore)(s) }

func (s *Store) locked() *gorm.DB {
	if s.inTx {
		return s.db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return s.db
}

type profileStore Store

func (s *profileStore) GetProfile(id uint) (*models.AffiliateProfile, error) {
	var profile models.AffiliateProfile
	if err := s.db.First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundErr("Profile not found", err)
		}
		return nil, err
	}
	return &profile, nil
}

func (s *profileStore) GetActiveManager(agentID uint) (*models.AffiliateProfile, error) {
	var relation models.AffiliateRelation
	err := s.db.Where("agent_id = ? AND status = ?", agentID, models.RelationStatusActive).
		First(&relation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var manager models.AffiliateProfile
	if err := s.db.First(&manager, relation.ManagerID).Error; err != nil {
		return nil, err
	}
	return &manager, nil
}

func (s *profileStore) GetActiveAgents(managerID uint) ([]models.AffiliateProfile, error) {
	var agents []models.AffiliateProfile
	err := s.db.
		Joins("JOIN affiliate_relations ON affiliate_relations.agent_id = affiliate_profiles.id").
		Where("affiliate_relations.manager_id = ? AND affiliate_relations.status = ?", managerID, models.RelationStatusActive).
		Find(&agents).Error
	if err != nil {
		return nil, err
	}
	return agents, nil
}

type leadStore Store

func (s *leadStore) GetLead(id uint) (*models.AffiliateLead, error) {
	var lead models.AffiliateLead
	if err := (*Store)(s).locked().First(&lead, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundErr("Lead not found", err)
		}
		return nil, err
	}
	return &lead, nil
}

func (s *leadStore) SaveLead(lead *models.AffiliateLead) error {
	// Save skips nil pointer columns, so clear the ownership columns
	// explicitly before writing the rest of the record.
	if err := s.db.Model(lead).
		Select("manager_id", "agent_id", "status", "updated_at").
		Updates(map[string]interface{}{
			"manager_id": lead.ManagerID,
			"agent_id":   lead.AgentID,
			"status":     lead.Status,
			"updated_at": time.Now(),
		}).Error; err != nil {
		return err
	}
	return nil
}

func (s *leadStore) AppendTransferEvent(event *models.LeadTransferEvent) error {
	return s.db.Create(event).Error
}

type tierStore Store

func (s *tierStore) FindTier(productCode, cabinType, fareCategory string, fareLabel *string) (*models.AffiliateCommissionTier, error) {
	query := s.db.Where("product_code = ? AND cabin_type = ? AND fare_category = ?", productCode, cabinType, fareCategory)
	if fareLabel != nil {
		query = query.Where("fare_label = ?", *fareLabel)
	} else {
		query = query.Where("fare_label IS NULL")
	}

	var tier models.AffiliateCommissionTier
	if err := query.First(&tier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tier, nil
}

type saleStore Store

func (s *saleStore) CreateSale(sale *models.AffiliateSale) error {
	return s.db.Create(sale).Error
}

func (s *saleStore) GetSale(id uint) (*models.AffiliateSale, error) {
	var sale models.AffiliateSale
	if err := (*Store)(s).locked().First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundErr("Sale not found", err)
		}
		return nil, err
	}
	return &sale, nil
}

func (s *saleStore) SaveSale(sale *models.AffiliateSale) error {
	return s.db.Save(sale).Error
}

func (s *saleStore) ListConfirmedSales(profileID uint, from, to time.Time) ([]models.AffiliateSale, error) {
	var sales []models.AffiliateSale
	err := s.db.
		Where("status = ?", models.SaleStatusConfirmed).
		Where("sale_date >= ? AND sale_date < ?", from, to).
		Where("manager_id = ? OR agent_id = ?", profileID, profileID).
		Order("sale_date ASC").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

type payslipStore Store

func (s *payslipStore) GetPayslip(id uint) (*models.AffiliatePayslip, error) {
	var payslip models.AffiliatePayslip
	if err := (*Store)(s).locked().First(&payslip, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundErr("Payslip not found", err)
		}
		return nil, err
	}
	return &payslip, nil
}

func (s *payslipStore) FindPayslip(profileID uint, period string) (*models.AffiliatePayslip, error) {
	var payslip models.AffiliatePayslip
	err := (*Store)(s).locked().
		Where("profile_id = ? AND period = ?", profileID, period).
		First(&payslip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payslip, nil
}

func (s *payslipStore) SavePayslip(payslip *models.AffiliatePayslip) error {
	if payslip.ID == 0 {
		// Upsert on the (profile_id, period) unique key so two concurrent
		// first runs collapse into one row.
		return s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}, {Name: "period"}},
			UpdateAll: true,
		}).Create(payslip).Error
	}
	return s.db.Save(payslip).Error
}

type auditStore Store

func (s *auditStore) AppendInteraction(interaction *models.AuditInteraction) error {
	return s.db.Create(interaction).Error
}
