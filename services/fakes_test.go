package services

import (
	"time"

	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/utils"
)

// memStore is an in-memory Store for unit tests. Transaction runs the
// callback against the same store; read methods hand out copies so an
// aborted callback does not leak partial writes into later assertions.
type memStore struct {
	profiles map[uint]models.AffiliateProfile
	managers map[uint]uint // agentID -> ACTIVE managerID
	leads    map[uint]models.AffiliateLead
	tiers    []models.AffiliateCommissionTier
	sales    map[uint]models.AffiliateSale
	payslips map[uint]models.AffiliatePayslip
	events   []models.LeadTransferEvent
	audits   []models.AuditInteraction

	nextID uint
}

func newMemStore() *memStore {
	return &memStore{
		profiles: map[uint]models.AffiliateProfile{},
		managers: map[uint]uint{},
		leads:    map[uint]models.AffiliateLead{},
		sales:    map[uint]models.AffiliateSale{},
		payslips: map[uint]models.AffiliatePayslip{},
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) addProfile(profileType models.ProfileType, status models.ProfileStatus) *models.AffiliateProfile {
	profile := models.AffiliateProfile{
		Type:          profileType,
		Status:        status,
		Name:          "Test Profile",
		BankName:      "Harbor Bank",
		BankAccountNo: "110-220-330",
	}
	profile.ID = m.id()
	m.profiles[profile.ID] = profile
	return &profile
}

func (m *memStore) attach(agentID, managerID uint) {
	m.managers[agentID] = managerID
}

func (m *memStore) addLead(managerID, agentID *uint) *models.AffiliateLead {
	lead := models.AffiliateLead{
		CustomerName: "Test Customer",
		Status:       models.LeadStatusNew,
		ManagerID:    managerID,
		AgentID:      agentID,
	}
	lead.ID = m.id()
	m.leads[lead.ID] = lead
	return &lead
}

func (m *memStore) addTier(tier models.AffiliateCommissionTier) *models.AffiliateCommissionTier {
	tier.ID = m.id()
	m.tiers = append(m.tiers, tier)
	return &tier
}

func (m *memStore) addSale(sale models.AffiliateSale) *models.AffiliateSale {
	sale.ID = m.id()
	m.sales[sale.ID] = sale
	return &sale
}

// Store interface

func (m *memStore) Profiles() ProfileStore { return m }
func (m *memStore) Leads() LeadStore       { return m }
func (m *memStore) Tiers() TierStore       { return m }
func (m *memStore) Sales() SaleStore       { return m }
func (m *memStore) Payslips() PayslipStore { return m }
func (m *memStore) Audit() AuditStore      { return m }

func (m *memStore) Transaction(fn func(Store) error) error {
	return fn(m)
}

// ProfileStore

func (m *memStore) GetProfile(id uint) (*models.AffiliateProfile, error) {
	profile, ok := m.profiles[id]
	if !ok {
		return nil, utils.NotFoundErr("Profile not found", nil)
	}
	return &profile, nil
}

func (m *memStore) GetActiveManager(agentID uint) (*models.AffiliateProfile, error) {
	managerID, ok := m.managers[agentID]
	if !ok {
		return nil, nil
	}
	manager := m.profiles[managerID]
	return &manager, nil
}

func (m *memStore) GetActiveAgents(managerID uint) ([]models.AffiliateProfile, error) {
	var agents []models.AffiliateProfile
	for agentID, mid := range m.managers {
		if mid == managerID {
			agents = append(agents, m.profiles[agentID])
		}
	}
	return agents, nil
}

// LeadStore

func (m *memStore) GetLead(id uint) (*models.AffiliateLead, error) {
	lead, ok := m.leads[id]
	if !ok {
		return nil, utils.NotFoundErr("Lead not found", nil)
	}
	return &lead, nil
}

func (m *memStore) SaveLead(lead *models.AffiliateLead) error {
	m.leads[lead.ID] = *lead
	return nil
}

func (m *memStore) AppendTransferEvent(event *models.LeadTransferEvent) error {
	event.ID = m.id()
	m.events = append(m.events, *event)
	return nil
}

// TierStore

func (m *memStore) FindTier(productCode, cabinType, fareCategory string, fareLabel *string) (*models.AffiliateCommissionTier, error) {
	for _, tier := range m.tiers {
		if tier.ProductCode != productCode || tier.CabinType != cabinType || tier.FareCategory != fareCategory {
			continue
		}
		if (tier.FareLabel == nil) != (fareLabel == nil) {
			continue
		}
		if tier.FareLabel != nil && *tier.FareLabel != *fareLabel {
			continue
		}
		found := tier
		return &found, nil
	}
	return nil, nil
}

// SaleStore

func (m *memStore) CreateSale(sale *models.AffiliateSale) error {
	sale.ID = m.id()
	m.sales[sale.ID] = *sale
	return nil
}

func (m *memStore) GetSale(id uint) (*models.AffiliateSale, error) {
	sale, ok := m.sales[id]
	if !ok {
		return nil, utils.NotFoundErr("Sale not found", nil)
	}
	return &sale, nil
}

func (m *memStore) SaveSale(sale *models.AffiliateSale) error {
	m.sales[sale.ID] = *sale
	return nil
}

func (m *memStore) ListConfirmedSales(profileID uint, from, to time.Time) ([]models.AffiliateSale, error) {
	var out []models.AffiliateSale
	for _, sale := range m.sales {
		if sale.Status != models.SaleStatusConfirmed {
			continue
		}
		if sale.SaleDate.Before(from) || !sale.SaleDate.Before(to) {
			continue
		}
		matches := (sale.ManagerID != nil && *sale.ManagerID == profileID) ||
			(sale.AgentID != nil && *sale.AgentID == profileID)
		if matches {
			out = append(out, sale)
		}
	}
	return out, nil
}

// PayslipStore

func (m *memStore) GetPayslip(id uint) (*models.AffiliatePayslip, error) {
	payslip, ok := m.payslips[id]
	if !ok {
		return nil, utils.NotFoundErr("Payslip not found", nil)
	}
	return &payslip, nil
}

func (m *memStore) FindPayslip(profileID uint, period string) (*models.AffiliatePayslip, error) {
	for _, payslip := range m.payslips {
		if payslip.ProfileID == profileID && payslip.Period == period {
			found := payslip
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memStore) SavePayslip(payslip *models.AffiliatePayslip) error {
	if payslip.ID == 0 {
		payslip.ID = m.id()
	}
	m.payslips[payslip.ID] = *payslip
	return nil
}

// AuditStore

func (m *memStore) AppendInteraction(interaction *models.AuditInteraction) error {
	interaction.ID = m.id()
	m.audits = append(m.audits, *interaction)
	return nil
}

func (m *memStore) auditCount(interactionType string) int {
	count := 0
	for _, audit := range m.audits {
		if audit.Type == interactionType {
			count++
		}
	}
	return count
}

// fakeCache records invalidations.
type fakeCache struct {
	invalidated []uint
}

func (f *fakeCache) GetAggregate(profileID uint) ([]byte, bool)  { return nil, false }
func (f *fakeCache) SetAggregate(profileID uint, payload []byte) {}
func (f *fakeCache) InvalidateProfile(profileID uint) {
	f.invalidated = append(f.invalidated, profileID)
}

// fakeNotifier records admin alerts.
type fakeNotifier struct {
	subjects []string
}

func (f *fakeNotifier) Notify(subject, body string) {
	f.subjects = append(f.subjects, subject)
}

// fakeLocker hands out locks, optionally simulating a busy key.
type fakeLocker struct {
	busy map[string]bool
	held []string
}

func (f *fakeLocker) Lock(key string) (func(), error) {
	if f.busy[key] {
		return nil, ErrLockBusy
	}
	f.held = append(f.held, key)
	return func() {}, nil
}

var (
	_ Store            = (*memStore)(nil)
	_ AggregateCache   = (*fakeCache)(nil)
	_ AdminNotifier    = (*fakeNotifier)(nil)
	_ SettlementLocker = (*fakeLocker)(nil)
)
