package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/shopspring/decimal"
)

// GLAccountModel is the persistence model for the GLAccount domain entity.
type GLAccountModel struct {
	BaseModel
	Name                       string `gorm:"type:varchar(200);not null"`
	AccountNumber              string `gorm:"type:varchar(50);index"`
	Type                       string `gorm:"type:varchar(50);not null;index"`
	IsSecurityDepositLiability bool   `gorm:"not null;default:false"`
	IsActive                   bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (GLAccountModel) TableName() string {
	return "gl_accounts"
}

// ToDomain converts the persistence model to a domain GLAccount entity.
func (m *GLAccountModel) ToDomain() leasing.GLAccount {
	return leasing.GLAccount{
		BaseEntity:                 m.BaseModel.ToDomain(),
		Name:                       m.Name,
		AccountNumber:              m.AccountNumber,
		Type:                       m.Type,
		IsSecurityDepositLiability: m.IsSecurityDepositLiability,
		IsActive:                   m.IsActive,
	}
}

// PropertyModel is the persistence model for the Property domain entity.
type PropertyModel struct {
	BaseModel
	Name   string `gorm:"type:varchar(200);not null"`
	Status string `gorm:"type:varchar(20);not null;default:'Active';index"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts the persistence model to a domain Property entity.
func (m *PropertyModel) ToDomain() leasing.Property {
	return leasing.Property{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Status:     m.Status,
	}
}

// UnitModel is the persistence model for the Unit domain entity.
type UnitModel struct {
	BaseModel
	PropertyID uuid.UUID `gorm:"type:uuid;not null;index"`
	UnitNumber string    `gorm:"type:varchar(50);not null"`
	Status     string    `gorm:"type:varchar(20);not null;default:'Vacant'"`
}

// TableName returns the table name for GORM
func (UnitModel) TableName() string {
	return "units"
}

// ToDomain converts the persistence model to a domain Unit entity.
func (m *UnitModel) ToDomain() leasing.Unit {
	return leasing.Unit{
		BaseEntity: m.BaseModel.ToDomain(),
		PropertyID: m.PropertyID,
		UnitNumber: m.UnitNumber,
		Status:     m.Status,
	}
}

// TenantModel is the persistence model behind tenant search results.
type TenantModel struct {
	BaseModel
	FirstName string `gorm:"type:varchar(100);index"`
	LastName  string `gorm:"type:varchar(100);index"`
	Email     string `gorm:"type:varchar(200);index"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain TenantSummary.
func (m *TenantModel) ToDomain() leasing.TenantSummary {
	return leasing.TenantSummary{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
	}
}

// LeaseModel is the persistence model for the Lease domain entity.
type LeaseModel struct {
	BaseModel
	PropertyID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	UnitID          uuid.UUID         `gorm:"type:uuid;not null;index"`
	PlatformLeaseID int64             `gorm:"not null;uniqueIndex"`
	LeaseType       leasing.LeaseType `gorm:"type:varchar(30);not null"`
	FromDate        time.Time         `gorm:"type:date;not null"`
	ToDate          *time.Time        `gorm:"type:date"`
	RentAmount      *decimal.Decimal  `gorm:"type:decimal(18,2)"`
	SecurityDeposit *decimal.Decimal  `gorm:"type:decimal(18,2)"`
	PaymentDueDay   *int
	Status          string `gorm:"type:varchar(20);not null;default:'Active';index"`
}

// TableName returns the table name for GORM
func (LeaseModel) TableName() string {
	return "leases"
}

// ToDomain converts the persistence model to a domain Lease entity.
func (m *LeaseModel) ToDomain() *leasing.Lease {
	return &leasing.Lease{
		BaseEntity:      m.BaseModel.ToDomain(),
		PropertyID:      m.PropertyID,
		UnitID:          m.UnitID,
		PlatformLeaseID: m.PlatformLeaseID,
		LeaseType:       m.LeaseType,
		FromDate:        m.FromDate,
		ToDate:          m.ToDate,
		RentAmount:      m.RentAmount,
		SecurityDeposit: m.SecurityDeposit,
		PaymentDueDay:   m.PaymentDueDay,
		Status:          m.Status,
	}
}

// FromDomain populates the persistence model from a domain Lease entity.
func (m *LeaseModel) FromDomain(l *leasing.Lease) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.PropertyID = l.PropertyID
	m.UnitID = l.UnitID
	m.PlatformLeaseID = l.PlatformLeaseID
	m.LeaseType = l.LeaseType
	m.FromDate = l.FromDate
	m.ToDate = l.ToDate
	m.RentAmount = l.RentAmount
	m.SecurityDeposit = l.SecurityDeposit
	m.PaymentDueDay = l.PaymentDueDay
	m.Status = l.Status
}

// LeaseModelFromDomain creates a new persistence model from a domain Lease entity.
func LeaseModelFromDomain(l *leasing.Lease) *LeaseModel {
	m := &LeaseModel{}
	m.FromDomain(l)
	return m
}
