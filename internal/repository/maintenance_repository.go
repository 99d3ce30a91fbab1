package repository

import (
	"github.com/sotex-app/mantencion-api/internal/database"
	"github.com/sotex-app/mantencion-api/internal/models"
	"github.com/sotex-app/mantencion-api/internal/utils"
	"gorm.io/gorm"
)

// GormMaintenanceRepository is a GORM implementation of MaintenanceRepository
type GormMaintenanceRepository struct {
	db *gorm.DB
}

// NewMaintenanceRepository creates a new MaintenanceRepository
func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &GormMaintenanceRepository{db: db}
}

// Create creates a maintenance request
func (r *GormMaintenanceRepository) Create(req *models.MaintenanceRequest) error {
	return r.db.Create(req).Error
}

// FindByID finds a request by ID with optional preloading
func (r *GormMaintenanceRepository) FindByID(id uint64, preload ...string) (*models.MaintenanceRequest, error) {
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	var req models.MaintenanceRequest
	if err := query.First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// Update persists request field changes
func (r *GormMaintenanceRepository) Update(req *models.MaintenanceRequest) error {
	return r.db.Save(req).Error
}

// List returns requests with pagination, most recent first
func (r *GormMaintenanceRepository) List(params utils.PaginationParams) ([]models.MaintenanceRequest, int64, error) {
	var total int64
	if err := r.db.Model(&models.MaintenanceRequest{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []models.MaintenanceRequest
	err := r.db.Preload("Ship").
		Preload("Responsible").
		Order("created_at desc").
		Scopes(database.Paginate(params)).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// CountForShip counts the requests ever filed for a ship
func (r *GormMaintenanceRepository) CountForShip(shipID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.MaintenanceRequest{}).
		Where("ship_id = ?", shipID).
		Count(&count).Error
	return count, err
}

// ListOpenWithDeadline returns the requests that are not yet
// completed and carry a solution deadline
func (r *GormMaintenanceRepository) ListOpenWithDeadline() ([]models.MaintenanceRequest, error) {
	var requests []models.MaintenanceRequest
	err := r.db.Preload("Ship").
		Where("status <> ? AND deadline IS NOT NULL", models.RequestStatusCompleted).
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// CreateShip creates an installation
func (r *GormMaintenanceRepository) CreateShip(ship *models.Ship) error {
	return r.db.Create(ship).Error
}

// ListShips returns all installations
func (r *GormMaintenanceRepository) ListShips() ([]models.Ship, error) {
	var ships []models.Ship
	if err := r.db.Order("name asc").Find(&ships).Error; err != nil {
		return nil, err
	}
	return ships, nil
}

// FindShip finds an installation by ID
func (r *GormMaintenanceRepository) FindShip(id uint64) (*models.Ship, error) {
	var ship models.Ship
	if err := r.db.First(&ship, id).Error; err != nil {
		return nil, err
	}
	return &ship, nil
}

// FindResponsible finds a responsible by ID
func (r *GormMaintenanceRepository) FindResponsible(id uint64) (*models.Responsible, error) {
	var responsible models.Responsible
	if err := r.db.First(&responsible, id).Error; err != nil {
		return nil, err
	}
	return &responsible, nil
}
