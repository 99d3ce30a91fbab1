package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sotex-app/mantencion-api/internal/mail"
	"github.com/sotex-app/mantencion-api/internal/models"
	"github.com/sotex-app/mantencion-api/internal/repository"
	"github.com/sotex-app/mantencion-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrShipNotFound            = errors.New("installation not found")
	ErrShipNameRequired        = errors.New("installation name is required")
	ErrRequestNotFound         = errors.New("maintenance request not found")
	ErrResponsibleNotFound     = errors.New("responsible not found")
	ErrRequestTitleRequired    = errors.New("title is required")
	ErrRequestAlreadyCompleted = errors.New("maintenance request already completed")
)

// MaintenanceService handles equipment fault reports and their
// notification milestones.
type MaintenanceService struct {
	maintenance   repository.MaintenanceRepository
	notifications *NotificationService
	now           func() time.Time
}

// NewMaintenanceService creates a new MaintenanceService.
func NewMaintenanceService(maintenance repository.MaintenanceRepository, notifications *NotificationService) *MaintenanceService {
	return &MaintenanceService{
		maintenance:   maintenance,
		notifications: notifications,
		now:           time.Now,
	}
}

// CreateRequestInput represents input for filing a fault report.
type CreateRequestInput struct {
	Title         string
	Description   string
	ShipID        uint64
	ResponsibleID *uint64
	ReporterID    uint64
	Deadline      *time.Time
}

// CreateShip registers an installation with a fresh folio id.
func (s *MaintenanceService) CreateShip(name, description string) (*models.Ship, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrShipNameRequired
	}

	ship := &models.Ship{
		Name:        name,
		FolioID:     uuid.NewString(),
		Description: description,
	}
	if err := s.maintenance.CreateShip(ship); err != nil {
		return nil, fmt.Errorf("failed to create installation: %w", err)
	}
	return ship, nil
}

// ListShips returns all installations.
func (s *MaintenanceService) ListShips() ([]models.Ship, error) {
	return s.maintenance.ListShips()
}

// CreateRequest files a fault report with an installation-scoped
// folio, records the generated notification, and fans the creation
// event out to the entitled recipients. The returned warning is
// non-empty when email delivery failed; the report itself is already
// committed either way.
func (s *MaintenanceService) CreateRequest(input CreateRequestInput) (*models.MaintenanceRequest, string, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, "", ErrRequestTitleRequired
	}

	ship, err := s.maintenance.FindShip(input.ShipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrShipNotFound
		}
		return nil, "", fmt.Errorf("failed to find installation: %w", err)
	}

	if input.ResponsibleID != nil {
		if _, err := s.maintenance.FindResponsible(*input.ResponsibleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", ErrResponsibleNotFound
			}
			return nil, "", fmt.Errorf("failed to find responsible: %w", err)
		}
	}

	count, err := s.maintenance.CountForShip(ship.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to number folio: %w", err)
	}

	request := &models.MaintenanceRequest{
		Folio:         folioFor(ship, count+1),
		Title:         strings.TrimSpace(input.Title),
		Description:   input.Description,
		Status:        models.RequestStatusReported,
		ShipID:        ship.ID,
		ResponsibleID: input.ResponsibleID,
		ReporterID:    input.ReporterID,
		Deadline:      input.Deadline,
	}
	if err := s.maintenance.Create(request); err != nil {
		return nil, "", fmt.Errorf("failed to create maintenance request: %w", err)
	}

	warning := s.notify(request, ship, models.GroupIngresoRequerimiento,
		fmt.Sprintf("Nuevo Requerimiento de Mantención %s", request.Folio),
		fmt.Sprintf("Se ha ingresado el requerimiento %q en %s.", request.Title, ship.Name))

	return request, warning, nil
}

// CompleteRequest transitions a report to COMPLETED and fans out the
// completion event.
func (s *MaintenanceService) CompleteRequest(id uint64) (*models.MaintenanceRequest, string, error) {
	request, err := s.maintenance.FindByID(id, "Ship")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrRequestNotFound
		}
		return nil, "", fmt.Errorf("failed to find maintenance request: %w", err)
	}

	if request.Status == models.RequestStatusCompleted {
		return nil, "", ErrRequestAlreadyCompleted
	}

	now := s.now()
	request.Status = models.RequestStatusCompleted
	request.CompletedAt = &now
	if err := s.maintenance.Update(request); err != nil {
		return nil, "", fmt.Errorf("failed to update maintenance request: %w", err)
	}

	warning := s.notify(request, &request.Ship, models.GroupFinalizacionRequerimiento,
		fmt.Sprintf("Finalización de Requerimiento %s", request.Folio),
		fmt.Sprintf("El requerimiento %q en %s ha sido finalizado.", request.Title, request.Ship.Name))

	return request, warning, nil
}

// ListRequests returns reports with pagination, most recent first.
func (s *MaintenanceService) ListRequests(params utils.PaginationParams) ([]models.MaintenanceRequest, int64, error) {
	return s.maintenance.List(params)
}

// DeadlineSweep inspects every open report with a deadline and fans
// out the 75% and final milestone events that have become due since
// the last sweep. It is meant to be triggered externally (cron); the
// subsystem runs no background loop of its own. Returns the number of
// events fanned out plus any delivery warnings.
func (s *MaintenanceService) DeadlineSweep() (int, []string, error) {
	requests, err := s.maintenance.ListOpenWithDeadline()
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list open requests: %w", err)
	}

	now := s.now()
	var fired int
	var warnings []string

	for i := range requests {
		request := &requests[i]

		var groupName, subject, detail string
		switch {
		case request.DeadlineReached(now) && !request.NotifiedDeadlineFinal:
			request.NotifiedDeadlineFinal = true
			request.NotifiedDeadline75 = true
			groupName = models.GroupPlazoSolucionFinal
			subject = fmt.Sprintf("Plazo de Solución Final %s", request.Folio)
			detail = fmt.Sprintf("El requerimiento %q en %s ha alcanzado su plazo de solución.", request.Title, request.Ship.Name)
		case request.Deadline75Reached(now) && !request.NotifiedDeadline75:
			request.NotifiedDeadline75 = true
			groupName = models.GroupPlazoSolucion75
			subject = fmt.Sprintf("Plazo de Solución 75%% %s", request.Folio)
			detail = fmt.Sprintf("El requerimiento %q en %s ha alcanzado el 75%% de su plazo de solución.", request.Title, request.Ship.Name)
		default:
			continue
		}

		if err := s.maintenance.Update(request); err != nil {
			return fired, warnings, fmt.Errorf("failed to flag request %d: %w", request.ID, err)
		}

		fired++
		if warning := s.notify(request, &request.Ship, groupName, subject, detail); warning != "" {
			warnings = append(warnings, fmt.Sprintf("%s: %s", request.Folio, warning))
		}
	}

	return fired, warnings, nil
}

// notify records the generated notification and dispatches the email
// fan-out for one milestone. Failures short of the log write are
// soft: the business mutation stays committed.
func (s *MaintenanceService) notify(request *models.MaintenanceRequest, ship *models.Ship, groupName, subject, detail string) string {
	group, err := s.notifications.GroupByName(groupName)
	if err != nil {
		return fmt.Sprintf("notification group %q is not configured", groupName)
	}

	if err := s.notifications.LogEvent(request.ID, groupName, subject, detail, group.ID); err != nil {
		return "notification log entry could not be written"
	}

	shipID := ship.ID
	return s.notifications.Dispatch(
		Event{GroupID: group.ID, ShipID: &shipID},
		subject,
		mail.MaintenanceEventBody(groupName, request.Folio, ship.Name, detail),
	)
}

func folioFor(ship *models.Ship, sequence int64) string {
	prefix := ship.FolioID
	if i := strings.IndexByte(prefix, '-'); i > 0 {
		prefix = prefix[:i]
	}
	return fmt.Sprintf("%s-%04d", strings.ToUpper(prefix), sequence)
}
