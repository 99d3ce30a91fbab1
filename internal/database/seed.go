package database

import (
	"errors"
	"fmt"
	"log"

	"github.com/sotex-app/mantencion-api/internal/constants"
	"github.com/sotex-app/mantencion-api/internal/models"
	"gorm.io/gorm"
)

// notificationGroupSeed couples a notification group with the roles
// entitled to receive it.
type notificationGroupSeed struct {
	name    string
	details string
	roles   []string
}

var roleSeeds = []models.Role{
	{Name: models.RoleAdmin, Description: "Administra usuarios y configuración"},
	{Name: models.RoleUser, Description: "Usuario verificado"},
	{Name: models.RoleNewUser, Description: "Usuario pendiente de activación"},
	{Name: models.RoleNave, Description: "Cuenta de instalación"},
	{Name: models.RoleMantencion, Description: "Equipo de mantención"},
	{Name: models.RoleJefeArea, Description: "Jefe de área"},
	{Name: models.RoleGerencia, Description: "Gerencia de operaciones"},
}

var notificationGroupSeeds = []notificationGroupSeed{
	{
		name:    models.GroupIngresoRequerimiento,
		details: "Se ha ingresado un nuevo requerimiento de mantención.",
		roles:   []string{models.RoleMantencion, models.RoleJefeArea},
	},
	{
		name:    models.GroupCondicionesCriticas,
		details: "Una instalación ha superado los límites de fallas permitidos.",
		roles:   []string{models.RoleGerencia},
	},
	{
		name:    models.GroupPlazoSolucion75,
		details: "Un requerimiento ha alcanzado el 75% de su plazo de solución.",
		roles:   []string{models.RoleJefeArea, models.RoleGerencia},
	},
	{
		name:    models.GroupPlazoSolucionFinal,
		details: "Un requerimiento ha alcanzado su plazo de solución.",
		roles:   []string{models.RoleJefeArea, models.RoleGerencia},
	},
	{
		name:    models.GroupFinalizacionRequerimiento,
		details: "Un requerimiento de mantención ha sido finalizado.",
		roles:   []string{models.RoleJefeArea},
	},
}

// Seed inserts the reference data the application depends on: the
// structural default notification group, the role set, and the
// notification groups with their role entitlements. It is idempotent.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := seedDefaultGroup(tx); err != nil {
			return err
		}
		if err := seedRoles(tx); err != nil {
			return err
		}
		return seedNotificationGroups(tx)
	})
}

func seedDefaultGroup(tx *gorm.DB) error {
	group := models.NotificationGroup{
		ID:      constants.DefaultNotificationGroupID,
		Name:    "Default Group",
		Details: "Grupo de notificación por defecto",
	}
	err := tx.First(&models.NotificationGroup{}, constants.DefaultNotificationGroupID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err := tx.Create(&group).Error; err != nil {
		return fmt.Errorf("failed to seed default notification group: %w", err)
	}
	return nil
}

func seedRoles(tx *gorm.DB) error {
	for _, seed := range roleSeeds {
		var role models.Role
		err := tx.Where("name = ?", seed.Name).First(&role).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(&seed).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", seed.Name, err)
		}
	}
	return nil
}

func seedNotificationGroups(tx *gorm.DB) error {
	for _, seed := range notificationGroupSeeds {
		var group models.NotificationGroup
		err := tx.Where("name = ?", seed.name).First(&group).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			group = models.NotificationGroup{
				Name:    seed.name,
				Details: seed.details,
			}
			if err := tx.Create(&group).Error; err != nil {
				return fmt.Errorf("failed to seed notification group %s: %w", seed.name, err)
			}
		} else if err != nil {
			return err
		}

		for _, roleName := range seed.roles {
			var role models.Role
			if err := tx.Where("name = ?", roleName).First(&role).Error; err != nil {
				return fmt.Errorf("role %s missing while seeding groups: %w", roleName, err)
			}

			var count int64
			err := tx.Model(&models.NotificationGroupRole{}).
				Where("notification_group_id = ? AND role_id = ?", group.ID, role.ID).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			entitlement := models.NotificationGroupRole{
				NotificationGroupID: group.ID,
				RoleID:              role.ID,
			}
			if err := tx.Create(&entitlement).Error; err != nil {
				return fmt.Errorf("failed to seed entitlement %s/%s: %w", seed.name, roleName, err)
			}
		}
	}

	log.Println("Reference data seeded")
	return nil
}
