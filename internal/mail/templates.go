package mail

import "fmt"

// Subjects for the credential-flow emails.
const (
	SubjectNewUser       = "Verifica tu dirección de correo electrónico"
	SubjectResetPassword = "Recupera tu contraseña"
)

// NewUserBody renders the activation email pointing at the token
// redemption URL.
func NewUserBody(url, email string) string {
	return fmt.Sprintf(`<div>
  <h2>Bienvenido a Sotex Mantención</h2>
  <p>Se ha creado una cuenta para <strong>%s</strong>.</p>
  <p>Define tu contraseña usando el siguiente enlace. El enlace expira en 24 horas.</p>
  <p><a href="%s">Activar cuenta</a></p>
</div>`, email, url)
}

// ResetPasswordBody renders the password recovery email.
func ResetPasswordBody(url, email string) string {
	return fmt.Sprintf(`<div>
  <h2>Recuperación de contraseña</h2>
  <p>Se solicitó un cambio de contraseña para <strong>%s</strong>.</p>
  <p>Usa el siguiente enlace dentro de la próxima hora.</p>
  <p><a href="%s">Cambiar contraseña</a></p>
  <p>Si no solicitaste este cambio puedes ignorar este correo.</p>
</div>`, email, url)
}

// MaintenanceEventBody renders the notification email for a
// maintenance request milestone.
func MaintenanceEventBody(eventName, folio, shipName, detail string) string {
	return fmt.Sprintf(`<div>
  <h2>%s</h2>
  <p>Requerimiento <strong>%s</strong> en la instalación <strong>%s</strong>.</p>
  <p>%s</p>
</div>`, eventName, folio, shipName, detail)
}
