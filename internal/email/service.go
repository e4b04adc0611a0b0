package email

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Service compone y envía los correos de invitación y reset. Los links
// apuntan al frontend (BaseURL); el token crudo viaja solo acá.
type Service struct {
	sender  Sender
	baseURL string
}

// NewService crea el servicio de correos.
func NewService(sender Sender, baseURL string) *Service {
	return &Service{sender: sender, baseURL: strings.TrimRight(baseURL, "/")}
}

// InviteLink construye el link de aceptación de invitación.
func (s *Service) InviteLink(token string) string {
	return s.baseURL + "/invites/accept?token=" + url.QueryEscape(token)
}

// ResetLink construye el link de reset de password.
func (s *Service) ResetLink(token string) string {
	return s.baseURL + "/password/reset?token=" + url.QueryEscape(token)
}

// SendInvite envía la invitación a unirse a un tenant.
func (s *Service) SendInvite(to, tenantName, token string, ttl time.Duration) error {
	link := s.InviteLink(token)
	subject := fmt.Sprintf("Invitación a %s", tenantName)
	text := fmt.Sprintf(
		"Fuiste invitado a %s.\n\nActivá tu cuenta acá: %s\n\nEl link vence en %s.",
		tenantName, link, humanTTL(ttl))
	html := fmt.Sprintf(
		`<p>Fuiste invitado a <strong>%s</strong>.</p><p><a href="%s">Activar cuenta</a></p><p>El link vence en %s.</p>`,
		tenantName, link, humanTTL(ttl))
	return s.sender.Send(to, subject, html, text)
}

// SendPasswordReset envía el correo de recuperación de password.
func (s *Service) SendPasswordReset(to, token string, ttl time.Duration) error {
	link := s.ResetLink(token)
	subject := "Restablecer tu password"
	text := fmt.Sprintf(
		"Pediste restablecer tu password.\n\nHacelo acá: %s\n\nEl link vence en %s. Si no fuiste vos, ignorá este correo.",
		link, humanTTL(ttl))
	html := fmt.Sprintf(
		`<p>Pediste restablecer tu password.</p><p><a href="%s">Restablecer password</a></p><p>El link vence en %s. Si no fuiste vos, ignorá este correo.</p>`,
		link, humanTTL(ttl))
	return s.sender.Send(to, subject, html, text)
}

func humanTTL(ttl time.Duration) string {
	if ttl >= 24*time.Hour {
		return fmt.Sprintf("%d horas", int(ttl.Hours()))
	}
	if ttl >= time.Hour {
		return fmt.Sprintf("%d hora(s)", int(ttl.Hours()))
	}
	return fmt.Sprintf("%d minutos", int(ttl.Minutes()))
}
