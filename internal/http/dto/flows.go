package dto

// InviteRequest pide invitar un email a un tenant.
type InviteRequest struct {
	Email      string `json:"email"`
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name,omitempty"`
	Role       string `json:"role,omitempty"` // default member
}

// AcceptInviteRequest activa una cuenta invitada.
type AcceptInviteRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ForgotRequest inicia el flujo de recuperación de password.
type ForgotRequest struct {
	Email string `json:"email"`
}

// ResetRequest completa el flujo de recuperación.
type ResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}
