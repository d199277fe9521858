package dto

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success  bool   `json:"success"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type MeResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	AIConfigured bool   `json:"ai_configured"`
	DB           string `json:"db"`
}

type ServiceInfoResponse struct {
	Service                    string   `json:"service"`
	Endpoints                  []string `json:"endpoints"`
	CustomPreferencesMaxLength int      `json:"custom_preferences_max_length"`
}
