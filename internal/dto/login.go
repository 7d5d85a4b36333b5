package dto

type LoginRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type LoginResponse struct {
	OK          bool   `json:"ok"`
	ApplicantID string `json:"applicantId"`
	ExpiresIn   int64  `json:"expiresIn"`
}

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
