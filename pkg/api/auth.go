package api

// LoginRequest представляет запрос на аутентификацию (auth.php)
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse представляет ответ с токеном доступа
type LoginResponse struct {
	Token     string `json:"token"`             // JWT access token
	UserID    string `json:"userId"`            // UUID пользователя
	Message   string `json:"message,omitempty"` // сообщение сервера
	ExpiresIn int64  `json:"expiresIn"`         // время жизни токена в секундах
	Success   bool   `json:"success"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
	Success bool   `json:"success"`
}
