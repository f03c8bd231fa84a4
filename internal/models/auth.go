package models

// LoginRequest is the login form payload.
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	IP       string `form:"-" json:"-"`
}
