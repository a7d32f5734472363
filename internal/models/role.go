package models

// Role is the authorization tier of a principal.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// PrincipalModel selects which of the three principal tables an ID resolves
// against. The tables are disjoint ID spaces, so a bare ID is meaningless
// without the model tag.
type PrincipalModel string

const (
	ModelAdmin   PrincipalModel = "Admin"
	ModelManager PrincipalModel = "Manager"
	ModelUser    PrincipalModel = "User"
)

// Role returns the role tier corresponding to a principal model.
func (m PrincipalModel) Role() Role {
	switch m {
	case ModelAdmin:
		return RoleAdmin
	case ModelManager:
		return RoleManager
	case ModelUser:
		return RoleUser
	}
	return ""
}

// Valid reports whether m names one of the three principal tables.
func (m PrincipalModel) Valid() bool {
	switch m {
	case ModelAdmin, ModelManager, ModelUser:
		return true
	}
	return false
}

// PrincipalRef is a tagged reference into one of the principal tables.
type PrincipalRef struct {
	ID    uint64         `json:"id"`
	Model PrincipalModel `json:"model"`
}
