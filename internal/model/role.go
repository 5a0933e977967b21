package model

// Role is the single role an account acts under.
type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleReseller Role = "reseller"
	RoleBrand    Role = "brand"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleReseller, RoleBrand:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
