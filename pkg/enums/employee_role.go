package enums

import "fmt"

// EmployeeRole controls which endpoints an employee may call.
type EmployeeRole string

const (
	EmployeeRoleAdmin     EmployeeRole = "admin"
	EmployeeRoleManager   EmployeeRole = "manager"
	EmployeeRoleExecutive EmployeeRole = "executive"
)

var validEmployeeRoles = []EmployeeRole{
	EmployeeRoleAdmin,
	EmployeeRoleManager,
	EmployeeRoleExecutive,
}

// String implements fmt.Stringer.
func (r EmployeeRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known EmployeeRole.
func (r EmployeeRole) IsValid() bool {
	for _, candidate := range validEmployeeRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseEmployeeRole converts raw input into an EmployeeRole.
func ParseEmployeeRole(value string) (EmployeeRole, error) {
	for _, candidate := range validEmployeeRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid employee role %q", value)
}
