package authz

import (
	"errors"
	"fmt"
)

// Module is the closed set of feature areas a jamia can enable or disable.
// A check against a name outside this set is a programming error, not a
// "module disabled" runtime result; see Authorizer.CheckModule for how that
// error is handled per environment.
type Module string

const (
	ModuleAdmissions Module = "admissions"
	ModuleAttendance Module = "attendance"
	ModuleExams      Module = "exams"
	ModuleFees       Module = "fees"
	ModuleHostel     Module = "hostel"
	ModuleLibrary    Module = "library"
	ModuleDonations  Module = "donations"

	// ModuleNone is passed to Authorize when an operation is not behind any
	// module gate (e.g. user administration).
	ModuleNone Module = ""
)

// ErrUnknownModule is returned when a module name outside the enumeration
// reaches the guard.
var ErrUnknownModule = errors.New("authz: unknown module name")

var allModules = map[Module]struct{}{
	ModuleAdmissions: {},
	ModuleAttendance: {},
	ModuleExams:      {},
	ModuleFees:       {},
	ModuleHostel:     {},
	ModuleLibrary:    {},
	ModuleDonations:  {},
}

// Modules returns all known modules, for seeding a new jamia's flags.
func Modules() []Module {
	return []Module{
		ModuleAdmissions,
		ModuleAttendance,
		ModuleExams,
		ModuleFees,
		ModuleHostel,
		ModuleLibrary,
		ModuleDonations,
	}
}

// ParseModule validates a module name against the enumeration.
func ParseModule(s string) (Module, error) {
	m := Module(s)
	if _, ok := allModules[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownModule, s)
	}
	return m, nil
}

// Valid reports whether the module is one of the enumeration.
func (m Module) Valid() bool {
	_, ok := allModules[m]
	return ok
}

// String implements fmt.Stringer
func (m Module) String() string { return string(m) }
