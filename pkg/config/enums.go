package config

// StageRole identifies the semantic function of a pipeline stage.
type StageRole string

const (
	RoleAnalyzer   StageRole = "analyzer"
	RoleImitator   StageRole = "imitator"
	RolePostEditor StageRole = "post_editor"
	RoleMasker     StageRole = "masker"
)

// IsValid checks whether the role is one of the known stage roles.
func (r StageRole) IsValid() bool {
	switch r {
	case RoleAnalyzer, RoleImitator, RolePostEditor, RoleMasker:
		return true
	}
	return false
}

// String returns the role as a plain string.
func (r StageRole) String() string {
	return string(r)
}
