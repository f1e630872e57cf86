package fixture

// Record is one serialized object in a fixture file.
type Record struct {
	// Model references the target model, qualified as "app.model" or,
	// for the owning application's own models, just "model".
	Model string `yaml:"model" json:"model"`

	// PK optionally pins the primary key. Records without it get
	// database-assigned keys on insert.
	PK interface{} `yaml:"pk,omitempty" json:"pk,omitempty"`

	// Fields maps serialized field names to values. Names the live
	// model does not have are ignored during deserialization.
	Fields map[string]interface{} `yaml:"fields" json:"fields"`
}
