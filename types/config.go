package types

// AppConfig represents the complete application configuration.
type AppConfig struct {
	Verbose bool          `mapstructure:"verbose"`
	Config  string        `mapstructure:"config"`
	Project ProjectConfig `mapstructure:"project" validate:"required"`
	Data    DataConfig    `mapstructure:"data" validate:"required"`
	Log     LogConfig     `mapstructure:"log"`
	Actor   ActorConfig   `mapstructure:"actor" validate:"required"`
}

// ProjectConfig holds project-related settings.
type ProjectConfig struct {
	RootDir string `mapstructure:"rootDir" validate:"required"`
}

// DataConfig holds record-store configuration.
type DataConfig struct {
	Dir    string `mapstructure:"dir" validate:"required"`
	Format string `mapstructure:"format" validate:"required,oneof=json yaml toml"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// ActorConfig carries the trusted principal claims for CLI invocations.
// Credential validation is the auth collaborator's job; the ledger only
// consumes these claims as given.
type ActorConfig struct {
	ID          string   `mapstructure:"id" validate:"required"`
	Username    string   `mapstructure:"username" validate:"required"`
	Role        string   `mapstructure:"role" validate:"required,oneof=admin data_manager viewer"`
	Location    string   `mapstructure:"location" validate:"required"`
	Permissions []string `mapstructure:"permissions"`
}
