package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/driveops/testledger/ledger"
	"github.com/driveops/testledger/models"
	"github.com/driveops/testledger/store"
	"github.com/driveops/testledger/types"
)

const (
	configName = ".testledger"
	envPrefix  = "TESTLEDGER"
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// validate is a single validator instance; it caches struct info.
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig() {
	// Load .env file first if present; absence is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfgFileFlag := viper.GetString("config")

	rootDir := viper.GetString("project.rootDir")
	if rootDir == "" {
		rootDir = ".testledger"
	}

	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		if _, err := os.Stat(rootDir); !os.IsNotExist(err) {
			viper.AddConfigPath(rootDir)
			viper.SetConfigName(configName)
		} else {
			home, err := os.UserHomeDir()
			cobra.CheckErr(err)
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigName(configName)
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFileFlag != "" {
				fmt.Fprintln(os.Stderr, "Error: Specified config file not found:", cfgFileFlag)
			} else if viper.GetBool("verbose") {
				fmt.Fprintln(os.Stderr, "No config file found. Using defaults and environment variables.")
			}
		} else {
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
		}
	}

	viper.SetDefault("project.rootDir", ".testledger")
	viper.SetDefault("data.dir", ".testledger/data")
	viper.SetDefault("data.format", "json")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("actor.id", "")
	viper.SetDefault("actor.username", "")
	viper.SetDefault("actor.role", "viewer")
	viper.SetDefault("actor.location", "")
	viper.SetDefault("actor.permissions", []string{})

	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling config: %s\n", err)
		os.Exit(1)
	}
}

// GetConfig returns the loaded application configuration after validating
// it. Commands call this lazily so that config errors surface per-run.
func GetConfig() (*types.AppConfig, error) {
	if err := validate.Struct(&GlobalAppConfig); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &GlobalAppConfig, nil
}

// newLogger builds the process logger from config.
func newLogger(cfg *types.AppConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

// actorPrincipal derives the request principal from the configured claims.
func actorPrincipal(cfg *types.AppConfig) models.Principal {
	return models.Principal{
		ID:          cfg.Actor.ID,
		Username:    cfg.Actor.Username,
		Role:        models.Role(cfg.Actor.Role),
		Location:    cfg.Actor.Location,
		Permissions: cfg.Actor.Permissions,
	}
}

// openService wires the file record store and the ledger service. The
// returned closer releases the store's locks.
func openService() (*ledger.Service, models.Principal, func() error, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, models.Principal{}, nil, err
	}
	fileStore, err := store.NewFileRecordStore(afero.NewOsFs(), cfg.Data.Dir, cfg.Data.Format)
	if err != nil {
		return nil, models.Principal{}, nil, fmt.Errorf("open record store: %w", err)
	}
	svc := ledger.NewService(fileStore, fileStore, newLogger(cfg))
	return svc, actorPrincipal(cfg), fileStore.Close, nil
}
