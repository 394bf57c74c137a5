package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig                `mapstructure:"app"`
	Host          HostConfig               `mapstructure:"host"`
	CRM           CRMConfig                `mapstructure:"crm"`
	Handlers      map[string]HandlerConfig `mapstructure:"handlers"`
	Defaults      DefaultsConfig           `mapstructure:"defaults"`
	Logging       LoggingConfig            `mapstructure:"logging"`
	Registrations string                   `mapstructure:"registrations"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// HostConfig configures the service-hook listener the platform calls into.
type HostConfig struct {
	ListenAddress   string `mapstructure:"listen_address"`
	HookPath        string `mapstructure:"hook_path"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// CRMConfig configures the platform's data API and its OAuth token endpoint.
type CRMConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	TokenURL     string `mapstructure:"token_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Scope        string `mapstructure:"scope"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
}

// HandlerConfig holds the core settings applicable to every handler.
type HandlerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Timeout int  `mapstructure:"timeout"` // milliseconds
}

// DefaultsConfig maps named option-set choices to the codes the target
// deployment has configured. The mapping is configuration, not logic.
type DefaultsConfig struct {
	ShippingMethodCode int    `mapstructure:"shipping_method_code"`
	CustomerTypeCode   int    `mapstructure:"customer_type_code"`
	StatusCode         int    `mapstructure:"status_code"`
	TaskPriorityCode   int    `mapstructure:"task_priority_code"`
	TaskCategory       string `mapstructure:"task_category"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func validateConfig(cfg *Config) error {
	if cfg.Host.ListenAddress == "" {
		return fmt.Errorf("host.listen_address is required")
	}
	if cfg.CRM.BaseURL == "" {
		return fmt.Errorf("crm.base_url is required")
	}
	if cfg.CRM.Timeout <= 0 {
		return fmt.Errorf("crm.timeout must be positive")
	}
	return nil
}
