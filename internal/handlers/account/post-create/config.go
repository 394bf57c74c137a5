package accountpostcreate

import (
	"fmt"
	"time"

	"crm-handlers/internal/common/config"
	"crm-handlers/internal/models"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	Timeout       time.Duration `mapstructure:"timeout"`
	PostImageName string        `mapstructure:"post_image_name"`

	// Option-set codes applied to the new account and the follow-up task.
	// Injectable per deployment; see models for the stock platform mapping.
	Defaults         models.AccountDefaults
	TaskPriorityCode models.OptionValue
	TaskCategory     string
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		Timeout:       30 * time.Second,
		PostImageName: "PostImage",
		Defaults: models.AccountDefaults{
			CreditOnHold:       false,
			ShippingMethodCode: models.ShippingMethodAirborne,
			CustomerTypeCode:   models.CustomerTypeDefaultValue,
			StatusCode:         models.AccountStatusActive,
		},
		TaskPriorityCode: models.TaskPriorityHigh,
		TaskCategory:     "Account Onboarding",
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.PostImageName == "" {
		return fmt.Errorf("post_image_name is required")
	}
	if c.TaskCategory == "" {
		return fmt.Errorf("task_category is required")
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()

	if appConfig != nil {
		if handlerCfg, exists := appConfig.Handlers[HandlerName]; exists {
			cfg.Enabled = handlerCfg.Enabled
			if handlerCfg.Timeout > 0 {
				cfg.Timeout = time.Duration(handlerCfg.Timeout) * time.Millisecond
			}
		}

		if appConfig.Defaults.ShippingMethodCode > 0 {
			cfg.Defaults.ShippingMethodCode = models.OptionValue(appConfig.Defaults.ShippingMethodCode)
		}
		if appConfig.Defaults.CustomerTypeCode > 0 {
			cfg.Defaults.CustomerTypeCode = models.OptionValue(appConfig.Defaults.CustomerTypeCode)
		}
		if appConfig.Defaults.StatusCode > 0 {
			cfg.Defaults.StatusCode = models.OptionValue(appConfig.Defaults.StatusCode)
		}
		if appConfig.Defaults.TaskPriorityCode > 0 {
			cfg.TaskPriorityCode = models.OptionValue(appConfig.Defaults.TaskPriorityCode)
		}
		if appConfig.Defaults.TaskCategory != "" {
			cfg.TaskCategory = appConfig.Defaults.TaskCategory
		}
	}

	return cfg
}
