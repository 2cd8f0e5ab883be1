package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" validate:"gte=0,lte=65535"`
		Host         string        `yaml:"host"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		IdleTimeout  time.Duration `yaml:"idle_timeout"`
	} `yaml:"server"`

	Vehicle struct {
		VIN   string `yaml:"vin"`
		Plate string `yaml:"plate"`
	} `yaml:"vehicle"`

	Sites struct {
		KonfiskatURL string `yaml:"konfiskat_url" validate:"url"`
		RosimURL     string `yaml:"rosim_url" validate:"url"`
	} `yaml:"sites"`

	Scraper struct {
		UserAgent      string        `yaml:"user_agent"`
		AcceptLanguage string        `yaml:"accept_language"`
		Locale         string        `yaml:"locale"`
		Timezone       string        `yaml:"timezone"`
		RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
		NavTimeout     time.Duration `yaml:"nav_timeout" validate:"gt=0"`
		SettleDelay    time.Duration `yaml:"settle_delay"`
		HeadlessMode   bool          `yaml:"headless_mode"`
		BrowserEnabled bool          `yaml:"browser_enabled"`
		ChromePath     string        `yaml:"chrome_path"`
		RateLimit      int           `yaml:"rate_limit" validate:"gt=0"` // probe steps per minute
		DebugHTMLPath  string        `yaml:"debug_html_path"`
	} `yaml:"scraper"`

	Captcha struct {
		// Slider geometry thresholds are empirically tuned to the observed
		// challenge widget; the target may randomize or drift, so they are
		// configuration rather than constants.
		Slider struct {
			TrackMinWidth  float64       `yaml:"track_min_width" validate:"gt=0"`
			TrackMaxWidth  float64       `yaml:"track_max_width" validate:"gt=0"`
			TrackMinHeight float64       `yaml:"track_min_height" validate:"gt=0"`
			TrackMaxHeight float64       `yaml:"track_max_height" validate:"gt=0"`
			ThumbMaxWidth  float64       `yaml:"thumb_max_width" validate:"gt=0"`
			SolveTimeout   time.Duration `yaml:"solve_timeout" validate:"gt=0"`
		} `yaml:"slider"`

		Provider        string        `yaml:"provider"`
		APIKey          string        `yaml:"api_key"`
		Timeout         time.Duration `yaml:"timeout"`
		EnableAutoSolve bool          `yaml:"enable_auto_solve"`
	} `yaml:"captcha"`

	Telegram struct {
		BotToken string        `yaml:"bot_token"`
		ChatID   string        `yaml:"chat_id"`
		APIURL   string        `yaml:"api_url"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"telegram"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`
}

// HasIdentifier reports whether at least one vehicle identifier is configured.
func (c *Config) HasIdentifier() bool {
	return strings.TrimSpace(c.Vehicle.VIN) != "" || strings.TrimSpace(c.Vehicle.Plate) != ""
}

// Validate checks the configuration invariants
func (c *Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	// Percent-encoded path so raw HTTP requests do not hit ASCII encoding issues
	config.Sites.KonfiskatURL = "https://konfiskat-gov.ru/%D0%B0%D0%B2%D1%82%D0%BE%D0%BC%D0%BE%D0%B1%D0%B8%D0%BB%D0%B8"
	config.Sites.RosimURL = "https://fiol.rosim.gov.ru/mk/"

	config.Scraper.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	config.Scraper.AcceptLanguage = "ru-RU,ru;q=0.9,en;q=0.8"
	config.Scraper.Locale = "ru-RU"
	config.Scraper.Timezone = "Europe/Moscow"
	config.Scraper.RequestTimeout = 30 * time.Second
	config.Scraper.NavTimeout = 30 * time.Second
	config.Scraper.SettleDelay = 2 * time.Second
	config.Scraper.HeadlessMode = true
	config.Scraper.BrowserEnabled = true
	config.Scraper.RateLimit = 30
	config.Scraper.DebugHTMLPath = "konfiskat_debug.html"

	config.Captcha.Slider.TrackMinWidth = 200
	config.Captcha.Slider.TrackMaxWidth = 400
	config.Captcha.Slider.TrackMinHeight = 40
	config.Captcha.Slider.TrackMaxHeight = 60
	config.Captcha.Slider.ThumbMaxWidth = 80
	config.Captcha.Slider.SolveTimeout = 15 * time.Second

	config.Captcha.Provider = "2captcha"
	config.Captcha.Timeout = 120 * time.Second
	config.Captcha.EnableAutoSolve = true

	config.Telegram.APIURL = "https://api.telegram.org"
	config.Telegram.Timeout = 15 * time.Second

	config.Logging.Level = "info"
	config.Logging.Format = "text"

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))
			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	// CAR_VIN/CAR_PLATE take precedence over the legacy VIN/PLATE_NUMBER names
	if vin := os.Getenv("CAR_VIN"); vin != "" {
		c.Vehicle.VIN = strings.TrimSpace(vin)
	} else if vin := os.Getenv("VIN"); vin != "" {
		c.Vehicle.VIN = strings.TrimSpace(vin)
	}

	if plate := os.Getenv("CAR_PLATE"); plate != "" {
		c.Vehicle.Plate = strings.TrimSpace(plate)
	} else if plate := os.Getenv("PLATE_NUMBER"); plate != "" {
		c.Vehicle.Plate = strings.TrimSpace(plate)
	}

	if headless := os.Getenv("HEADLESS"); headless != "" {
		v := strings.ToLower(strings.TrimSpace(headless))
		c.Scraper.HeadlessMode = v != "0" && v != "false" && v != "no" && v != "off"
	}

	if browser := os.Getenv("BROWSER_ENABLED"); browser != "" {
		c.Scraper.BrowserEnabled = browser == "true" || browser == "1"
	}

	if chromePath := os.Getenv("CHROME_BIN"); chromePath != "" {
		c.Scraper.ChromePath = chromePath
	} else if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		c.Scraper.ChromePath = chromePath
	}

	if debugPath := os.Getenv("DEBUG_HTML_PATH"); debugPath != "" {
		c.Scraper.DebugHTMLPath = debugPath
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if captchaAPIKey := os.Getenv("CAPTCHA_API_KEY"); captchaAPIKey != "" {
		c.Captcha.APIKey = captchaAPIKey
	}

	// Also support 2CAPTCHA_API_KEY for compatibility
	if captchaAPIKey := os.Getenv("2CAPTCHA_API_KEY"); captchaAPIKey != "" {
		c.Captcha.APIKey = captchaAPIKey
	}

	if botToken := os.Getenv("TELEGRAM_BOT_TOKEN"); botToken != "" {
		c.Telegram.BotToken = strings.TrimSpace(botToken)
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		c.Telegram.ChatID = strings.TrimSpace(chatID)
	}

	if konfiskatURL := os.Getenv("KONFISKAT_URL"); konfiskatURL != "" {
		c.Sites.KonfiskatURL = konfiskatURL
	}

	if rosimURL := os.Getenv("ROSIM_URL"); rosimURL != "" {
		c.Sites.RosimURL = rosimURL
	}

	if rateLimit := os.Getenv("SCRAPER_RATE_LIMIT"); rateLimit != "" {
		if rl, err := strconv.Atoi(rateLimit); err == nil {
			c.Scraper.RateLimit = rl
		}
	}
}
