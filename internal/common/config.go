package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	OCR       OCRConfig       `mapstructure:"ocr"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Cloud     CloudConfig     `mapstructure:"cloud"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Rubro     RubroConfig     `mapstructure:"rubro"`
	Server    ServerConfig    `mapstructure:"server"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	TesseractBin string `mapstructure:"tesseract_bin"`
	PdfToPpmBin  string `mapstructure:"pdftoppm_bin"`
	Lang         string `mapstructure:"lang"`
	DPI          int    `mapstructure:"dpi"`
	MaxPages     int    `mapstructure:"max_pages"`
	TessdataDir  string `mapstructure:"tessdata_dir"`
}

// LLMConfig configures the chat-completion provider.
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// CloudConfig configures the cloud document-extraction provider.
type CloudConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	AgentName    string        `mapstructure:"agent_name"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	PollTimeout  time.Duration `mapstructure:"poll_timeout"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
}

// ExtractorConfig selects the extraction provider.
type ExtractorConfig struct {
	Provider   string `mapstructure:"provider"`
	AutoDetect bool   `mapstructure:"auto_detect"`
	Fallback   bool   `mapstructure:"fallback"`
}

// MetricsConfig points at the extraction metrics store.
type MetricsConfig struct {
	DSN  string `mapstructure:"dsn"`
	Addr string `mapstructure:"addr"` // Prometheus listen address; empty disables it
}

// RubroConfig locates the rubro nomenclator table.
type RubroConfig struct {
	NomenclatorPath string `mapstructure:"nomenclator_path"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr  string `mapstructure:"grpc_addr"`
	InboxDir  string `mapstructure:"inbox_dir"`
	OutboxDir string `mapstructure:"outbox_dir"`
	Workers   int    `mapstructure:"workers"`

	QueueSize  int           `mapstructure:"queue_size"`  // inbox jobs buffered before Enqueue blocks
	JobTimeout time.Duration `mapstructure:"job_timeout"` // per inbox document
}

// ArchiveConfig configures the optional S3-compatible document archive.
type ArchiveConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// envBindings maps config keys to the environment variables operators set.
var envBindings = [][2]string{
	{"log_level", "LOG_LEVEL"},
	{"ocr.tesseract_bin", "TESSERACT_BIN"},
	{"ocr.pdftoppm_bin", "PDFTOPPM_BIN"},
	{"ocr.lang", "TESSERACT_LANG"},
	{"ocr.dpi", "OCR_DPI"},
	{"ocr.max_pages", "OCR_MAX_PAGES"},
	{"ocr.tessdata_dir", "TESSDATA_PREFIX"},
	{"llm.api_key", "OPENAI_API_KEY"},
	{"llm.base_url", "OPENAI_BASE_URL"},
	{"llm.model", "OPENAI_MODEL"},
	{"llm.temperature", "OPENAI_TEMPERATURE"},
	{"llm.timeout", "OPENAI_TIMEOUT"},
	{"cloud.api_key", "LLAMA_API_KEY"},
	{"cloud.base_url", "LLAMA_BASE_URL"},
	{"cloud.agent_name", "LLAMA_AGENT_NAME"},
	{"cloud.poll_interval", "LLAMA_POLL_INTERVAL"},
	{"cloud.poll_timeout", "LLAMA_POLL_TIMEOUT"},
	{"cloud.http_timeout", "LLAMA_HTTP_TIMEOUT"},
	{"extractor.provider", "EXTRACTOR_PROVIDER"},
	{"extractor.auto_detect", "EXTRACTOR_AUTO_DETECT"},
	{"extractor.fallback", "EXTRACTOR_FALLBACK"},
	{"metrics.dsn", "METRICS_DSN"},
	{"metrics.addr", "METRICS_ADDR"},
	{"rubro.nomenclator_path", "RUBRO_NOMENCLATOR_PATH"},
	{"server.grpc_addr", "GRPC_ADDR"},
	{"server.inbox_dir", "INBOX_DIR"},
	{"server.outbox_dir", "OUTBOX_DIR"},
	{"server.workers", "WORKERS"},
	{"server.queue_size", "QUEUE_SIZE"},
	{"server.job_timeout", "JOB_TIMEOUT"},
	{"archive.bucket", "ARCHIVE_BUCKET"},
	{"archive.endpoint", "ARCHIVE_ENDPOINT"},
	{"archive.region", "ARCHIVE_REGION"},
	{"archive.access_key_id", "ARCHIVE_ACCESS_KEY_ID"},
	{"archive.secret_access_key", "ARCHIVE_SECRET_ACCESS_KEY"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("ocr.tesseract_bin", "tesseract")
	v.SetDefault("ocr.pdftoppm_bin", "pdftoppm")
	v.SetDefault("ocr.lang", "spa+eng")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.max_pages", 0)
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.timeout", 45*time.Second)
	v.SetDefault("cloud.api_key", "")
	v.SetDefault("cloud.base_url", "https://api.cloud.llamaindex.ai/api/v1")
	v.SetDefault("cloud.agent_name", "invoice_parser")
	v.SetDefault("cloud.poll_interval", 3*time.Second)
	v.SetDefault("cloud.poll_timeout", 180*time.Second)
	v.SetDefault("cloud.http_timeout", 30*time.Second)
	v.SetDefault("extractor.provider", "")
	v.SetDefault("extractor.auto_detect", true)
	v.SetDefault("extractor.fallback", false)
	v.SetDefault("metrics.dsn", "file:extraction_metrics.db")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("rubro.nomenclator_path", "")
	v.SetDefault("server.grpc_addr", ":8080")
	v.SetDefault("server.inbox_dir", "")
	v.SetDefault("server.outbox_dir", "")
	v.SetDefault("server.workers", 4)
	v.SetDefault("server.queue_size", 256)
	v.SetDefault("server.job_timeout", 4*time.Minute)
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.region", "auto")
	v.SetDefault("archive.access_key_id", "")
	v.SetDefault("archive.secret_access_key", "")
}

// LoadConfig reads defaults, an optional YAML file named by INVOICE_CONFIG_FILE and
// the environment, then validates the result.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, b := range envBindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return nil, fmt.Errorf("bind %s: %w", b[0], err)
		}
	}

	if path := os.Getenv("INVOICE_CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, NewAppError(CodeConfig, "read config file", fmt.Errorf("%w: %v", ErrConfig, err))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, NewAppError(CodeConfig, "decode config", fmt.Errorf("%w: %v", ErrConfig, err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// HasCloudCredentials reports whether the cloud extraction provider can be used.
func (c *Config) HasCloudCredentials() bool {
	return strings.TrimSpace(c.Cloud.APIKey) != ""
}

// HasChatCredentials reports whether the chat-completion provider can be used.
func (c *Config) HasChatCredentials() bool {
	return strings.TrimSpace(c.LLM.APIKey) != ""
}

// ArchiveEnabled reports whether processed documents should be archived.
func (c *Config) ArchiveEnabled() bool {
	return c.Archive.Bucket != ""
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Cloud.PollInterval <= 0 {
		return ConfigError("LLAMA_POLL_INTERVAL must be positive")
	}
	if c.Cloud.PollTimeout < c.Cloud.PollInterval {
		return ConfigError("LLAMA_POLL_TIMEOUT must not be shorter than LLAMA_POLL_INTERVAL")
	}
	if c.LLM.Timeout <= 0 {
		return ConfigError("OPENAI_TIMEOUT must be positive")
	}
	if c.Server.Workers < 1 {
		return ConfigError("WORKERS must be at least 1")
	}
	if c.Server.QueueSize < 1 {
		return ConfigError("QUEUE_SIZE must be at least 1")
	}
	if c.Server.JobTimeout <= 0 {
		return ConfigError("JOB_TIMEOUT must be positive")
	}
	if c.OCR.DPI <= 0 {
		return ConfigError("OCR_DPI must be positive")
	}
	return nil
}
