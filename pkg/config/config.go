package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	DB      DBConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Redis   RedisConfig
	Reports ReportsConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
}

// ConnectionString devuelve DATABASE_URL si está definido, si no el DSN construido.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN connection string con URL encoding para caracteres especiales en la contraseña.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig verificación de tokens. El servicio no emite tokens, solo los valida.
type JWTConfig struct {
	Secret string
	Issuer string // vacío = no se valida el emisor
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig caché de reportes. Addr vacío desactiva la caché.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled indica si hay un Redis configurado.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// ReportsConfig parámetros del motor de reportes. Las fracciones financieras son
// estimaciones de negocio (ver report.FinancialPolicy); cero = usar el valor por defecto.
type ReportsConfig struct {
	Timezone        string
	CacheTTLSeconds int
	WarmerCron      string // vacío = sin precálculo programado
	// CustomerHistoryMonths meses de ventas previas para ciclo de vida y retención.
	CustomerHistoryMonths int

	ExpenseRatio         float64
	TaxRate              float64
	TaxPaidRatio         float64
	SupplierPaymentRatio float64
	FixedCostRatio       float64
	InvestmentRatio      float64
	LiquidityRatio       float64
}

// Location zona horaria de agrupamiento de los reportes.
func (c ReportsConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: REPORTS_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// CacheTTL duración de las entradas en caché.
func (c ReportsConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, REDIS_ADDR, REPORTS_*, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo .env o config.env
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "reportes-api"),
			LogLevel: getString(v, "APP_LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "pos"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 10),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", ""),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		Reports: ReportsConfig{
			Timezone:              getString(v, "REPORTS_TIMEZONE", "America/Bogota"),
			CacheTTLSeconds:       getInt(v, "REPORTS_CACHE_TTL_SECONDS", 300),
			WarmerCron:            getString(v, "REPORTS_WARMER_CRON", ""),
			CustomerHistoryMonths: getInt(v, "REPORTS_CUSTOMER_HISTORY_MONTHS", 24),
			ExpenseRatio:          getFloat(v, "REPORTS_EXPENSE_RATIO", 0),
			TaxRate:               getFloat(v, "REPORTS_TAX_RATE", 0),
			TaxPaidRatio:          getFloat(v, "REPORTS_TAX_PAID_RATIO", 0),
			SupplierPaymentRatio:  getFloat(v, "REPORTS_SUPPLIER_PAYMENT_RATIO", 0),
			FixedCostRatio:        getFloat(v, "REPORTS_FIXED_COST_RATIO", 0),
			InvestmentRatio:       getFloat(v, "REPORTS_INVESTMENT_RATIO", 0),
			LiquidityRatio:        getFloat(v, "REPORTS_LIQUIDITY_RATIO", 0),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET es obligatorio")
	}
	if cfg.Reports.CacheTTLSeconds < 0 {
		return nil, fmt.Errorf("config: REPORTS_CACHE_TTL_SECONDS no puede ser negativo")
	}
	if cfg.Reports.CustomerHistoryMonths < 1 {
		return nil, fmt.Errorf("config: REPORTS_CUSTOMER_HISTORY_MONTHS debe ser al menos 1")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64)
			if err != nil {
				return def
			}
			return f
		default:
			return v.GetFloat64(key)
		}
	}
	return def
}
