package config

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	DB      DBConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Signing SigningConfig
	Fiscal  FiscalConfig
}

// Políticas de re-firma de un documento ya firmado.
const (
	ResignOverwrite = "overwrite" // se sobrescribe firma, hash y fecha (comportamiento histórico)
	ResignReject    = "reject"    // un documento firmado no se vuelve a firmar
)

// Origen del hash canónico de los documentos.
const (
	HashSourceDatabase = "database" // funciones calculate_invoice_hash / calculate_credit_note_hash
	HashSourceNative   = "native"   // pkg/fiscalhash (contrato v1)
)

// SigningConfig configuración de certificados y firma de documentos fiscales.
type SigningConfig struct {
	MasterKey     string // base64 de 32 bytes; cifra las llaves privadas en reposo
	KeyBits       int    // tamaño del módulo RSA
	ValidityYears int
	ResignPolicy  string // overwrite | reject
	HashSource    string // database | native
	IssuerOrg     string
	Country       string
}

// MasterKeyBytes decodifica SIGNING_MASTER_KEY y valida su longitud (AES-256).
func (c SigningConfig) MasterKeyBytes() ([]byte, error) {
	if c.MasterKey == "" {
		return nil, fmt.Errorf("config: SIGNING_MASTER_KEY vacío")
	}
	key, err := base64.StdEncoding.DecodeString(c.MasterKey)
	if err != nil {
		return nil, fmt.Errorf("config: SIGNING_MASTER_KEY no es base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("config: SIGNING_MASTER_KEY debe tener 32 bytes, tiene %d", len(key))
	}
	return key, nil
}

// FiscalConfig parámetros de las exportaciones y reportes fiscales.
type FiscalConfig struct {
	Currency string
	AppName  string // firma de los pies de página PDF
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo (ej. DATABASE_URL de Supabase).
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	AutoMigrate bool // aplicar migrations/ al arrancar la API
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
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

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
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

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, SIGNING_MASTER_KEY, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "dentalcloud-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "dentalcloud"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 10),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE", false),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "dentalcloud"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Signing: SigningConfig{
			MasterKey:     getString(v, "SIGNING_MASTER_KEY", ""),
			KeyBits:       getInt(v, "SIGNING_KEY_BITS", 4096),
			ValidityYears: getInt(v, "SIGNING_VALIDITY_YEARS", 3),
			ResignPolicy:  strings.ToLower(getString(v, "SIGNING_RESIGN_POLICY", ResignOverwrite)),
			HashSource:    strings.ToLower(getString(v, "SIGNING_HASH_SOURCE", HashSourceDatabase)),
			IssuerOrg:     getString(v, "SIGNING_ISSUER_ORG", "DentalCloud"),
			Country:       getString(v, "SIGNING_COUNTRY", "FR"),
		},
		Fiscal: FiscalConfig{
			Currency: getString(v, "FISCAL_CURRENCY", "EUR"),
			AppName:  getString(v, "FISCAL_APP_NAME", "DentalCloud"),
		},
	}

	switch cfg.Signing.ResignPolicy {
	case ResignOverwrite, ResignReject:
	default:
		return nil, fmt.Errorf("config: SIGNING_RESIGN_POLICY inválida: %q", cfg.Signing.ResignPolicy)
	}
	switch cfg.Signing.HashSource {
	case HashSourceDatabase, HashSourceNative:
	default:
		return nil, fmt.Errorf("config: SIGNING_HASH_SOURCE inválido: %q", cfg.Signing.HashSource)
	}
	if cfg.DB.MaxConns < 1 {
		cfg.DB.MaxConns = 1
	}
	if cfg.Signing.KeyBits < 2048 {
		return nil, fmt.Errorf("config: SIGNING_KEY_BITS debe ser >= 2048")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
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
