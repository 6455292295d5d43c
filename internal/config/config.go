package config // package config loads application configuration from environment variables

import (
    "os"
    "path/filepath"
    "strconv"
    "time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Every value has a default so the binary can run
// against a fresh checkout with nothing but an empty environment.
type Config struct {
    Env           string        // application environment ("dev", "prod")
    Port          string        // HTTP port to listen on
    DBPath        string        // path to the SQLite database file
    BcryptCost    int           // bcrypt cost for password hashing
    SessionTTL    time.Duration // lifetime of a login session
    QRSecret      string        // secret used to sign QR link tokens
    QRTokenTTL    time.Duration // lifetime of a signed QR link token
    BaseURL       string        // external base URL embedded in QR links
    UploadDir     string        // base directory for uploaded files
    QRDir         string        // directory for generated QR images
    LogDir        string        // directory for audit log output
    MaxUploadSize int64         // per-file upload limit in bytes
    MaxDocsPerVehicle int       // cap on documents attached to one vehicle
    AMQPURL       string        // RabbitMQ connection string ("" disables publishing)
}

// Load reads configuration values from environment variables and returns a
// Config.  In production the upload/QR/log directories default to /tmp so
// the app can run on a read-only deployment filesystem.
func Load() Config {
    env := getenv("APP_ENV", "dev")
    base := "public"
    logs := "logs"
    if env == "prod" {
        base = "/tmp"
        logs = "/tmp/logs"
    }
    return Config{
        Env:               env,
        Port:              getenv("APP_PORT", "8200"),
        DBPath:            getenv("DB_PATH", "before-you-sign.db"),
        BcryptCost:        envInt("BCRYPT_COST", 10),
        SessionTTL:        envDur("SESSION_TTL", 24*time.Hour),
        QRSecret:          getenv("QR_SECRET", "before-you-sign-secret-key-2024"),
        QRTokenTTL:        envDur("QR_TOKEN_TTL", 30*24*time.Hour),
        BaseURL:           getenv("BASE_URL", "http://localhost:8200"),
        UploadDir:         getenv("UPLOAD_DIR", filepath.Join(base, "uploads")),
        QRDir:             getenv("QR_DIR", filepath.Join(base, "qr-codes")),
        LogDir:            getenv("LOG_DIR", logs),
        MaxUploadSize:     int64(envInt("MAX_UPLOAD_BYTES", 5*1024*1024)),
        MaxDocsPerVehicle: envInt("MAX_DOCS_PER_VEHICLE", 10),
        AMQPURL:           os.Getenv("RABBITMQ_URL"),
    }
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func envInt(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return def
}

func envDur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    if d, err := time.ParseDuration(v); err == nil && d > 0 {
        return d
    }
    return def
}
