package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Queue    QueueConfig    `json:"queue"`
	Lock     LockConfig     `json:"lock"`
	Worker   WorkerConfig   `json:"worker"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type DatabaseConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	User           string `json:"user"`
	Password       string `json:"password"`
	DBName         string `json:"dbname"`
	SSLMode        string `json:"sslmode"`
	MigrationsPath string `json:"migrations_path"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// QueueConfig names the order stream and the consumer-group coordinates of
// this process. Group and consumer are operational controls, not business
// logic: several processes may share a group, each with its own consumer name.
type QueueConfig struct {
	Stream       string   `json:"stream"`
	Group        string   `json:"group"`
	Consumer     string   `json:"consumer"`
	BlockTimeout Duration `json:"block_timeout"`
}

type LockConfig struct {
	KeyPrefix string   `json:"key_prefix"`
	Lease     Duration `json:"lease"`
}

type WorkerConfig struct {
	Count           int      `json:"count"`
	RecoveryBackoff Duration `json:"recovery_backoff"`
}

// Duration unmarshals JSON strings like "2s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func LoadConfig(path string) (*Config, error) {
	godotenv.Load()

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	config.applyDefaults()
	config.applyEnvOverrides()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Queue.Stream == "" {
		c.Queue.Stream = "stream.orders"
	}
	if c.Queue.Group == "" {
		c.Queue.Group = "g1"
	}
	if c.Queue.Consumer == "" {
		c.Queue.Consumer = "c1"
	}
	if c.Queue.BlockTimeout == 0 {
		c.Queue.BlockTimeout = Duration(2 * time.Second)
	}
	if c.Lock.KeyPrefix == "" {
		c.Lock.KeyPrefix = "order-lock:"
	}
	if c.Lock.Lease == 0 {
		c.Lock.Lease = Duration(10 * time.Second)
	}
	if c.Worker.Count == 0 {
		c.Worker.Count = 1
	}
	if c.Worker.RecoveryBackoff == 0 {
		c.Worker.RecoveryBackoff = Duration(20 * time.Millisecond)
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Redis.Port = port
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("QUEUE_CONSUMER"); v != "" {
		c.Queue.Consumer = v
	}
}

func (c *DatabaseConfig) GetDSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}
