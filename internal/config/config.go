// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"
	"time"

	"freeark_web/internal/building"

	"github.com/spf13/viper"
)

// Config 在进程启动时加载一次，之后以指针形式显式传递给各组件。
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Building BuildingConfig `mapstructure:"building"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Client   ClientConfig   `mapstructure:"client"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// TreeTTL 是楼栋树缓存的过期时间，业主导入时会主动失效。
	TreeTTL time.Duration `mapstructure:"tree_ttl"`
}

type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

func (c JWTConfig) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireHours) * time.Hour
}

func (c JWTConfig) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpireDays) * 24 * time.Hour
}

// AdminConfig 是启动时自动创建的管理员账号，Username 为空表示不创建。
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// BuildingConfig 是级联数据生成的配置。
type BuildingConfig struct {
	Policy building.Policy `mapstructure:"policy"`
	Fields building.Fields `mapstructure:"fields"`
	Source SourceConfig    `mapstructure:"source"`
	Output OutputConfig    `mapstructure:"output"`
}

type SourceConfig struct {
	Path  string `mapstructure:"path"`
	Sheet string `mapstructure:"sheet"`
}

type OutputConfig struct {
	Format  building.Format `mapstructure:"format"`
	VarName string          `mapstructure:"var_name"`
	// Sink 取值 file 或 s3。
	Sink string `mapstructure:"sink"`
	// Path 对 file 是本地路径，对 s3 是对象 key。
	Path string `mapstructure:"path"`
}

type StorageConfig struct {
	S3 S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint     string `mapstructure:"endpoint"`
	Region       string `mapstructure:"region"`
	Bucket       string `mapstructure:"bucket"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// ClientConfig 是命令行 REST 客户端的配置。
type ClientConfig struct {
	UseLocal      bool          `mapstructure:"use_local"`
	LocalURL      string        `mapstructure:"local_url"`
	ProductionURL string        `mapstructure:"production_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	AuthScheme    string        `mapstructure:"auth_scheme"`
	SessionFile   string        `mapstructure:"session_file"`
}

// BaseURL 根据 UseLocal 选择本地或生产地址，并补上 /api 前缀。
func (c ClientConfig) BaseURL() string {
	base := c.ProductionURL
	if c.UseLocal {
		base = c.LocalURL
	}
	return strings.TrimRight(base, "/") + "/api"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("database.mysql.max_idle_conns", 10)
	v.SetDefault("database.mysql.max_open_conns", 100)
	v.SetDefault("database.mysql.conn_max_lifetime", time.Hour)
	v.SetDefault("database.redis.addr", "localhost:6379")
	v.SetDefault("database.redis.tree_ttl", 10*time.Minute)

	v.SetDefault("jwt.access_token_expire_hours", 24)
	v.SetDefault("jwt.refresh_token_expire_days", 7)

	p := building.DefaultPolicy()
	v.SetDefault("building.policy.building_suffix", p.BuildingSuffix)
	v.SetDefault("building.policy.unit_suffix", p.UnitSuffix)
	v.SetDefault("building.policy.level", string(p.Level))
	v.SetDefault("building.policy.leaf_suffix", p.LeafSuffix)

	f := building.DefaultFields()
	v.SetDefault("building.fields.building", f.Building)
	v.SetDefault("building.fields.unit", f.Unit)
	v.SetDefault("building.fields.floor", f.Floor)
	v.SetDefault("building.fields.room", f.Room)
	v.SetDefault("building.fields.location", f.Location)
	v.SetDefault("building.fields.bind_status", f.BindStatus)
	v.SetDefault("building.fields.ip_address", f.IPAddress)
	v.SetDefault("building.fields.screen_mac", f.ScreenMAC)

	v.SetDefault("building.source.path", "resource/all_owner.json")
	v.SetDefault("building.output.format", string(building.FormatJS))
	v.SetDefault("building.output.var_name", "buildingData")
	v.SetDefault("building.output.sink", "file")
	v.SetDefault("building.output.path", "frontend/src/data/building_data.js")

	v.SetDefault("storage.s3.region", "us-east-1")

	v.SetDefault("client.local_url", "http://localhost:8080")
	v.SetDefault("client.production_url", "http://localhost:8080")
	v.SetDefault("client.timeout", 10*time.Second)
	v.SetDefault("client.auth_scheme", "Bearer")
	v.SetDefault("client.session_file", ".freeark/session.json")
}

// Load 从 YAML 文件读取配置，FREEARK_ 前缀的环境变量可覆盖同名配置项
// （例如 FREEARK_DATABASE_MYSQL_DSN）。path 为空时只使用默认值和环境变量。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FREEARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := conf.Building.Policy.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}
